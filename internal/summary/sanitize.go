package summary

import (
	"regexp"
	"strings"
)

var (
	parenNote   = regexp.MustCompile(`(?i)[(\[]\s*note:[^)\]]*[)\]]`)
	lineNote    = regexp.MustCompile(`(?im)^\s*note:.*$`)
	leadLabel   = regexp.MustCompile(`(?i)^\s*(summary|tl;?dr)\s*:\s*`)
	markdownEmp = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
)

// Sanitize removes model chatter around the summary text: disclaimers,
// a leading "Summary:" label, markdown emphasis and wrapping quotes.
func Sanitize(text string) string {
	text = parenNote.ReplaceAllString(text, "")
	text = lineNote.ReplaceAllString(text, "")
	text = leadLabel.ReplaceAllString(strings.TrimSpace(text), "")
	text = markdownEmp.ReplaceAllString(text, "$1")
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, `"“”'`)
	return strings.TrimSpace(text)
}
