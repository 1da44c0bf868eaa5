package summary

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesInlineParenthesizedDisclaimer(t *testing.T) {
	in := "The central bank held rates steady.\n(Note: This summary is machine generated and may contain errors.) Markets had priced in the pause."
	out := Sanitize(in)
	if strings.Contains(strings.ToLower(out), "note:") {
		t.Errorf("output still contains disclaimer: %q", out)
	}
	if !strings.Contains(out, "Markets had priced in the pause.") {
		t.Errorf("content after disclaimer lost: %q", out)
	}
}

func TestSanitize_RemovesFullLineNote(t *testing.T) {
	in := "Note: based only on the headline.\nApple shipped a new chip. It raises the bar for laptops."
	out := Sanitize(in)
	if strings.Contains(strings.ToLower(out), "note:") {
		t.Errorf("disclaimer line was not removed: %q", out)
	}
	if out != "Apple shipped a new chip. It raises the bar for laptops." {
		t.Errorf("out = %q", out)
	}
}

func TestSanitize_StripsLabelMarkdownAndQuotes(t *testing.T) {
	in := `Summary: "**Nvidia** beat estimates. Demand for *AI* chips stays strong."`
	if out := Sanitize(in); out != "Nvidia beat estimates. Demand for AI chips stays strong." {
		t.Errorf("out = %q", out)
	}
}

func TestSanitize_OnlyChatterIsEmpty(t *testing.T) {
	if out := Sanitize("[Note: no article text provided]"); out != "" {
		t.Errorf("out = %q", out)
	}
}
