package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deusflow/newsbrief/internal/cache"
	"github.com/deusflow/newsbrief/internal/llm"
)

type fakeLLM struct {
	mu    sync.Mutex
	calls int
	last  llm.Request
	text  string
	err   error
}

func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text}, nil
}

func newSummarizer(f *fakeLLM) *Summarizer {
	return New(f, cache.NewMemory[string](time.Hour, nil), nil)
}

func TestSummarizeCachesWithinTTL(t *testing.T) {
	f := &fakeLLM{text: "The news. Why it matters."}
	s := newSummarizer(f)
	ctx := context.Background()

	first := s.Summarize(ctx, "T", "C")
	second := s.Summarize(ctx, "T", "C")
	if f.calls != 1 {
		t.Errorf("llm calls = %d, want 1", f.calls)
	}
	if first != second || first != "The news. Why it matters." {
		t.Errorf("first=%q second=%q", first, second)
	}
}

func TestSummarizeExpiredEntryCallsAgain(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	f := &fakeLLM{text: "ok"}
	s := New(f, cache.NewMemory[string](time.Hour, clock), nil)
	ctx := context.Background()

	s.Summarize(ctx, "T", "C")
	now = now.Add(61 * time.Minute)
	s.Summarize(ctx, "T", "C")
	if f.calls != 2 {
		t.Errorf("llm calls = %d, want 2", f.calls)
	}
}

func TestSummarizeFallback(t *testing.T) {
	f := &fakeLLM{err: errors.New("quota exceeded")}
	s := newSummarizer(f)

	got := s.Summarize(context.Background(), "My Title", "body")
	if got == "" || !strings.Contains(got, "My Title") {
		t.Fatalf("fallback = %q", got)
	}

	// Failures are not cached.
	s.Summarize(context.Background(), "My Title", "body")
	if f.calls != 2 {
		t.Errorf("llm calls = %d, want 2", f.calls)
	}
}

func TestSummarizeEmptyAnswerFallsBack(t *testing.T) {
	f := &fakeLLM{text: "   "}
	got := newSummarizer(f).Summarize(context.Background(), "Chip news", "body")
	if got != Fallback("Chip news") {
		t.Errorf("got %q", got)
	}
}

func TestSummarizeRequestShape(t *testing.T) {
	f := &fakeLLM{text: "ok"}
	s := newSummarizer(f)

	s.Summarize(context.Background(), "Headline only", "")
	if !strings.Contains(f.last.UserContent, "Headline only") || strings.Contains(f.last.UserContent, "Article:") {
		t.Errorf("title-only prompt = %q", f.last.UserContent)
	}
	if f.last.Temperature != 0.3 || f.last.MaxOutputTokens != maxOutputTokens {
		t.Errorf("request = %+v", f.last)
	}
	if !strings.Contains(f.last.SystemInstruction, "exactly 2 sentences") {
		t.Errorf("system instruction = %q", f.last.SystemInstruction)
	}
}

func TestKeyUsesPrefixOfText(t *testing.T) {
	long := strings.Repeat("a", keyPrefixLen)
	if Key("T", long+"tail one") != Key("T", long+"tail two") {
		t.Error("text beyond the key prefix should not change the key")
	}
	if Key("T", "x") == Key("U", "x") {
		t.Error("different titles must produce different keys")
	}
}
