// Package llm is the request/response boundary to language-model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyResponse means the provider answered without usable text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Request is one single-shot generation.
type Request struct {
	SystemInstruction string
	UserContent       string
	MaxOutputTokens   int
	Temperature       float32
}

// Response carries the generated text.
type Response struct {
	Text string
}

// Client generates text. Implementations make exactly one provider call
// per Generate and do not retry.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Provider names a backend.
type Provider string

const (
	Gemini Provider = "gemini"
	OpenAI Provider = "openai"
)

// Options selects and configures a backend.
type Options struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the Client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: api key for %q is empty", opts.Provider)
	}
	switch Provider(strings.ToLower(string(opts.Provider))) {
	case Gemini, "":
		c, err := NewGemini(ctx, opts.APIKey, opts.Model, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	case OpenAI:
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q (valid: gemini, openai)", opts.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
