package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiClient calls Google's Gemini models.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed Client.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	// A fresh model per call keeps settings request-scoped.
	model := c.client.GenerativeModel(c.model)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserContent))
	if err != nil {
		return Response{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: text}, nil
}
