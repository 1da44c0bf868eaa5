package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient calls the chat completions API or any compatible endpoint.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI-backed Client. baseURL may be empty.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model, timeout: timeout}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserContent,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: text}, nil
}
