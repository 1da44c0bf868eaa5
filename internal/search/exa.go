package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/retry"
)

const defaultExaURL = "https://api.exa.ai/search"

// Exa calls the Exa neural search API.
type Exa struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewExa creates an Exa client. endpoint may be empty.
func NewExa(apiKey, endpoint string, timeout time.Duration) *Exa {
	if endpoint == "" {
		endpoint = defaultExaURL
	}
	return &Exa{apiKey: apiKey, endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

type exaContents struct {
	Text bool `json:"text"`
}

type exaRequest struct {
	Query               string      `json:"query"`
	NumResults          int         `json:"numResults,omitempty"`
	StartPublishedDate  string      `json:"startPublishedDate,omitempty"`
	UseAuthorExtraction bool        `json:"useAuthorExtraction,omitempty"`
	UseBodyExtraction   bool        `json:"useBodyExtraction,omitempty"`
	SortBy              string      `json:"sortBy,omitempty"`
	ExcludeDomains      []string    `json:"excludeDomains,omitempty"`
	Contents            exaContents `json:"contents"`
}

// exaResult is the provider's result as received; nothing in it is trusted.
type exaResult struct {
	Title         *string `json:"title"`
	URL           *string `json:"url"`
	Text          *string `json:"text"`
	PublishedDate *string `json:"publishedDate"`
}

type exaResponse struct {
	Results *[]exaResult `json:"results"`
}

func (e *Exa) Search(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(exaRequest{
		Query:               req.Query,
		NumResults:          req.NumResults,
		StartPublishedDate:  req.StartPublishedDate,
		UseAuthorExtraction: req.UseAuthorExtraction,
		UseBodyExtraction:   req.UseBodyExtraction,
		SortBy:              req.SortBy,
		ExcludeDomains:      req.ExcludeSites,
		Contents:            exaContents{Text: req.Text},
	})
	if err != nil {
		return nil, fmt.Errorf("encode exa request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build exa request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("exa request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("exa returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var raw exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return validate(raw)
}

// validate promotes untrusted provider results to RawSearchResult.
// Results without a URL are dropped.
func validate(raw exaResponse) (*Response, error) {
	if raw.Results == nil {
		return nil, ErrMalformedResponse
	}
	out := &Response{Results: make([]news.RawSearchResult, 0, len(*raw.Results))}
	for _, r := range *raw.Results {
		u := deref(r.URL)
		if u == "" {
			continue
		}
		date := deref(r.PublishedDate)
		out.Results = append(out.Results, news.RawSearchResult{
			Title:         deref(r.Title),
			URL:           u,
			Text:          deref(r.Text),
			PublishedDate: date,
			Published:     news.ParsePublished(date),
		})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
