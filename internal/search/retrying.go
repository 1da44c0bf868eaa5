package search

import (
	"context"

	"github.com/deusflow/newsbrief/internal/retry"
)

// Retrying re-runs failed searches according to cfg.
type Retrying struct {
	next Provider
	cfg  retry.RetryConfig
}

func NewRetrying(next Provider, cfg retry.RetryConfig) *Retrying {
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) Search(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := retry.WithRetry(ctx, r.cfg, func(ctx context.Context) error {
		var err error
		resp, err = r.next.Search(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
