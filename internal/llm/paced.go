package llm

import (
	"context"

	"github.com/deusflow/newsbrief/internal/ratelimit"
)

// Paced gates every Generate through a shared limiter.
type Paced struct {
	next    Client
	limiter *ratelimit.Limiter
}

func NewPaced(next Client, limiter *ratelimit.Limiter) *Paced {
	return &Paced{next: next, limiter: limiter}
}

func (p *Paced) Generate(ctx context.Context, req Request) (Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Response{}, err
		}
	}
	return p.next.Generate(ctx, req)
}
