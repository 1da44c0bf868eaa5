package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once the daily call budget is spent.
var ErrBudgetExhausted = errors.New("ratelimit: daily budget exhausted")

// Limiter paces calls to a paid provider and optionally caps them per day.
type Limiter struct {
	pace *rate.Limiter

	mu        sync.Mutex
	used      int
	denied    int
	maxPerDay int
	resetTime time.Time
	now       func() time.Time
}

// New returns a Limiter allowing perSecond calls with the given burst.
// maxPerDay <= 0 means no daily cap; perSecond <= 0 means no pacing.
func New(perSecond float64, burst, maxPerDay int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		pace:      rate.NewLimiter(limit, burst),
		maxPerDay: maxPerDay,
		resetTime: time.Now().Add(24 * time.Hour),
		now:       time.Now,
	}
}

// Wait blocks until a call may proceed. It fails when ctx ends first or
// the daily budget is spent. A failed wait does not count against the
// budget.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.reserve(); err != nil {
		return err
	}
	if err := l.pace.Wait(ctx); err != nil {
		l.release()
		return fmt.Errorf("ratelimit wait: %w", err)
	}
	return nil
}

func (l *Limiter) reserve() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	if l.maxPerDay > 0 && l.used >= l.maxPerDay {
		l.denied++
		slog.Warn("LLM daily budget reached", "used", l.used, "limit", l.maxPerDay)
		return ErrBudgetExhausted
	}
	l.used++
	return nil
}

func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used > 0 {
		l.used--
	}
}

// GetStats returns current limiter statistics.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"used":       l.used,
		"denied":     l.denied,
		"limit":      l.maxPerDay,
		"reset_time": l.resetTime,
	}
}

// checkReset resets counters if reset time has passed
func (l *Limiter) checkReset() {
	if l.now().After(l.resetTime) {
		slog.Info("resetting LLM budget counters", "used", l.used, "denied", l.denied)
		l.used = 0
		l.denied = 0
		l.resetTime = l.now().Add(24 * time.Hour)
	}
}
