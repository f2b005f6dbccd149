package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces calls per key, one limiter per key. A zero rate disables
// pacing.
type Pacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

// NewPacer allows perMinute calls per key with a burst of burst.
func NewPacer(perMinute, burst int) *Pacer {
	p := &Pacer{
		limiters: make(map[string]*rate.Limiter),
		burst:    burst,
	}
	if perMinute > 0 {
		p.every = time.Minute / time.Duration(perMinute)
	}
	if p.burst < 1 {
		p.burst = 1
	}
	return p
}

// Wait blocks until a call for key is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	if p == nil || p.every == 0 {
		return ctx.Err()
	}

	l := p.limiter(key)
	if r := l.Reserve(); r.OK() {
		delay := r.Delay()
		if delay == 0 {
			return nil
		}
		slog.Debug("Pacing webhook call", "delay", delay)
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return l.Wait(ctx)
}

func (p *Pacer) limiter(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(p.every), p.burst)
		p.limiters[key] = l
	}
	return l
}
