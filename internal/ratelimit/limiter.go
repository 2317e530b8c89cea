package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 2 * time.Minute
)

// Limiter paces calls to one upstream and backs off after it answers
// "too many requests".
type Limiter struct {
	limiter *rate.Limiter
	name    string

	mu      sync.Mutex
	backoff time.Duration
	limited bool
}

// NewLimiter creates a limiter allowing perMinute calls per minute
func NewLimiter(name string, perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	rps := float64(perMinute) / 60.0
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
		backoff: minBackoff,
	}
}

// Wait blocks until a call may proceed. After a rate-limit signal it first
// sleeps the current backoff.
func (l *Limiter) Wait(ctx context.Context) error {
	if d := l.penalty(); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

func (l *Limiter) penalty() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.limited {
		return 0
	}
	return l.backoff
}

// Allow reports whether a call may happen now without waiting
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SignalRateLimited doubles the backoff, up to two minutes
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limited {
		l.backoff *= 2
	}
	l.limited = true
	if l.backoff > maxBackoff {
		l.backoff = maxBackoff
	}
}

// ResetBackoff clears the penalty after a successful call
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = minBackoff
	l.limited = false
}

// Backoff returns the delay Wait adds before the next call
func (l *Limiter) Backoff() time.Duration {
	return l.penalty()
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

// MultiLimiter holds one limiter per upstream
type MultiLimiter struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates an empty registry
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*Limiter),
	}
}

// Add registers a limiter, replacing any existing one with the same name
func (m *MultiLimiter) Add(name string, perMinute int) *Limiter {
	l := NewLimiter(name, perMinute)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = l
	return l
}

// Get returns a limiter by name
func (m *MultiLimiter) Get(name string) *Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiters[name]
}

// Wait waits on the named limiter; unknown names proceed immediately
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	limiter := m.Get(name)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
