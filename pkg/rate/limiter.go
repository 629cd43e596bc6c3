package rate

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits operations based on a provided key.
type Limiter interface {
	// Allow reports whether an operation for key may proceed now.
	Allow(key string) bool

	// Wait blocks until an operation for key may proceed, or ctx is done.
	Wait(ctx context.Context, key string) error
}

type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewKeyedLimiter returns an in memory limiter that gives each key its own
// token bucket refilled at perSecond. A burst below one defaults to the
// per second rate, rounded up.
func NewKeyedLimiter(perSecond float64, burst int) Limiter {
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(perSecond)))
	}

	return &keyedLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *keyedLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *keyedLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

func (l *keyedLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// NoLimiter never limits operations.
type NoLimiter struct{}

func (NoLimiter) Allow(string) bool {
	return true
}

func (NoLimiter) Wait(ctx context.Context, _ string) error {
	return ctx.Err()
}
