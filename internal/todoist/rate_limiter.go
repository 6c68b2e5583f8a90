package todoist

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// RateLimiter implements a token bucket limiter for outbound API requests.
// It enforces a sustained rate while allowing controlled bursts.
type RateLimiter struct {
	rate       float64
	burstLimit int
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a limiter with the given sustained rate in requests
// per second and maximum burst size. The bucket starts full.
func NewRateLimiter(rate float64, burstLimit int) *RateLimiter {
	return &RateLimiter{
		rate:       rate,
		burstLimit: burstLimit,
		tokens:     float64(burstLimit),
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or the context is canceled. Waits
// longer than five seconds are rejected outright rather than queued.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.lastUpdate = now

	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burstLimit) {
		l.tokens = float64(l.burstLimit)
	}

	if l.tokens >= 1 {
		l.tokens--
		return nil
	}

	waitTime := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
	if waitTime > 5*time.Second {
		return errors.New("rate limit exceeded: try again later")
	}

	select {
	case <-time.After(waitTime):
		l.tokens = 0
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
