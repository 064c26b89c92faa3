package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a token-bucket limiter.
type RateLimiterConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Rate is tokens added per second.
	Rate  float64 `yaml:"rate" mapstructure:"rate"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

// RateLimiter is a token bucket. Wait reserves a token and sleeps until it
// is available.
type RateLimiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.Rate))
	}
	return &RateLimiter{
		rate:   cfg.Rate,
		burst:  float64(cfg.Burst),
		now:    time.Now,
		tokens: float64(cfg.Burst),
		last:   time.Now(),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx ends. A canceled wait
// returns its reservation.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	rl.refill()
	rl.tokens--
	deficit := -rl.tokens
	rl.mu.Unlock()

	if deficit <= 0 {
		return nil
	}

	timer := time.NewTimer(time.Duration(deficit / rl.rate * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		rl.mu.Lock()
		rl.tokens++
		rl.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Tokens returns the number of currently available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	rl.tokens = min(rl.burst, rl.tokens+now.Sub(rl.last).Seconds()*rl.rate)
	rl.last = now
}
