package common

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces requests against a venue weight budget and tracks the
// authoritative usage the venue reports back in response headers.
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int

	mu         sync.RWMutex
	usedWeight int
	lastReset  time.Time
	window     time.Duration
}

// NewRateLimiter creates a limiter for a weight budget per window
// (e.g. 1200/min for Binance spot, 2400/min for futures).
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	perSec := float64(limit) / window.Seconds()
	return &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(perSec), limit/10+1),
		limit:     limit,
		lastReset: time.Now(),
		window:    window,
	}
}

// Wait blocks until the given request weight may be spent, or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context, weight int) error {
	if weight <= 0 {
		weight = 1
	}
	return rl.limiter.WaitN(ctx, weight)
}

// UpdateFromHeader records the used weight the venue reported. The header
// value is authoritative; local accounting only paces between responses.
func (rl *RateLimiter) UpdateFromHeader(headerValue string) {
	if headerValue == "" {
		return
	}
	weight, err := strconv.Atoi(headerValue)
	if err != nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastReset) >= rl.window {
		rl.usedWeight = 0
		rl.lastReset = time.Now()
	}
	rl.usedWeight = weight

	pct := float64(rl.usedWeight) / float64(rl.limit) * 100
	if pct >= 95 {
		log.Printf("rate limit critical: %d/%d (%.1f%%) - approaching ban threshold", rl.usedWeight, rl.limit, pct)
	} else if pct >= 80 {
		log.Printf("rate limit warning: %d/%d (%.1f%%)", rl.usedWeight, rl.limit, pct)
	}
}

// Usage returns current usage information.
func (rl *RateLimiter) Usage() (used int, limit int, percentage float64) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if time.Since(rl.lastReset) >= rl.window {
		return 0, rl.limit, 0
	}
	return rl.usedWeight, rl.limit, float64(rl.usedWeight) / float64(rl.limit) * 100
}

// ShouldDelay returns true if the next request ought to back off even after
// Wait, based on what the venue reported.
func (rl *RateLimiter) ShouldDelay() bool {
	_, _, pct := rl.Usage()
	return pct >= 90
}
