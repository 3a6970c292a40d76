package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"translation-agent/backend/internal/logger"
)

// DefaultRateLimit is the default QPS limit.
const DefaultRateLimit = 10

// CallsPerRun is the number of provider calls in one translation run. The
// burst never drops below it so a single run is not throttled mid-way.
const CallsPerRun = 3

// throttleLogThreshold is the wait above which a throttled call is logged.
const throttleLogThreshold = 100 * time.Millisecond

// RateLimiter gates every outbound provider call process-wide.
type RateLimiter struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
}

func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		qps = DefaultRateLimit
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), burstFor(qps)),
	}
}

// Wait blocks until the call for stage may start or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, stage string) error {
	r.mu.RLock()
	limiter := r.limiter
	r.mu.RUnlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for %s slot: %w", stage, err)
	}
	if waited := time.Since(start); waited >= throttleLogThreshold {
		logger.Debug("provider call throttled", "module", "ai", "action", "wait", "resource", "ratelimit", "result", "ok", "stage", stage, "waited_ms", waited.Milliseconds())
	}
	return nil
}

// SetLimit updates the rate limit at runtime.
func (r *RateLimiter) SetLimit(qps int) {
	if qps <= 0 {
		qps = DefaultRateLimit
	}
	r.mu.Lock()
	r.limiter.SetLimit(rate.Limit(qps))
	r.limiter.SetBurst(burstFor(qps))
	r.mu.Unlock()
	logger.Info("ai rate limit updated", "module", "ai", "action", "update", "resource", "ratelimit", "result", "ok", "qps", qps)
}

// GetLimit returns the current rate limit in calls per second.
func (r *RateLimiter) GetLimit() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.limiter.Limit())
}

func burstFor(qps int) int {
	return max(qps, CallsPerRun)
}
