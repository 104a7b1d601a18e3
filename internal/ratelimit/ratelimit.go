// Package ratelimit enforces a daily budget of model requests so a runaway
// ingestion loop cannot burn through an API quota overnight.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"librenews/internal/logger"
)

// Budget tracks model requests against a daily cap, broken down by operation
// so the stats show where the quota actually goes. A cap of zero means
// unlimited.
type Budget struct {
	mu          sync.Mutex
	max         int
	used        int
	perOp       map[string]int
	resetAt     time.Time
	cacheHits   int
	cacheMisses int
	tokensSaved int
}

func NewBudget(maxRequests int) *Budget {
	return &Budget{
		max:     maxRequests,
		perOp:   make(map[string]int),
		resetAt: time.Now().Add(24 * time.Hour),
	}
}

// Allow reserves one request for the named operation, or reports that the
// daily budget is spent.
func (b *Budget) Allow(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeReset()

	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("daily request budget exhausted (%d/%d)", b.used, b.max)
	}

	b.used++
	b.perOp[op]++
	b.cacheMisses++
	return nil
}

// RecordCacheHit notes that a cached result spared a request, with a rough
// token estimate for the savings report.
func (b *Budget) RecordCacheHit(estimatedTokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cacheHits++
	b.tokensSaved += estimatedTokens
}

func (b *Budget) HitRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hitRateLocked()
}

func (b *Budget) hitRateLocked() float64 {
	total := b.cacheHits + b.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(b.cacheHits) / float64(total) * 100
}

func (b *Budget) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	byOp := make(map[string]int, len(b.perOp))
	for op, n := range b.perOp {
		byOp[op] = n
	}

	return map[string]interface{}{
		"requests_used":  b.used,
		"requests_limit": b.max,
		"requests_by_op": byOp,
		"cache_hits":     b.cacheHits,
		"cache_misses":   b.cacheMisses,
		"cache_hit_rate": b.hitRateLocked(),
		"tokens_saved":   b.tokensSaved,
		"reset_time":     b.resetAt,
	}
}

func (b *Budget) maybeReset() {
	if time.Now().Before(b.resetAt) {
		return
	}

	logger.Info("daily request budget reset",
		"used", b.used, "limit", b.max,
		"cache_hit_rate", fmt.Sprintf("%.1f%%", b.hitRateLocked()),
		"tokens_saved", b.tokensSaved)

	b.used = 0
	b.perOp = make(map[string]int)
	b.cacheHits = 0
	b.cacheMisses = 0
	b.tokensSaved = 0
	b.resetAt = time.Now().Add(24 * time.Hour)
}
