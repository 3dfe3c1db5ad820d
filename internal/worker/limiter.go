package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Rate limiter lanes
const (
	LaneDocuments = "documents"
	LaneLLM       = "llm"
)

// Limiter throttles work per named lane. A lane with a non-positive rate is
// unlimited.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter whose lanes default to requestsPerSecond
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

func limit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// Wait blocks until the lane allows one more event or ctx is done
func (l *Limiter) Wait(ctx context.Context, lane string) error {
	return l.Lane(lane).Wait(ctx)
}

// Allow checks if an event is allowed without waiting
func (l *Limiter) Allow(lane string) bool {
	return l.Lane(lane).Allow()
}

// Lane returns the limiter for a lane, creating it at the default rate
func (l *Limiter) Lane(lane string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[lane]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[lane]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[lane] = limiter

	return limiter
}

// SetLaneRate sets a custom rate for one lane
func (l *Limiter) SetLaneRate(lane string, perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[lane] = rate.NewLimiter(limit(perSecond), burst)
}
