package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LimiterStore keeps one token bucket per key so callers that reach the same
// remote host share its budget.
type LimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewLimiterStore(limit rate.Limit, burst int) *LimiterStore {
	if burst < 1 {
		burst = 1
	}
	return &LimiterStore{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	return limiter
}

// Wait blocks until key may make one more request or ctx is done.
func (s *LimiterStore) Wait(ctx context.Context, key string) error {
	return s.GetLimiter(key).Wait(ctx)
}
