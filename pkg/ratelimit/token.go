package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter refills its whole budget once per refill period.
type TokenLimiter struct {
	sync.Mutex
	capacity     int
	remaining    int
	refillPeriod time.Duration
	lastRefill   time.Time
	now          func() time.Time
}

func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		capacity:     tokensPerMinute,
		remaining:    tokensPerMinute,
		refillPeriod: time.Minute,
		lastRefill:   time.Now(),
		now:          time.Now,
	}
}

func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		if l.take(tokens) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (l *TokenLimiter) take(tokens int) bool {
	l.Lock()
	defer l.Unlock()

	now := l.now()
	if now.Sub(l.lastRefill) >= l.refillPeriod {
		l.remaining = l.capacity
		l.lastRefill = now
	}
	if l.remaining >= tokens {
		l.remaining -= tokens
		return true
	}
	return false
}

func (l *TokenLimiter) GetRemaining() int {
	l.Lock()
	defer l.Unlock()
	return l.remaining
}
