package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterStore_GetLimiter(t *testing.T) {
	store := NewLimiterStore(rate.Limit(1), 2)

	a := store.GetLimiter("http://a")
	assert.Same(t, a, store.GetLimiter("http://a"))
	assert.NotSame(t, a, store.GetLimiter("http://b"))
	assert.Equal(t, 2, a.Burst())
}

func TestLimiterStore_WaitSharesBudgetPerKey(t *testing.T) {
	store := NewLimiterStore(rate.Every(time.Hour), 1)

	assert.NoError(t, store.Wait(context.Background(), "http://a"))
	assert.NoError(t, store.Wait(context.Background(), "http://b"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, store.Wait(ctx, "http://a"))
}

func TestTokenLimiter_Wait(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewTokenLimiter(2)
	l.lastRefill = now
	l.now = func() time.Time { return now }

	assert.NoError(t, l.Wait(context.Background(), 1))
	assert.NoError(t, l.Wait(context.Background(), 1))
	assert.Equal(t, 0, l.GetRemaining())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx, 1), context.DeadlineExceeded)

	now = now.Add(time.Minute)
	assert.NoError(t, l.Wait(context.Background(), 1))
	assert.Equal(t, 1, l.GetRemaining())
}
