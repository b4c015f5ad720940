// Package lock provides single-flight guards keyed by string.
package lock

import (
	"context"
	"time"
)

// Lease is held by the winner of TryLock until Release.
type Lease interface {
	Release()
}

// Locker grants at most one live Lease per key.
type Locker interface {
	// TryLock returns ok=false without error when key is already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}
