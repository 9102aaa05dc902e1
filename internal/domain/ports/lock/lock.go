// File: internal/domain/ports/lock/lock.go
package lock

import (
	"context"
	"time"
)

// Locker is the cycle-leadership mutual-exclusion primitive the engine uses
// when horizontally scaled (SPEC_FULL.md §11): before a pass over a given
// bot begins, it takes a lock scoped to that bot so the per-bot update
// cursor stays "owned by exactly one pass at a time" (spec.md §5).
type Locker interface {
	// TryLock makes one non-blocking attempt. ok is false (err nil) when
	// another pass already holds the lock for key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
