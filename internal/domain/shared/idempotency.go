package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed keys (payment Idempotency-Key headers)
// so a replayed request is not applied twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// Locker grants short-lived exclusive locks keyed by string.
type Locker interface {
	// TryLock acquires key for ttl. ok is false when another holder owns it.
	// The returned release func is safe to call once the work is done.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
