package shared

import (
	"context"
	"time"
)

// IdempotencyStore guards retried client requests so that a replayed
// create-order or payment call returns the original result instead of
// executing twice.
type IdempotencyStore interface {
	// Begin claims an idempotency key. Returns true if the key was newly
	// claimed, false if a request with this key is already in flight or done.
	Begin(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// StoreResult records the outcome for a claimed key
	StoreResult(ctx context.Context, key, result string, ttl time.Duration) error

	// GetResult returns the stored outcome for a key, or "" when none exists
	GetResult(ctx context.Context, key string) (string, error)

	// Release drops a claimed key so the request may be retried (used when
	// the guarded operation failed before producing a result)
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
