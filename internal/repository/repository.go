// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"time"
)

// RateLimitRepository persists fixed-window rate-limit counters.
// No business logic here, strictly persistence operations.
type RateLimitRepository interface {
	// Increment adds one to the counter for key, creating it with the given expiry,
	// unless its live value has reached ceiling. It returns the new value and whether
	// the counter was incremented. The check and the add are atomic per key.
	Increment(ctx context.Context, key string, ceiling int64, expiresAt time.Time) (int64, bool, error)

	// Count returns the counter for key, or zero when it does not exist or has expired.
	Count(ctx context.Context, key string) (int64, error)

	// PurgeExpired deletes counters that expired before now and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
