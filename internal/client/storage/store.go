package storage

import (
	"context"
	"io"
)

// DefaultQuotaBytes mirrors the per-origin budget of browser local storage.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

//go:generate moq -out store_mock.go . Store

// Store defines the persistent key-value store used by the contact cache.
// Values are text; all writes of a single key are atomic.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if no value exists.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	// Returns ErrQuotaExceeded (and leaves the previous value untouched)
	// if the write would exceed the store capacity.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// UsageReporter is implemented by stores that account for their capacity.
type UsageReporter interface {
	// Usage returns bytes used by keys and values and the configured quota (0 = unlimited).
	Usage(ctx context.Context) (used, quota int64, err error)
}

// Backend is a Store opened by the client: it reports usage and must be closed.
type Backend interface {
	Store
	UsageReporter
	io.Closer
}

// EntrySize is the accounting size of a single entry.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// ExceedsQuota reports whether used bytes go beyond quota. Non-positive quota disables the check.
func ExceedsQuota(used, quota int64) bool {
	return quota > 0 && used > quota
}
