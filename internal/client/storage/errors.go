package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that no value is stored under the key
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded indicates that a write was rejected because the store
	// would grow beyond its configured capacity. The previous value is kept.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
