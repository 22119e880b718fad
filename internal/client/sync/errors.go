package sync

import "errors"

var (
	// ErrSyncInProgress is returned when a sync is already running
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrFetchTimeout is returned when fetching contacts exceeds the watchdog timeout
	ErrFetchTimeout = errors.New("contacts fetch timed out")
	// ErrNotSignedIn is returned when no identity has been resolved yet
	ErrNotSignedIn = errors.New("not signed in")
)
