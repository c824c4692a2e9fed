package domain

import "errors"

// Sentinel errors shared by the gateway, services and the CLI.
// Match them with errors.Is; adapters wrap the underlying cause.
var (
	// ErrStorageUnavailable means the stash database cannot be opened at all
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrQuotaExceeded means the store refused a write for lack of space
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrWriteFailed covers any other rejected add or delete
	ErrWriteFailed = errors.New("write failed")

	// ErrNotFound is raised by services when a requested id is absent.
	// The gateway itself reports absence as a nil record.
	ErrNotFound = errors.New("hidden file not found")
)
