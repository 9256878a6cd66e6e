package shared

import "errors"

// Validation-type errors are expected control flow; the HTTP layer maps each
// one to its own status code, so they must never be collapsed together.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnknownTimeZone  = errors.New("unknown time zone")
	ErrInvalidLocalTime = errors.New("invalid local time")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Background synchronization errors.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrDuplicateCatalogID  = errors.New("duplicate catalog id")
	ErrSyncInProgress      = errors.New("catalog synchronization already in progress")
)
