package store

import "errors"

// Sentinel errors returned by backends and the JSON helpers.
var (
	// ErrQuotaExceeded reports that a value did not fit in the backend.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrCorrupt reports that a stored value could not be decoded.
	ErrCorrupt = errors.New("stored value is corrupt")
	// ErrClosed reports use of a closed backend.
	ErrClosed = errors.New("store is closed")
)
