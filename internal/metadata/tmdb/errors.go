package tmdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for metadata API operations.
var (
	ErrUnauthorized = errors.New("tmdb: API key rejected")
	ErrNotFound     = errors.New("tmdb: not found")
	ErrRateLimited  = errors.New("tmdb: rate limited by server")
	ErrBadRequest   = errors.New("tmdb: bad request")
	ErrServer       = errors.New("tmdb: server error")
	ErrTimeout      = errors.New("tmdb: request timed out")
	ErrMalformed    = errors.New("tmdb: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // Operation: "search", "discover", "details"
	Path   string
	Status int // HTTP status, when a response arrived
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tmdb %s [%s] status %d: %v", e.Op, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("tmdb %s [%s]: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, path string, status int, err error) error {
	return &Error{Op: op, Path: path, Status: status, Err: err}
}
