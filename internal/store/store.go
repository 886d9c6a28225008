// Package store is the persistent key-value adapter shared by the session's
// state containers. Values are strings; callers JSON-encode them with the
// GetJSON and SetJSON helpers. Several backends satisfy the same contract.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
)

// KV is the string key-value contract.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key. It returns an error wrapping ErrQuotaExceeded
	// when the backend cannot hold the value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend is a KV that can also enumerate its keys and be closed.
type Backend interface {
	KV
	// Keys returns the stored keys beginning with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// EventEmitter is the interface for emitting state-change events.
// Services use it to broadcast changes without depending on the SSE implementation.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// GetJSON reads key and decodes it into a T. ok is false when the key is
// absent. A value that cannot be decoded yields an error wrapping ErrCorrupt.
func GetJSON[T any](ctx context.Context, kv KV, key string) (value T, ok bool, err error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var zero T
		return zero, false, fmt.Errorf("%w: key %q: %w", ErrCorrupt, key, err)
	}
	return value, true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %q: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}

// IsQuotaExceeded reports whether err is a quota failure.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsCorrupt reports whether err is a decode failure of a stored value.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
