package store

import (
	"context"
	"fmt"
)

// quotaBackend rejects values larger than a fixed byte budget, emulating
// the per-origin quota of browser storage.
type quotaBackend struct {
	Backend
	maxBytes int
}

// WithQuota wraps b so that Set fails with ErrQuotaExceeded for values
// longer than maxBytes. A non-positive maxBytes returns b unchanged.
func WithQuota(b Backend, maxBytes int) Backend {
	if maxBytes <= 0 {
		return b
	}
	return &quotaBackend{Backend: b, maxBytes: maxBytes}
}

func (q *quotaBackend) Set(ctx context.Context, key, value string) error {
	if len(key)+len(value) > q.maxBytes {
		return fmt.Errorf("set %q (%d bytes, limit %d): %w", key, len(key)+len(value), q.maxBytes, ErrQuotaExceeded)
	}
	return q.Backend.Set(ctx, key, value)
}
