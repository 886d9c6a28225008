// Package id generates identifiers: time-derived numeric user IDs and
// prefixed NanoIDs for transient handles such as event-stream clients.
package id

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "client-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Clock returns the current time.
type Clock func() time.Time

// Sequence hands out millisecond-timestamp IDs that are strictly increasing
// even when several are requested within the same millisecond.
type Sequence struct {
	mu   sync.Mutex
	now  Clock
	last int64
}

// NewSequence creates a sequence driven by the given clock (time.Now if nil).
func NewSequence(now Clock) *Sequence {
	if now == nil {
		now = time.Now
	}
	return &Sequence{now: now}
}

// Next returns the next ID.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().UnixMilli()
	if next <= s.last {
		next = s.last + 1
	}
	s.last = next
	return next
}

// Observe records an ID that already exists so later IDs never collide with it.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
