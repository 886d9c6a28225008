package domain

import (
	"strings"
	"time"
)

// User is a locally simulated identity. There are no credentials: the
// record is what the session slot and the roster persist.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// NormalizeEmail lowercases and trims an email for roster comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LocalPart returns the portion of an email before the "@".
func LocalPart(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left alone.
// The email address is immutable and has no field here.
type ProfileUpdate struct {
	Name *string `json:"name,omitempty"`
}

// Apply merges the update into u and reports whether anything changed.
func (p ProfileUpdate) Apply(u *User) bool {
	changed := false
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name != u.Name {
			u.Name = name
			changed = true
		}
	}
	return changed
}
