// Package sse implements Server-Sent Events for pushing session state changes
// to the browser front-end.
package sse

import (
	"time"

	"github.com/cinewave/cinewave/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventAuthChanged is sent when the current identity changes.
	EventAuthChanged EventType = "auth.changed"
	// EventFavoritesChanged is sent when the favorites set is loaded or mutated.
	EventFavoritesChanged EventType = "favorites.changed"
	// EventThemeChanged is sent when the display mode is resolved or changed.
	EventThemeChanged EventType = "theme.changed"
	// EventSearchUpdated is sent on every search state transition.
	EventSearchUpdated EventType = "search.updated"
	// EventBrowseUpdated is sent on every category listing transition.
	EventBrowseUpdated EventType = "browse.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewAuthChangedEvent creates an identity change event.
func NewAuthChangedEvent(state domain.AuthState) Event {
	return Event{
		Type:      EventAuthChanged,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewFavoritesChangedEvent creates a favorites change event.
func NewFavoritesChangedEvent(state domain.FavoritesState) Event {
	return Event{
		Type:      EventFavoritesChanged,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewThemeChangedEvent creates a display mode change event.
func NewThemeChangedEvent(state domain.ThemeState) Event {
	return Event{
		Type:      EventThemeChanged,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewSearchUpdatedEvent creates a search state event.
func NewSearchUpdatedEvent(state domain.SearchState) Event {
	return Event{
		Type:      EventSearchUpdated,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewBrowseUpdatedEvent creates a category listing event.
func NewBrowseUpdatedEvent(state domain.BrowseState) Event {
	return Event{
		Type:      EventBrowseUpdated,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a new heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
