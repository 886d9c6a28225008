package domain

import (
	"strings"
	"time"
)

// MediaType classifies a catalog record.
type MediaType string

// Media types returned by the metadata API.
const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTV     MediaType = "tv"
	MediaTypePerson MediaType = "person"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypePerson:
		return true
	default:
		return false
	}
}

// Genre is a genre record as attached to detail payloads.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MediaItem is a movie, TV show or person summary as returned by the metadata
// API. The same record is stored in a favorites slot, where AddedAt and
// UserID are stamped when the item enters the set.
type MediaItem struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	ProfilePath  string    `json:"profile_path,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitzero"`
	VoteCount    int       `json:"vote_count,omitzero"`
	Popularity   float64   `json:"popularity,omitzero"`
	Overview     string    `json:"overview,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
	Genres       []Genre   `json:"genres,omitempty"`

	// Absolute image URLs, filled in on API responses only.
	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`

	AddedAt *time.Time `json:"addedAt,omitzero"`
	UserID  int64      `json:"userId,omitzero"`
}

// Classify returns the item's media type. An explicit type wins; otherwise
// an item carrying a first air date is a TV show and anything else a movie.
func (m *MediaItem) Classify() MediaType {
	if m.MediaType.Valid() {
		return m.MediaType
	}
	if m.FirstAirDate != "" {
		return MediaTypeTV
	}
	return MediaTypeMovie
}

// DisplayTitle unifies the movie title and the TV name.
func (m *MediaItem) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Date returns the release date for movies or the first air date for shows.
func (m *MediaItem) Date() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// Year returns the four-digit year of Date, or "" when unknown.
func (m *MediaItem) Year() string {
	d := m.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// HasPoster reports whether the item carries a poster image path.
func (m *MediaItem) HasPoster() bool {
	return strings.TrimSpace(m.PosterPath) != ""
}

// Admissible reports whether the item can live in a favorites slot:
// it needs an id and some title.
func (m *MediaItem) Admissible() bool {
	return m.ID != 0 && m.DisplayTitle() != ""
}

// Projection returns the reduced record kept when storage runs out of room:
// id, title or name, poster path and media type.
func (m *MediaItem) Projection() MediaItem {
	return MediaItem{
		ID:         m.ID,
		MediaType:  m.Classify(),
		Title:      m.Title,
		Name:       m.Name,
		PosterPath: m.PosterPath,
	}
}

// Page is one page of a paginated listing.
type Page struct {
	Page         int         `json:"page"`
	Results      []MediaItem `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}
