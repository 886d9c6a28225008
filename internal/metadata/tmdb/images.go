package tmdb

import "strings"

// Image sizes used by the front-end.
const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
	ProfileSize  = "w185"
)

// Placeholders returned when a record has no image.
const (
	PlaceholderPoster   = "/images/placeholder-poster.jpg"
	PlaceholderBackdrop = "/images/placeholder-backdrop.jpg"
	PlaceholderProfile  = "/images/placeholder-avatar.jpg"
)

// Images builds absolute image URLs from the opaque paths in API records.
type Images struct {
	base string
}

// NewImages creates a builder for the given image CDN base URL.
func NewImages(base string) Images {
	return Images{base: strings.TrimRight(base, "/")}
}

// URL joins a size and path. An empty path yields "".
func (i Images) URL(path, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return i.base + "/" + size + path
}

// Poster returns the poster URL or the poster placeholder.
func (i Images) Poster(path string) string {
	return orPlaceholder(i.URL(path, PosterSize), PlaceholderPoster)
}

// Backdrop returns the backdrop URL or the backdrop placeholder.
func (i Images) Backdrop(path string) string {
	return orPlaceholder(i.URL(path, BackdropSize), PlaceholderBackdrop)
}

// Profile returns the profile photo URL or the profile placeholder.
func (i Images) Profile(path string) string {
	return orPlaceholder(i.URL(path, ProfileSize), PlaceholderProfile)
}

func orPlaceholder(u, placeholder string) string {
	if u == "" {
		return placeholder
	}
	return u
}
