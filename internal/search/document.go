// Package search provides full-text filtering over a user's favorites using
// an in-memory Bleve index.
package search

import (
	"strconv"

	"github.com/cinewave/cinewave/internal/domain"
)

// FavoriteDocument is the indexed form of a favorited media item.
type FavoriteDocument struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Overview  string `json:"overview,omitempty"`
	Year      int    `json:"year,omitempty"`
}

// NewFavoriteDocument builds the document for item.
func NewFavoriteDocument(item *domain.MediaItem) *FavoriteDocument {
	doc := &FavoriteDocument{
		ID:        DocumentID(item.ID),
		MediaType: string(item.Classify()),
		Title:     item.DisplayTitle(),
		Overview:  item.Overview,
	}
	if y, err := strconv.Atoi(item.Year()); err == nil {
		doc.Year = y
	}
	return doc
}

// DocumentID converts a media id to its index key.
func DocumentID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ToMap converts the document to a map so field names match the mapping.
func (d *FavoriteDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"media_type": d.MediaType,
		"title":      d.Title,
	}
	if d.Overview != "" {
		m["overview"] = d.Overview
	}
	if d.Year > 0 {
		m["year"] = float64(d.Year)
	}
	return m
}
