package api

import (
	"github.com/cinewave/cinewave/internal/domain"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
)

// imageURLs fills the absolute image URLs of outgoing records. Records are
// copied; the slices owned by the services are never written.
type imageURLs struct {
	images tmdb.Images
}

func (u imageURLs) item(m domain.MediaItem) domain.MediaItem {
	if m.Classify() == domain.MediaTypePerson {
		m.ProfileURL = u.images.Profile(m.ProfilePath)
		return m
	}
	m.PosterURL = u.images.Poster(m.PosterPath)
	m.BackdropURL = u.images.Backdrop(m.BackdropPath)
	return m
}

func (u imageURLs) items(in []domain.MediaItem) []domain.MediaItem {
	if in == nil {
		return nil
	}
	out := make([]domain.MediaItem, len(in))
	for i, m := range in {
		out[i] = u.item(m)
	}
	return out
}

func (u imageURLs) search(state domain.SearchState) domain.SearchState {
	state.Results = u.items(state.Results)
	return state
}

func (u imageURLs) browse(state domain.BrowseState) domain.BrowseState {
	state.Results = u.items(state.Results)
	return state
}

func (u imageURLs) favorites(state domain.FavoritesState) domain.FavoritesState {
	state.Items = u.items(state.Items)
	return state
}

func (u imageURLs) home(feed domain.HomeFeed) domain.HomeFeed {
	if feed.Featured != nil {
		featured := u.item(*feed.Featured)
		feed.Featured = &featured
	}
	rows := make([]domain.CategoryListing, len(feed.Rows))
	for i, row := range feed.Rows {
		row.Items = u.items(row.Items)
		rows[i] = row
	}
	feed.Rows = rows
	return feed
}

func (u imageURLs) details(d *tmdb.Details) *tmdb.Details {
	out := *d
	out.MediaItem = u.item(d.MediaItem)
	out.Similar.Results = u.items(d.Similar.Results)
	out.Recommendations.Results = u.items(d.Recommendations.Results)
	if d.Credits.Cast != nil {
		out.Credits.Cast = make([]tmdb.CastMember, len(d.Credits.Cast))
		for i, c := range d.Credits.Cast {
			c.ProfileURL = u.images.Profile(c.ProfilePath)
			out.Credits.Cast[i] = c
		}
	}
	return &out
}
