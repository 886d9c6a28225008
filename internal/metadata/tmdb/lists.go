package tmdb

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cinewave/cinewave/internal/domain"
)

// List names a curated listing endpoint.
type List string

// Curated listings. Not every list exists for both media types.
const (
	ListPopular     List = "popular"
	ListTrending    List = "trending"
	ListTopRated    List = "top_rated"
	ListNowPlaying  List = "now_playing"  // movie
	ListUpcoming    List = "upcoming"     // movie
	ListOnTheAir    List = "on_the_air"   // tv
	ListAiringToday List = "airing_today" // tv
)

func (l List) path(mediaType domain.MediaType) (string, bool) {
	if l == ListTrending {
		return "/trending/" + string(mediaType) + "/week", true
	}
	switch mediaType {
	case domain.MediaTypeMovie:
		switch l {
		case ListPopular, ListTopRated, ListNowPlaying, ListUpcoming:
			return "/movie/" + string(l), true
		}
	case domain.MediaTypeTV:
		switch l {
		case ListPopular, ListTopRated, ListOnTheAir, ListAiringToday:
			return "/tv/" + string(l), true
		}
	}
	return "", false
}

// List fetches one page of a curated listing for movies or TV shows.
func (c *Client) List(ctx context.Context, mediaType domain.MediaType, list List, page int) (*domain.Page, error) {
	path, ok := list.path(mediaType)
	if !ok {
		return nil, wrapError("list", string(list), 0, ErrBadRequest)
	}

	var out domain.Page
	if err := c.get(ctx, "list", path, pageQuery(page), &out); err != nil {
		return nil, err
	}
	stampMediaType(out.Results, mediaType)
	return &out, nil
}

// DiscoverParams filters a discover query.
type DiscoverParams struct {
	MediaType domain.MediaType
	GenreID   int
	Page      int
	SortBy    string // e.g. "popularity.desc"; default popularity.desc
	Year      int    // 0 means any year
}

// Discover lists titles of one genre.
func (c *Client) Discover(ctx context.Context, p DiscoverParams) (*domain.Page, error) {
	if p.MediaType != domain.MediaTypeMovie && p.MediaType != domain.MediaTypeTV {
		return nil, wrapError("discover", string(p.MediaType), 0, ErrBadRequest)
	}

	q := pageQuery(p.Page)
	if p.GenreID != 0 {
		q.Set("with_genres", strconv.Itoa(p.GenreID))
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	q.Set("sort_by", sortBy)
	q.Set("include_adult", "false")
	if p.Year > 0 {
		if p.MediaType == domain.MediaTypeTV {
			q.Set("first_air_date_year", strconv.Itoa(p.Year))
		} else {
			q.Set("primary_release_year", strconv.Itoa(p.Year))
		}
	}

	var out domain.Page
	if err := c.get(ctx, "discover", "/discover/"+string(p.MediaType), q, &out); err != nil {
		return nil, err
	}
	stampMediaType(out.Results, p.MediaType)
	return &out, nil
}

// Genres returns the genre list for movies or TV shows.
func (c *Client) Genres(ctx context.Context, mediaType domain.MediaType) ([]domain.Genre, error) {
	var out struct {
		Genres []domain.Genre `json:"genres"`
	}
	if err := c.get(ctx, "genres", "/genre/"+string(mediaType)+"/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// stampMediaType fills in the media type that type-specific endpoints omit.
func stampMediaType(items []domain.MediaItem, mediaType domain.MediaType) {
	for i := range items {
		if items[i].MediaType == "" {
			items[i].MediaType = mediaType
		}
	}
}
