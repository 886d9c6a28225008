package tmdb

import (
	"context"

	"github.com/cinewave/cinewave/internal/domain"
)

// Scope selects the search endpoint.
type Scope string

// Search scopes.
const (
	ScopeMulti  Scope = "multi"
	ScopeMovie  Scope = "movie"
	ScopeTV     Scope = "tv"
	ScopePerson Scope = "person"
)

// ScopeFor maps a media type filter to its search scope.
func ScopeFor(filter domain.MediaTypeFilter) Scope {
	switch filter {
	case domain.FilterMovie:
		return ScopeMovie
	case domain.FilterTV:
		return ScopeTV
	case domain.FilterPerson:
		return ScopePerson
	default:
		return ScopeMulti
	}
}

// Search runs a text query. Results of scoped searches are stamped with the
// scope's media type; multi search results carry their own.
func (c *Client) Search(ctx context.Context, scope Scope, query string, page int) (*domain.Page, error) {
	q := pageQuery(page)
	q.Set("query", query)
	q.Set("include_adult", "false")

	var out domain.Page
	if err := c.get(ctx, "search", "/search/"+string(scope), q, &out); err != nil {
		return nil, err
	}
	if scope != ScopeMulti {
		stampMediaType(out.Results, domain.MediaType(scope))
	}
	return &out, nil
}
