package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/domain"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search state",
		Description: "Returns the current query, filters, results and loading or error flags",
		Tags:        []string{"Search"},
	}, s.handleGetSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchInput",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/input",
		Summary:     "Record search input",
		Description: "Records the raw input. The search runs once the input has been quiet for the debounce delay; follow it on the event stream.",
		Tags:        []string{"Search"},
	}, s.handleSearchInput)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchSubmit",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/submit",
		Summary:     "Submit search",
		Description: "Runs the search immediately and returns the resulting state",
		Tags:        []string{"Search"},
	}, s.handleSearchSubmit)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSearchFilters",
		Method:      http.MethodPut,
		Path:        "/api/v1/search/filters",
		Summary:     "Set search filters",
		Description: "Changes the media type scope and ordering and reruns the current query",
		Tags:        []string{"Search"},
	}, s.handleSetSearchFilters)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRetry",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/retry",
		Summary:     "Retry search",
		Description: "Reruns the current query",
		Tags:        []string{"Search"},
	}, s.handleSearchRetry)
}

// SearchTextInput carries raw query text.
type SearchTextInput struct {
	Body struct {
		Query string `json:"query" required:"false" doc:"Raw query text"`
	}
}

// SearchFiltersInput carries the filters. Empty fields reset to defaults.
type SearchFiltersInput struct {
	Body struct {
		MediaType string `json:"mediaType,omitempty" doc:"all, movie, tv or person"`
		SortBy    string `json:"sortBy,omitempty" doc:"popularity, rating, year or title"`
	}
}

// SearchOutput wraps the search state for Huma.
type SearchOutput struct {
	Body domain.SearchState
}

func (s *Server) handleGetSearch(_ context.Context, _ *struct{}) (*SearchOutput, error) {
	return &SearchOutput{Body: s.urls.search(s.services.Search.State())}, nil
}

func (s *Server) handleSearchInput(_ context.Context, input *SearchTextInput) (*SearchOutput, error) {
	return &SearchOutput{Body: s.urls.search(s.services.Search.SetInput(input.Body.Query))}, nil
}

func (s *Server) handleSearchSubmit(ctx context.Context, input *SearchTextInput) (*SearchOutput, error) {
	return &SearchOutput{Body: s.urls.search(s.services.Search.Submit(ctx, input.Body.Query))}, nil
}

func (s *Server) handleSetSearchFilters(ctx context.Context, input *SearchFiltersInput) (*SearchOutput, error) {
	state, err := s.services.Search.SetFilters(ctx, domain.SearchFilters{
		MediaType: domain.MediaTypeFilter(input.Body.MediaType),
		SortBy:    domain.SortBy(input.Body.SortBy),
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: s.urls.search(state)}, nil
}

func (s *Server) handleSearchRetry(ctx context.Context, _ *struct{}) (*SearchOutput, error) {
	return &SearchOutput{Body: s.urls.search(s.services.Search.Retry(ctx))}, nil
}
