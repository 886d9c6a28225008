package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/genre"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHome",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/home",
		Summary:     "Home feed",
		Description: "Returns the featured item and the fixed category rows. A row whose fetch failed is empty and carries its error.",
		Tags:        []string{"Catalog"},
	}, s.handleGetHome)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/categories",
		Summary:     "List categories",
		Description: "Returns the browsable genre categories of a media type",
		Tags:        []string{"Catalog"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "browseCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/catalog/browse",
		Summary:     "Browse category",
		Description: "Fetches one page of a genre listing and makes it the current listing. The genre is given by id or by name (\"acao\", \"Comédias\"). Pages are capped at 20.",
		Tags:        []string{"Catalog"},
	}, s.handleBrowse)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBrowse",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/browse",
		Summary:     "Current listing",
		Tags:        []string{"Catalog"},
	}, s.handleGetBrowse)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTitleDetails",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{type}/{id}",
		Summary:     "Title details",
		Description: "Returns the full record of a movie or show with credits, videos and similar titles",
		Tags:        []string{"Catalog"},
	}, s.handleGetDetails)

	huma.Register(s.api, huma.Operation{
		OperationID: "purgeCatalogCache",
		Method:      http.MethodDelete,
		Path:        "/api/v1/catalog/cache",
		Summary:     "Purge catalog cache",
		Description: "Drops every cached listing, details record and genre list so the next request goes upstream",
		Tags:        []string{"Catalog"},
	}, s.handlePurgeCatalogCache)
}

// === DTOs ===

// HomeOutput wraps the home feed for Huma.
type HomeOutput struct {
	Body domain.HomeFeed
}

// ListCategoriesInput selects the media type.
type ListCategoriesInput struct {
	Type string `query:"type" default:"movie" doc:"movie or tv"`
}

// CategoriesOutput wraps the category list for Huma.
type CategoriesOutput struct {
	Body struct {
		Categories []domain.Category `json:"categories" doc:"Genre categories"`
	}
}

// BrowseInput selects a listing page.
type BrowseInput struct {
	Body struct {
		MediaType string `json:"mediaType" required:"false" doc:"movie or tv"`
		GenreID   int    `json:"genreId" required:"false" doc:"Genre id"`
		Genre     string `json:"genre,omitempty" doc:"Genre name or slug, used when genreId is absent"`
		SortBy    string `json:"sortBy,omitempty" doc:"popularity, rating, year or title"`
		Year      int    `json:"year,omitempty" doc:"Release year filter"`
		Page      int    `json:"page,omitempty" doc:"Page number, 1 to 20"`
	}
}

// BrowseOutput wraps the listing state for Huma.
type BrowseOutput struct {
	Body domain.BrowseState
}

// DetailsInput identifies a title.
type DetailsInput struct {
	Type string `path:"type" doc:"movie or tv"`
	ID   int64  `path:"id" doc:"Title id"`
}

// DetailsOutput wraps a title record for Huma.
type DetailsOutput struct {
	Body *tmdb.Details
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps MessageResponse for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleGetHome(ctx context.Context, _ *struct{}) (*HomeOutput, error) {
	return &HomeOutput{Body: s.urls.home(s.services.Catalog.Home(ctx))}, nil
}

func (s *Server) handleListCategories(_ context.Context, input *ListCategoriesInput) (*CategoriesOutput, error) {
	categories, err := s.services.Catalog.Categories(domain.MediaType(input.Type))
	if err != nil {
		return nil, err
	}
	out := &CategoriesOutput{}
	out.Body.Categories = categories
	return out, nil
}

func (s *Server) handleBrowse(ctx context.Context, input *BrowseInput) (*BrowseOutput, error) {
	genreID := input.Body.GenreID
	if genreID == 0 && input.Body.Genre != "" {
		id, ok := genre.Resolve(input.Body.Genre)
		if !ok {
			return nil, domainerrors.FieldError("genre", "unknown genre")
		}
		genreID = id
	}

	state, err := s.services.Catalog.Browse(ctx, domain.BrowseParams{
		MediaType: domain.MediaType(input.Body.MediaType),
		GenreID:   genreID,
		SortBy:    domain.SortBy(input.Body.SortBy),
		Year:      input.Body.Year,
		Page:      input.Body.Page,
	})
	if err != nil {
		return nil, err
	}
	return &BrowseOutput{Body: s.urls.browse(state)}, nil
}

func (s *Server) handleGetBrowse(_ context.Context, _ *struct{}) (*BrowseOutput, error) {
	return &BrowseOutput{Body: s.urls.browse(s.services.Catalog.BrowseState())}, nil
}

func (s *Server) handleGetDetails(ctx context.Context, input *DetailsInput) (*DetailsOutput, error) {
	details, err := s.services.Catalog.Details(ctx, domain.MediaType(input.Type), input.ID)
	if err != nil {
		return nil, err
	}
	return &DetailsOutput{Body: s.urls.details(details)}, nil
}

func (s *Server) handlePurgeCatalogCache(_ context.Context, _ *struct{}) (*MessageOutput, error) {
	s.services.Catalog.Purge()
	s.logger.Info("catalog cache purged")
	return &MessageOutput{Body: MessageResponse{Message: "Catalog cache purged"}}, nil
}
