package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/service"
)

func (s *Server) registerFavoritesRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Description: "Returns the current user's favorites, optionally narrowed by type and text and sorted",
		Tags:        []string{"Favorites"},
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/favorites",
		Summary:     "Add favorite",
		Description: "Adds a movie or show to the favorites. Adding a present item is a no-op.",
		Tags:        []string{"Favorites"},
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/favorites/toggle",
		Summary:     "Toggle favorite",
		Description: "Removes the item when present and adds it otherwise",
		Tags:        []string{"Favorites"},
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFavorite",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites/{id}",
		Summary:     "Get favorite",
		Description: "Returns a favorited item by id",
		Tags:        []string{"Favorites"},
	}, s.handleGetFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/favorites/{id}",
		Summary:     "Remove favorite",
		Description: "Removes an item from the favorites. Removing an absent id succeeds.",
		Tags:        []string{"Favorites"},
	}, s.handleRemoveFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearFavorites",
		Method:      http.MethodDelete,
		Path:        "/api/v1/favorites",
		Summary:     "Clear favorites",
		Description: "Empties the favorites and erases the stored slot",
		Tags:        []string{"Favorites"},
	}, s.handleClearFavorites)
}

// === DTOs ===

// ListFavoritesInput contains the listing filters.
type ListFavoritesInput struct {
	Type string `query:"type" doc:"Media type filter (movie, tv)"`
	Sort string `query:"sort" doc:"Ordering (addedAt, title, year, rating); insertion order when empty"`
	Q    string `query:"q" doc:"Text filter on title and overview"`
}

// FavoritesListResponse is a filtered favorites listing.
type FavoritesListResponse struct {
	Items []domain.MediaItem `json:"items" doc:"Matching favorites"`
	Count int                `json:"count" doc:"Number of matching favorites"`
}

// FavoritesListOutput wraps the listing for Huma.
type FavoritesListOutput struct {
	Body FavoritesListResponse
}

// MediaItemRequest is a movie or show summary as sent by a client.
type MediaItemRequest struct {
	ID           int64   `json:"id" doc:"Item id"`
	MediaType    string  `json:"media_type,omitempty" doc:"movie or tv; inferred from the dates when absent"`
	Title        string  `json:"title,omitempty" doc:"Movie title"`
	Name         string  `json:"name,omitempty" doc:"Show name"`
	ReleaseDate  string  `json:"release_date,omitempty" doc:"Movie release date"`
	FirstAirDate string  `json:"first_air_date,omitempty" doc:"Show first air date"`
	PosterPath   string  `json:"poster_path,omitempty" doc:"Poster image path"`
	BackdropPath string  `json:"backdrop_path,omitempty" doc:"Backdrop image path"`
	VoteAverage  float64 `json:"vote_average,omitempty" doc:"Average rating"`
	VoteCount    int     `json:"vote_count,omitempty" doc:"Number of votes"`
	Popularity   float64 `json:"popularity,omitempty" doc:"Popularity score"`
	Overview     string  `json:"overview,omitempty" doc:"Synopsis"`
	GenreIDs     []int   `json:"genre_ids,omitempty" doc:"Genre ids"`
}

func (r MediaItemRequest) toDomain() domain.MediaItem {
	return domain.MediaItem{
		ID:           r.ID,
		MediaType:    domain.MediaType(r.MediaType),
		Title:        r.Title,
		Name:         r.Name,
		ReleaseDate:  r.ReleaseDate,
		FirstAirDate: r.FirstAirDate,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		VoteAverage:  r.VoteAverage,
		VoteCount:    r.VoteCount,
		Popularity:   r.Popularity,
		Overview:     r.Overview,
		GenreIDs:     r.GenreIDs,
	}
}

// FavoriteItemInput carries a media item in the body.
type FavoriteItemInput struct {
	Body MediaItemRequest
}

// FavoriteIDInput contains the item id path parameter.
type FavoriteIDInput struct {
	ID int64 `path:"id" doc:"Item id"`
}

// FavoriteMutationResponse reports the outcome of an add or toggle.
type FavoriteMutationResponse struct {
	IsFavorite bool                  `json:"isFavorite" doc:"Whether the item is favorited after the call"`
	Changed    bool                  `json:"changed" doc:"Whether the set changed"`
	State      domain.FavoritesState `json:"state" doc:"Favorites state after the call"`
}

// FavoriteMutationOutput wraps the mutation response for Huma.
type FavoriteMutationOutput struct {
	Body FavoriteMutationResponse
}

// FavoriteOutput wraps a single item for Huma.
type FavoriteOutput struct {
	Body domain.MediaItem
}

// FavoritesStateOutput wraps the favorites state for Huma.
type FavoritesStateOutput struct {
	Body domain.FavoritesState
}

// === Handlers ===

func (s *Server) handleListFavorites(ctx context.Context, input *ListFavoritesInput) (*FavoritesListOutput, error) {
	opts := service.ListOptions{
		MediaType: domain.MediaType(input.Type),
		Sort:      domain.FavoritesSort(input.Sort),
		Query:     input.Q,
	}
	if opts.MediaType != "" && opts.MediaType != domain.MediaTypeMovie && opts.MediaType != domain.MediaTypeTV {
		return nil, domainerrors.FieldError("type", "must be one of: movie tv")
	}
	if opts.Sort != "" && !opts.Sort.Valid() {
		return nil, domainerrors.FieldError("sort", "must be one of: addedAt title year rating")
	}

	items, err := s.services.Favorites.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MediaItem{}
	}
	return &FavoritesListOutput{
		Body: FavoritesListResponse{Items: s.urls.items(items), Count: len(items)},
	}, nil
}

func (s *Server) handleAddFavorite(_ context.Context, input *FavoriteItemInput) (*FavoriteMutationOutput, error) {
	added, err := s.services.Favorites.Add(input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	return &FavoriteMutationOutput{
		Body: FavoriteMutationResponse{
			IsFavorite: true,
			Changed:    added,
			State:      s.urls.favorites(s.services.Favorites.State()),
		},
	}, nil
}

func (s *Server) handleToggleFavorite(_ context.Context, input *FavoriteItemInput) (*FavoriteMutationOutput, error) {
	favorited, err := s.services.Favorites.Toggle(input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	return &FavoriteMutationOutput{
		Body: FavoriteMutationResponse{
			IsFavorite: favorited,
			Changed:    true,
			State:      s.urls.favorites(s.services.Favorites.State()),
		},
	}, nil
}

func (s *Server) handleGetFavorite(_ context.Context, input *FavoriteIDInput) (*FavoriteOutput, error) {
	if !s.services.Auth.IsAuthenticated() {
		return nil, domainerrors.RequiresLogin("login required to read favorites")
	}
	item, ok := s.services.Favorites.Get(input.ID)
	if !ok {
		return nil, domainerrors.NotFound("item is not a favorite")
	}
	return &FavoriteOutput{Body: s.urls.item(item)}, nil
}

func (s *Server) handleRemoveFavorite(_ context.Context, input *FavoriteIDInput) (*FavoritesStateOutput, error) {
	if err := s.services.Favorites.Remove(input.ID); err != nil {
		return nil, err
	}
	return &FavoritesStateOutput{Body: s.urls.favorites(s.services.Favorites.State())}, nil
}

func (s *Server) handleClearFavorites(_ context.Context, _ *struct{}) (*FavoritesStateOutput, error) {
	if err := s.services.Favorites.Clear(); err != nil {
		return nil, err
	}
	return &FavoritesStateOutput{Body: s.urls.favorites(s.services.Favorites.State())}, nil
}
