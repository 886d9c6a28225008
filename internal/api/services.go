package api

import (
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/service"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// Services groups the session containers used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Favorites *service.FavoritesService
	Theme     *service.ThemeService
	Search    *service.SearchService
	Catalog   *service.CatalogService
}

// HealthTargets are the components inspected by the health check. Any of
// them may be nil, in which case the component is reported as not configured.
type HealthTargets struct {
	Store store.KV
	SSE   *sse.Manager
	Index *search.FavoritesIndex
}
