package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/domain"
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/service"
)

// ProvideAuthService provides the identity container.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return service.NewAuthService(storeHandle.Backend, sseHandle.Manager, service.AuthConfig{
		LoginLatency:   cfg.Session.LoginLatency,
		ProfileLatency: cfg.Session.ProfileLatency,
	}, log.Logger.Logger), nil
}

// FavoritesServiceHandle flushes the pending save on shutdown.
type FavoritesServiceHandle struct {
	*service.FavoritesService
}

// Shutdown implements do.Shutdownable.
func (h *FavoritesServiceHandle) Shutdown() error {
	return h.Close()
}

// ProvideFavoritesService provides the favorites container and subscribes it
// to identity changes.
func ProvideFavoritesService(i do.Injector) (*FavoritesServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	index := do.MustInvoke[*search.FavoritesIndex](i)
	collator := do.MustInvoke[*normalize.Collator](i)
	auth := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*LoggerHandle](i)

	svc := service.NewFavoritesService(
		storeHandle.Backend,
		sseHandle.Manager,
		index,
		collator,
		cfg.Session.FavoritesSaveDebounce,
		log.Logger.Logger,
	)
	auth.OnIdentityChange(svc.OnIdentityChange)

	return &FavoritesServiceHandle{FavoritesService: svc}, nil
}

// ProvideThemeService provides the theme container.
func ProvideThemeService(i do.Injector) (*service.ThemeService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return service.NewThemeService(
		storeHandle.Backend,
		sseHandle.Manager,
		service.NewDocumentRoot(),
		domain.ThemeMode(cfg.Session.PreferredColorScheme),
		log.Logger.Logger,
	), nil
}

// SearchServiceHandle abandons in-flight searches on shutdown.
type SearchServiceHandle struct {
	*service.SearchService
}

// Shutdown implements do.Shutdownable.
func (h *SearchServiceHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchService provides the search orchestrator.
func ProvideSearchService(i do.Injector) (*SearchServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*MetadataClientHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	collator := do.MustInvoke[*normalize.Collator](i)
	log := do.MustInvoke[*LoggerHandle](i)

	svc := service.NewSearchService(
		client.Client,
		sseHandle.Manager,
		collator,
		cfg.Session.SearchDebounce,
		log.Logger.Logger,
	)
	return &SearchServiceHandle{SearchService: svc}, nil
}

// ProvideCatalogService provides the category, home and details orchestrator.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*MetadataClientHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return service.NewCatalogService(client.Client, sseHandle.Manager, service.CatalogConfig{
		CacheSize: cfg.TMDB.CacheSize,
		CacheTTL:  cfg.TMDB.CacheTTL,
	}, log.Logger.Logger), nil
}

// Session is the resolved startup state of the session containers.
type Session struct {
	Auth  domain.AuthState
	Theme domain.ThemeState
}

// ProvideSession reads the stored session and theme. Favorites follow the
// resolved identity through their subscription.
func ProvideSession(i do.Injector) (*Session, error) {
	auth := do.MustInvoke[*service.AuthService](i)
	_ = do.MustInvoke[*FavoritesServiceHandle](i)
	theme := do.MustInvoke[*service.ThemeService](i)
	log := do.MustInvoke[*LoggerHandle](i)

	ctx := context.Background()
	if err := auth.Resolve(ctx); err != nil {
		return nil, err
	}
	themeState := theme.Init(ctx)

	authState := auth.State()
	if authState.User != nil {
		log.Info("Session restored", "user_id", authState.User.ID, "email", authState.User.Email)
	} else {
		log.Info("Session is anonymous")
	}

	return &Session{Auth: authState, Theme: themeState}, nil
}
