// Package di provides dependency injection configuration for the CineWave server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/di/providers"
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	register(injector)
	return injector
}

func register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Metadata layer
	do.Provide(injector, providers.ProvideMetadataClient)
	do.Provide(injector, providers.ProvideCollator)
	do.Provide(injector, providers.ProvideFavoritesIndex)

	// Session containers
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideFavoritesService)
	do.Provide(injector, providers.ProvideThemeService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideSession)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.LoggerHandle](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.MetadataClientHandle](injector)
	_ = do.MustInvoke[*normalize.Collator](injector)
	if _, err := do.Invoke[*search.FavoritesIndex](injector); err != nil {
		return err
	}

	// Session containers
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*providers.FavoritesServiceHandle](injector)
	_ = do.MustInvoke[*service.ThemeService](injector)
	_ = do.MustInvoke[*providers.SearchServiceHandle](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	if _, err := do.Invoke[*providers.Session](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
