package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/api"
	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/service"
	"github.com/cinewave/cinewave/internal/sse"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	index := do.MustInvoke[*search.FavoritesIndex](i)
	client := do.MustInvoke[*MetadataClientHandle](i)
	_ = do.MustInvoke[*Session](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Favorites: do.MustInvoke[*FavoritesServiceHandle](i).FavoritesService,
		Theme:     do.MustInvoke[*service.ThemeService](i),
		Search:    do.MustInvoke[*SearchServiceHandle](i).SearchService,
		Catalog:   do.MustInvoke[*service.CatalogService](i),
	}
	health := api.HealthTargets{
		Store: storeHandle.Backend,
		SSE:   sseHandle.Manager,
		Index: index,
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger.Logger)
	handler := api.NewServer(services, health, sseHandler, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		RPS:         cfg.Server.RPS,
		Burst:       cfg.Server.Burst,
		Images:      client.Images(),
	}, log.Logger.Logger)

	srv := api.NewHTTPServer(
		":"+cfg.Server.Port,
		handler,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		cfg.Server.IdleTimeout,
	)

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
