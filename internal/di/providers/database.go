package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
	"github.com/cinewave/cinewave/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*LoggerHandle](i)

	manager := sse.NewManager(log.Logger.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the KV backend with shutdown capability.
type StoreHandle struct {
	store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured KV backend and applies the per-value
// quota.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	backend, err := OpenBackend(context.Background(), cfg.Storage, log.Logger.Logger, false)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.QuotaBytes > 0 {
		backend = store.WithQuota(backend, cfg.Storage.QuotaBytes)
	}

	log.Info("Store initialized",
		"backend", cfg.Storage.Backend,
		"path", cfg.Storage.DataPath,
		"quota_bytes", cfg.Storage.QuotaBytes,
	)

	return &StoreHandle{Backend: backend}, nil
}

// OpenBackend opens the backend named by cfg.Backend. readOnly is honored by
// the backends that support it and is used by inspection tooling.
func OpenBackend(ctx context.Context, cfg config.StorageConfig, log *slog.Logger, readOnly bool) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil

	case config.BackendBadger:
		return store.OpenBadger(filepath.Join(cfg.DataPath, "badger"), log, store.BadgerOptions{ReadOnly: readOnly})

	case config.BackendSQLite:
		return sqlite.Open(filepath.Join(cfg.DataPath, "cinewave.db"), log)

	case config.BackendFile:
		return store.NewFile(afero.NewOsFs(), filepath.Join(cfg.DataPath, "kv"))

	case config.BackendRedis:
		log.Info("Connecting to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return store.OpenRedis(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
