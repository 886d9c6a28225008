// Package providers contains dependency injection providers for the CineWave server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// LoggerHandle wraps the logger so the rotated log file is closed last.
type LoggerHandle struct {
	*logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *LoggerHandle) Shutdown() error {
	return h.Close()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*LoggerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		File:        logger.FileConfig{Path: cfg.Logger.File},
	})

	log.Info("Starting CineWave",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"storage_backend", cfg.Storage.Backend,
		"data_path", cfg.Storage.DataPath,
		"language", cfg.TMDB.Language,
	)

	return &LoggerHandle{Logger: log}, nil
}
