package providers

import (
	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/config"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
	"github.com/cinewave/cinewave/internal/normalize"
)

// MetadataClientHandle wraps the TMDB client with shutdown capability.
type MetadataClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *MetadataClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideMetadataClient provides the TMDB API client.
func ProvideMetadataClient(i do.Injector) (*MetadataClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	language := normalize.LanguageTag(cfg.TMDB.Language, "pt-BR")
	region := normalize.RegionCode(cfg.TMDB.Region)

	client := tmdb.New(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     language,
		Region:       region,
		Timeout:      cfg.TMDB.Timeout,
		RPS:          cfg.TMDB.RPS,
		Burst:        cfg.TMDB.Burst,
	}, log.Logger.Logger)

	if cfg.TMDB.APIKey == "" {
		log.Warn("TMDB_API_KEY is not set, catalog requests will fail")
	}
	log.Info("Metadata client initialized",
		"base_url", cfg.TMDB.BaseURL,
		"language", language,
		"region", region,
	)

	return &MetadataClientHandle{Client: client}, nil
}

// ProvideCollator provides the title collator for the configured language.
func ProvideCollator(i do.Injector) (*normalize.Collator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return normalize.TitleCollator(normalize.LanguageTag(cfg.TMDB.Language, "pt-BR")), nil
}
