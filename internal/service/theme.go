package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// Root classes applied for each display mode.
const (
	DarkRootClass  = "dark-theme"
	LightRootClass = "light-theme"
)

// RootClass returns the document root class for mode.
func RootClass(mode domain.ThemeMode) string {
	if mode.IsDark() {
		return DarkRootClass
	}
	return LightRootClass
}

// Presenter applies the display mode to the presentation layer.
type Presenter interface {
	ApplyTheme(mode domain.ThemeMode)
}

// DocumentRoot is a Presenter that tracks the class list of the document
// root: exactly one of the theme classes is present at a time.
type DocumentRoot struct {
	mu      sync.RWMutex
	classes map[string]bool
}

// NewDocumentRoot creates a root with no theme class applied.
func NewDocumentRoot() *DocumentRoot {
	return &DocumentRoot{classes: make(map[string]bool)}
}

// ApplyTheme implements Presenter.
func (r *DocumentRoot) ApplyTheme(mode domain.ThemeMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, DarkRootClass)
	delete(r.classes, LightRootClass)
	r.classes[RootClass(mode)] = true
}

// HasClass reports whether class is applied.
func (r *DocumentRoot) HasClass(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[class]
}

// ThemeService owns the display mode flag.
type ThemeService struct {
	kv        store.KV
	events    store.EventEmitter
	presenter Presenter
	preferred domain.ThemeMode
	logger    *slog.Logger

	mu   sync.RWMutex
	dark bool
}

// NewThemeService creates the theme container. preferred is the host
// environment's color scheme, used when nothing is stored.
func NewThemeService(
	kv store.KV,
	events store.EventEmitter,
	presenter Presenter,
	preferred domain.ThemeMode,
	logger *slog.Logger,
) *ThemeService {
	if _, ok := domain.ParseThemeMode(string(preferred)); !ok {
		preferred = domain.ThemeDark
	}
	return &ThemeService{
		kv:        kv,
		events:    events,
		presenter: presenter,
		preferred: preferred,
		logger:    logger,
		dark:      true,
	}
}

// Init resolves the initial mode: the stored value when present and valid,
// otherwise the preferred color scheme. The resolved mode is applied and
// persisted like any later change.
func (s *ThemeService) Init(ctx context.Context) domain.ThemeState {
	mode := s.preferred
	source := "preference"

	stored, ok, err := store.GetJSON[string](ctx, s.kv, store.KeyTheme)
	switch {
	case err != nil:
		s.logger.Warn("failed to read stored theme, using preference", "error", err)
	case ok:
		if m, valid := domain.ParseThemeMode(stored); valid {
			mode = m
			source = "stored"
		} else {
			s.logger.Warn("ignoring unknown stored theme", "value", stored)
		}
	}

	s.logger.Info("theme resolved", "mode", mode, "source", source)
	return s.update(ctx, func(bool) domain.ThemeMode { return mode })
}

// Toggle flips the display mode.
func (s *ThemeService) Toggle(ctx context.Context) domain.ThemeState {
	return s.update(ctx, func(dark bool) domain.ThemeMode { return domain.ThemeFromDark(!dark) })
}

// SetExplicit sets the display mode by name.
func (s *ThemeService) SetExplicit(ctx context.Context, mode string) (domain.ThemeState, error) {
	m, ok := domain.ParseThemeMode(mode)
	if !ok {
		return s.State(), domainerrors.FieldError("mode", "must be one of: dark light")
	}
	return s.update(ctx, func(bool) domain.ThemeMode { return m }), nil
}

// IsDarkMode reports the current flag.
func (s *ThemeService) IsDarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// State returns the observable theme state.
func (s *ThemeService) State() domain.ThemeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mode := domain.ThemeFromDark(s.dark)
	return domain.ThemeState{
		IsDarkMode:   s.dark,
		CurrentTheme: mode,
		RootClass:    RootClass(mode),
	}
}

// update computes the next mode from the current flag, stores it, then
// persists it and applies it to the presenter. Both side effects run on
// every call, the initial resolution included.
func (s *ThemeService) update(ctx context.Context, next func(dark bool) domain.ThemeMode) domain.ThemeState {
	s.mu.Lock()
	mode := next(s.dark)
	s.dark = mode.IsDark()
	s.presenter.ApplyTheme(mode)
	if err := store.SetJSON(ctx, s.kv, store.KeyTheme, string(mode)); err != nil {
		s.logger.Warn("failed to persist theme", "mode", mode, "error", err)
	}
	s.mu.Unlock()

	state := s.State()
	s.events.Emit(sse.NewThemeChangedEvent(state))
	return state
}
