package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// countingKV records the number of writes per key.
type countingKV struct {
	store.Backend

	mu   sync.Mutex
	sets map[string]int
}

func newCountingKV(b store.Backend) *countingKV {
	return &countingKV{Backend: b, sets: make(map[string]int)}
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.Backend.Set(ctx, key, value)
}

func (c *countingKV) Sets(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	if e, ok := event.(sse.Event); ok {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
}

func (r *recordingEmitter) OfType(t sse.EventType) []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sse.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fakeMetadata is a MetadataClient driven by per-test functions.
type fakeMetadata struct {
	search   func(ctx context.Context, scope tmdb.Scope, query string, page int) (*domain.Page, error)
	list     func(ctx context.Context, mediaType domain.MediaType, list tmdb.List, page int) (*domain.Page, error)
	discover func(ctx context.Context, p tmdb.DiscoverParams) (*domain.Page, error)
	details  func(ctx context.Context, mediaType domain.MediaType, id int64) (*tmdb.Details, error)
	genres   func(ctx context.Context, mediaType domain.MediaType) ([]domain.Genre, error)
}

func (f *fakeMetadata) Search(ctx context.Context, scope tmdb.Scope, query string, page int) (*domain.Page, error) {
	if f.search == nil {
		return &domain.Page{Page: 1}, nil
	}
	return f.search(ctx, scope, query, page)
}

func (f *fakeMetadata) List(ctx context.Context, mediaType domain.MediaType, list tmdb.List, page int) (*domain.Page, error) {
	if f.list == nil {
		return &domain.Page{Page: 1}, nil
	}
	return f.list(ctx, mediaType, list, page)
}

func (f *fakeMetadata) Discover(ctx context.Context, p tmdb.DiscoverParams) (*domain.Page, error) {
	if f.discover == nil {
		return &domain.Page{Page: 1}, nil
	}
	return f.discover(ctx, p)
}

func (f *fakeMetadata) Details(ctx context.Context, mediaType domain.MediaType, id int64) (*tmdb.Details, error) {
	if f.details == nil {
		return nil, tmdb.ErrNotFound
	}
	return f.details(ctx, mediaType, id)
}

func (f *fakeMetadata) Genres(ctx context.Context, mediaType domain.MediaType) ([]domain.Genre, error) {
	if f.genres == nil {
		return nil, nil
	}
	return f.genres(ctx, mediaType)
}

// session wires the identity and favorites containers the way the
// application does.
type session struct {
	kv        *countingKV
	events    *recordingEmitter
	auth      *AuthService
	favorites *FavoritesService
}

func setupSession(t *testing.T, backend store.Backend, saveDelay time.Duration) *session {
	t.Helper()

	kv := newCountingKV(backend)
	events := &recordingEmitter{}
	logger := testLogger()

	index, err := search.NewFavoritesIndex(logger)
	require.NoError(t, err)

	auth := NewAuthService(kv, events, AuthConfig{}, logger)
	auth.SetDelay(NoDelay)

	favorites := NewFavoritesService(kv, events, index, normalize.TitleCollator("pt-BR"), saveDelay, logger)
	auth.OnIdentityChange(favorites.OnIdentityChange)

	require.NoError(t, auth.Resolve(context.Background()))

	t.Cleanup(func() {
		_ = favorites.Close()
		_ = kv.Close()
	})

	return &session{kv: kv, events: events, auth: auth, favorites: favorites}
}

func (s *session) login(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := s.auth.Login(context.Background(), LoginRequest{Email: email, Password: "123456"})
	require.NoError(t, err)
	return user
}

func movie(id int64, title string) domain.MediaItem {
	return domain.MediaItem{
		ID:          id,
		MediaType:   domain.MediaTypeMovie,
		Title:       title,
		ReleaseDate: "2020-01-01",
		PosterPath:  "/poster.jpg",
	}
}
