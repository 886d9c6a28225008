package service

import (
	"cmp"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// A save delay long enough that nothing is written unless a test flushes.
const manualSave = time.Hour

func TestFavoritesService_AddAndRemove(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	added, err := s.favorites.Add(domain.MediaItem{ID: 42, Title: "X"})
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.favorites.IsFavorite(42))

	item, ok := s.favorites.Get(42)
	require.True(t, ok)
	assert.Equal(t, domain.MediaTypeMovie, item.MediaType)
	assert.NotNil(t, item.AddedAt)
	assert.Equal(t, s.auth.CurrentUser().ID, item.UserID)

	require.NoError(t, s.favorites.Remove(42))
	assert.False(t, s.favorites.IsFavorite(42))

	// Removing an absent id succeeds.
	require.NoError(t, s.favorites.Remove(42))
}

func TestFavoritesService_Uniqueness(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	for range 5 {
		_, err := s.favorites.Add(movie(7, "Duplicado"))
		require.NoError(t, err)
	}

	assert.Len(t, s.favorites.Items(), 1)
	assert.Equal(t, 1, s.favorites.State().Count)
}

func TestFavoritesService_ToggleSymmetry(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	_, err := s.favorites.Add(movie(1, "Um"))
	require.NoError(t, err)

	for _, item := range []domain.MediaItem{movie(1, "Um"), movie(2, "Dois")} {
		before := s.favorites.IsFavorite(item.ID)

		first, err := s.favorites.Toggle(item)
		require.NoError(t, err)
		assert.Equal(t, !before, first)

		second, err := s.favorites.Toggle(item)
		require.NoError(t, err)
		assert.Equal(t, before, second)

		assert.Equal(t, before, s.favorites.IsFavorite(item.ID))
	}
}

func TestFavoritesService_RequiresLogin(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)

	mutations := map[string]func() error{
		"add": func() error {
			_, err := s.favorites.Add(movie(1, "Um"))
			return err
		},
		"toggle": func() error {
			_, err := s.favorites.Toggle(movie(1, "Um"))
			return err
		},
		"remove": func() error { return s.favorites.Remove(1) },
		"clear":  func() error { return s.favorites.Clear() },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			err := mutate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrRequiresLogin))
			assert.False(t, errors.Is(err, domainerrors.ErrValidation))

			state := s.favorites.State()
			assert.True(t, state.RequiresLogin)
			assert.Empty(t, state.Items)
		})
	}
	assert.False(t, s.favorites.IsFavorite(1))
}

func TestFavoritesService_RejectsItemWithoutID(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	_, err := s.favorites.Add(domain.MediaItem{Title: "Sem id"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = s.favorites.Toggle(domain.MediaItem{Title: "Sem id"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	assert.Empty(t, s.favorites.Items())
}

func TestFavoritesService_AcceptsUntitledItem(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	added, err := s.favorites.Add(domain.MediaItem{ID: 42})
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.favorites.IsFavorite(42))
	assert.Equal(t, 1, s.favorites.State().Count)

	on, err := s.favorites.Toggle(domain.MediaItem{ID: 42})
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.favorites.IsFavorite(42))
}

func TestFavoritesService_PerUserIsolation(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)

	s.login(t, "a@example.com")
	_, err := s.favorites.Add(movie(100, "Filme do A"))
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(context.Background()))
	assert.False(t, s.favorites.IsFavorite(100))

	s.login(t, "b@example.com")
	assert.False(t, s.favorites.IsFavorite(100))
	assert.True(t, s.favorites.State().IsEmpty)

	_, err = s.favorites.Add(movie(200, "Filme do B"))
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(context.Background()))
	s.login(t, "a@example.com")
	assert.True(t, s.favorites.IsFavorite(100))
	assert.False(t, s.favorites.IsFavorite(200))
}

func TestFavoritesService_DebounceCoalescesWrites(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	user := s.login(t, "demo@cinewave.com")
	key := store.FavoritesKey(user.ID)

	for i := range int64(10) {
		_, err := s.favorites.Toggle(movie(i+1, "Filme"))
		require.NoError(t, err)
	}
	require.NoError(t, s.favorites.Remove(3))

	assert.Equal(t, 0, s.kv.Sets(key))

	s.favorites.Flush()
	assert.Equal(t, 1, s.kv.Sets(key))

	stored, ok, err := store.GetJSON[[]domain.MediaItem](context.Background(), s.kv, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stored, 9)
	for _, item := range stored {
		assert.NotEqual(t, int64(3), item.ID)
	}
}

func TestFavoritesService_DebouncedSaveFires(t *testing.T) {
	s := setupSession(t, store.NewMemory(), 20*time.Millisecond)
	user := s.login(t, "demo@cinewave.com")
	key := store.FavoritesKey(user.ID)

	for i := range int64(5) {
		_, err := s.favorites.Add(movie(i+1, "Filme"))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return s.kv.Sets(key) == 1
	}, time.Second, 5*time.Millisecond)

	stored, _, err := store.GetJSON[[]domain.MediaItem](context.Background(), s.kv, key)
	require.NoError(t, err)
	assert.Len(t, stored, 5)
}

func TestFavoritesService_PendingSaveFlushedOnLogout(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	user := s.login(t, "demo@cinewave.com")

	_, err := s.favorites.Add(movie(1, "Um"))
	require.NoError(t, err)
	require.NoError(t, s.auth.Logout(context.Background()))

	stored, ok, err := store.GetJSON[[]domain.MediaItem](context.Background(), s.kv, store.FavoritesKey(user.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stored, 1)
}

func TestFavoritesService_QuotaFallback(t *testing.T) {
	s := setupSession(t, store.WithQuota(store.NewMemory(), 1024), manualSave)
	user := s.login(t, "demo@cinewave.com")

	for i := range int64(3) {
		item := movie(i+1, "Filme")
		item.Overview = strings.Repeat("sinopse longa ", 40)
		item.BackdropPath = "/backdrop.jpg"
		_, err := s.favorites.Add(item)
		require.NoError(t, err)
	}
	s.favorites.Flush()

	stored, ok, err := store.GetJSON[[]domain.MediaItem](context.Background(), s.kv, store.FavoritesKey(user.ID))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored, 3)
	for _, item := range stored {
		assert.Empty(t, item.Overview)
		assert.Empty(t, item.BackdropPath)
		assert.Equal(t, "Filme", item.Title)
		assert.Equal(t, "/poster.jpg", item.PosterPath)
		assert.Equal(t, domain.MediaTypeMovie, item.MediaType)
	}

	// The in-memory set keeps the full records.
	full, _ := s.favorites.Get(1)
	assert.NotEmpty(t, full.Overview)
}

func TestFavoritesService_LoadSanitizesSlot(t *testing.T) {
	backend := store.NewMemory()
	ctx := context.Background()
	s := setupSession(t, backend, manualSave)
	user := s.login(t, "demo@cinewave.com")
	require.NoError(t, s.auth.Logout(ctx))

	require.NoError(t, store.SetJSON(ctx, backend, store.FavoritesKey(user.ID), []domain.MediaItem{
		movie(1, "Válido"),
		{ID: 0, Title: "Sem id"},
		{ID: 3},
		{ID: 4, Name: "Série", FirstAirDate: "2019-05-05"},
	}))

	s.login(t, "demo@cinewave.com")
	items := s.favorites.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(4), items[1].ID)
	assert.Equal(t, domain.TypeCounts{Movie: 1, TV: 1}, s.favorites.State().Counts)
}

func TestFavoritesService_CorruptSlotLoadsEmpty(t *testing.T) {
	backend := store.NewMemory()
	ctx := context.Background()
	s := setupSession(t, backend, manualSave)
	user := s.login(t, "demo@cinewave.com")
	require.NoError(t, s.auth.Logout(ctx))

	require.NoError(t, backend.Set(ctx, store.FavoritesKey(user.ID), "[{broken"))

	s.login(t, "demo@cinewave.com")
	state := s.favorites.State()
	assert.True(t, state.Loaded)
	assert.True(t, state.IsEmpty)
}

func TestFavoritesService_Clear(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	user := s.login(t, "demo@cinewave.com")

	_, err := s.favorites.Add(movie(1, "Um"))
	require.NoError(t, err)
	s.favorites.Flush()

	_, err = s.favorites.Add(movie(2, "Dois"))
	require.NoError(t, err)
	require.NoError(t, s.favorites.Clear())

	assert.Empty(t, s.favorites.Items())
	_, ok, err := s.kv.Get(context.Background(), store.FavoritesKey(user.ID))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFavoritesService_SortedDeterminism(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	items := []domain.MediaItem{
		{ID: 1, Title: "Zodíaco", VoteAverage: 7.1, ReleaseDate: "2007-03-02"},
		{ID: 2, Title: "Amélie", VoteAverage: 8.3, ReleaseDate: "2001-04-25"},
		{ID: 3, Name: "Bom Dia, Verônica", VoteAverage: 7.1, FirstAirDate: "2020-10-01"},
		{ID: 4, Title: "avatar", VoteAverage: 7.6, ReleaseDate: "2009-12-18"},
		{ID: 5, Title: "Érase una vez", ReleaseDate: ""},
	}
	for _, item := range items {
		_, err := s.favorites.Add(item)
		require.NoError(t, err)
	}

	byRating := s.favorites.Sorted(domain.SortFavoritesVote)
	for i := 1; i < len(byRating); i++ {
		assert.GreaterOrEqual(t, byRating[i-1].VoteAverage, byRating[i].VoteAverage)
	}

	collator := normalize.TitleCollator("pt-BR")
	byTitle := s.favorites.Sorted(domain.SortFavoritesTitle)
	for i := 1; i < len(byTitle); i++ {
		assert.LessOrEqual(t, collator.Compare(byTitle[i-1].DisplayTitle(), byTitle[i].DisplayTitle()), 0)
	}
	assert.Equal(t, int64(2), byTitle[0].ID)

	byYear := s.favorites.Sorted(domain.SortFavoritesYear)
	for i := 1; i < len(byYear); i++ {
		assert.GreaterOrEqual(t, cmp.Compare(byYear[i-1].Date(), byYear[i].Date()), 0)
	}

	// Sorting never reorders the set itself.
	assert.Equal(t, int64(1), s.favorites.Items()[0].ID)
}

func TestFavoritesService_ListByTypeAndQuery(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	for _, item := range []domain.MediaItem{
		{ID: 1, Title: "O Poderoso Chefão", Overview: "Família mafiosa"},
		{ID: 2, Name: "Breaking Bad", FirstAirDate: "2008-01-20", Overview: "Professor de química"},
		{ID: 3, Title: "Cidade de Deus", Overview: "Crescer na favela"},
	} {
		_, err := s.favorites.Add(item)
		require.NoError(t, err)
	}

	tv := s.favorites.ListByType(domain.MediaTypeTV)
	require.Len(t, tv, 1)
	assert.Equal(t, int64(2), tv[0].ID)

	found, err := s.favorites.List(context.Background(), ListOptions{Query: "chefao"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)

	found, err = s.favorites.List(context.Background(), ListOptions{MediaType: domain.MediaTypeMovie, Query: "química"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFavoritesService_PublishesState(t *testing.T) {
	s := setupSession(t, store.NewMemory(), manualSave)
	s.login(t, "demo@cinewave.com")

	_, err := s.favorites.Add(movie(1, "Um"))
	require.NoError(t, err)

	changes := s.events.OfType(sse.EventFavoritesChanged)
	require.NotEmpty(t, changes)
	last := changes[len(changes)-1].Data.(domain.FavoritesState)
	assert.Equal(t, 1, last.Count)
	assert.True(t, last.HasAny)
	assert.False(t, last.RequiresLogin)
}
