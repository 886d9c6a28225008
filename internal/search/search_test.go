package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
)

func setupTestIndex(t *testing.T) *FavoritesIndex {
	t.Helper()

	index, err := NewFavoritesIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.Replace([]domain.MediaItem{
		{ID: 603, Title: "Matrix", ReleaseDate: "1999-03-31", Overview: "A hacker learns the truth about reality."},
		{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20", Overview: "A chemistry teacher turns to crime."},
		{ID: 129, Title: "A Viagem de Chihiro", ReleaseDate: "2001-07-20", Overview: "Uma menina entra num mundo de espíritos."},
		{ID: 66732, Name: "Stranger Things", FirstAirDate: "2016-07-15", Overview: "Ação sobrenatural em Hawkins."},
	}))
	return index
}

func TestFavoritesIndex_Replace(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	require.NoError(t, index.Replace(nil))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestFavoritesIndex_SearchByTitle(t *testing.T) {
	index := setupTestIndex(t)

	ids, err := index.Search(context.Background(), Query{Text: "matrix"})
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Equal(t, int64(603), ids[0])
}

func TestFavoritesIndex_SearchToleratesTypos(t *testing.T) {
	index := setupTestIndex(t)

	ids, err := index.Search(context.Background(), Query{Text: "breaking bda"})
	require.NoError(t, err)
	assert.Contains(t, ids, int64(1396))
}

func TestFavoritesIndex_SearchFoldsDiacritics(t *testing.T) {
	index := setupTestIndex(t)

	ids, err := index.Search(context.Background(), Query{Text: "acao"})
	require.NoError(t, err)
	assert.Equal(t, []int64{66732}, ids)
}

func TestFavoritesIndex_FilterByType(t *testing.T) {
	index := setupTestIndex(t)

	ids, err := index.Search(context.Background(), Query{MediaType: domain.MediaTypeTV})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1396, 66732}, ids)

	ids, err = index.Search(context.Background(), Query{Text: "matrix", MediaType: domain.MediaTypeTV})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoritesIndex_IndexAndDelete(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.Index(&domain.MediaItem{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15"}))
	ids, err := index.Search(context.Background(), Query{Text: "inception"})
	require.NoError(t, err)
	assert.Equal(t, []int64{27205}, ids)

	require.NoError(t, index.Delete(27205))
	ids, err = index.Search(context.Background(), Query{Text: "inception"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoritesIndex_EmptyIndex(t *testing.T) {
	index, err := NewFavoritesIndex(nil)
	require.NoError(t, err)
	defer index.Close()

	ids, err := index.Search(context.Background(), Query{Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}
