package tmdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "load fixture %s", name)
	return data
}

type recordedRequest struct {
	path  string
	query url.Values
}

type testServer struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (s *testServer) last() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, status int, body []byte) (*Client, *testServer) {
	t.Helper()
	rec := &testServer{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{path: r.URL.Path, query: r.URL.Query()})
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			w.Write(body)
		}
	}))
	t.Cleanup(server.Close)

	client := New(Config{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Language: "pt-BR",
		Region:   "BR",
		RPS:      1000,
		Burst:    100,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(client.Close)

	return client, rec
}

func TestClient_SearchMulti(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, loadFixture(t, "search_multi.json"))

	page, err := client.Search(context.Background(), ScopeMulti, "matrix", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Results, 4)
	assert.Equal(t, domain.MediaTypePerson, page.Results[2].MediaType)
	assert.False(t, page.Results[3].HasPoster(), "null poster decodes as empty")

	req := rec.last()
	assert.Equal(t, "/search/multi", req.path)
	assert.Equal(t, "matrix", req.query.Get("query"))
	assert.Equal(t, "test-key", req.query.Get("api_key"))
	assert.Equal(t, "pt-BR", req.query.Get("language"))
	assert.Equal(t, "BR", req.query.Get("region"))
	assert.Equal(t, "false", req.query.Get("include_adult"))
}

func TestClient_SearchScopedStampsType(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, []byte(`{"page":1,"total_pages":1,"results":[{"id":5,"name":"Dark","first_air_date":"2017-12-01"}]}`))

	page, err := client.Search(context.Background(), ScopeTV, "dark", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeTV, page.Results[0].MediaType)
}

func TestClient_Discover(t *testing.T) {
	tests := []struct {
		name      string
		params    DiscoverParams
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name:     "movie by genre with year",
			params:   DiscoverParams{MediaType: domain.MediaTypeMovie, GenreID: 28, Page: 2, Year: 2024},
			wantPath: "/discover/movie",
			wantQuery: map[string]string{
				"with_genres":          "28",
				"page":                 "2",
				"sort_by":              "popularity.desc",
				"primary_release_year": "2024",
			},
		},
		{
			name:     "tv with explicit sort",
			params:   DiscoverParams{MediaType: domain.MediaTypeTV, GenreID: 18, SortBy: "vote_average.desc", Year: 2010},
			wantPath: "/discover/tv",
			wantQuery: map[string]string{
				"with_genres":         "18",
				"page":                "1",
				"sort_by":             "vote_average.desc",
				"first_air_date_year": "2010",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t, http.StatusOK, loadFixture(t, "discover_movie.json"))

			page, err := client.Discover(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Len(t, page.Results, 2)
			assert.Equal(t, tt.params.MediaType, page.Results[0].MediaType)

			req := rec.last()
			assert.Equal(t, tt.wantPath, req.path)
			for k, v := range tt.wantQuery {
				assert.Equal(t, v, req.query.Get(k), k)
			}
		})
	}
}

func TestClient_List(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, loadFixture(t, "discover_movie.json"))
	ctx := context.Background()

	_, err := client.List(ctx, domain.MediaTypeMovie, ListTrending, 1)
	require.NoError(t, err)
	assert.Equal(t, "/trending/movie/week", rec.last().path)

	_, err = client.List(ctx, domain.MediaTypeTV, ListAiringToday, 1)
	require.NoError(t, err)
	assert.Equal(t, "/tv/airing_today", rec.last().path)

	_, err = client.List(ctx, domain.MediaTypeTV, ListUpcoming, 1)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestClient_Details(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, loadFixture(t, "details_tv.json"))

	d, err := client.Details(context.Background(), domain.MediaTypeTV, 1396)
	require.NoError(t, err)

	assert.Equal(t, "/tv/1396", rec.last().path)
	assert.Equal(t, "credits,videos,similar,recommendations,content_ratings", rec.last().query.Get("append_to_response"))

	assert.Equal(t, "Breaking Bad", d.DisplayTitle())
	assert.Equal(t, domain.MediaTypeTV, d.MediaType)
	assert.Equal(t, []domain.Genre{{ID: 18, Name: "Drama"}, {ID: 80, Name: "Crime"}}, d.Genres)
	assert.Equal(t, 5, d.NumberOfSeasons)
	require.Len(t, d.Credits.Cast, 1)
	assert.Equal(t, "Walter White", d.Credits.Cast[0].Character)
	assert.Equal(t, domain.MediaTypeTV, d.Similar.Results[0].MediaType)

	trailer, ok := d.Trailer()
	assert.True(t, ok)
	assert.Equal(t, "HhesaQXLuRY", trailer.Key)
}

func TestClient_Genres(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, []byte(`{"genres":[{"id":28,"name":"Ação"},{"id":35,"name":"Comédia"}]}`))

	genres, err := client.Genres(context.Background(), domain.MediaTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, "/genre/movie/list", rec.last().path)
	assert.Equal(t, []domain.Genre{{ID: 28, Name: "Ação"}, {ID: 35, Name: "Comédia"}}, genres)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		wantErr error
	}{
		{name: "bad api key", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrBadRequest},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrServer},
		{name: "malformed payload", status: http.StatusOK, body: []byte(`{"results": [`), wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.status, tt.body)

			_, err := client.Search(context.Background(), ScopeMulti, "x", 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var tmdbErr *Error
			require.ErrorAs(t, err, &tmdbErr)
			assert.Equal(t, "search", tmdbErr.Op)
			assert.Equal(t, "/search/multi", tmdbErr.Path)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer client.Close()

	_, err := client.Search(context.Background(), ScopeMulti, "slow", 1)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestImages(t *testing.T) {
	img := NewImages("https://image.tmdb.org/t/p/")

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", img.Poster("/matrix.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w1280/bg.jpg", img.Backdrop("bg.jpg"))
	assert.Equal(t, PlaceholderPoster, img.Poster(""))
	assert.Equal(t, PlaceholderProfile, img.Profile(""))
	assert.Equal(t, "", img.URL("", "original"))
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, ScopeMulti, ScopeFor(domain.FilterAll))
	assert.Equal(t, ScopeMovie, ScopeFor(domain.FilterMovie))
	assert.Equal(t, ScopeTV, ScopeFor(domain.FilterTV))
	assert.Equal(t, ScopePerson, ScopeFor(domain.FilterPerson))
}
