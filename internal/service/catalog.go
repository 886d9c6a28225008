package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sourcegraph/conc/iter"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/genre"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

const (
	// MaxBrowsePages caps the pages a category listing offers for navigation.
	MaxBrowsePages = 20

	// HomeRowSize is the number of items shown per home row.
	HomeRowSize = 8

	unknownGenreName = "Desconhecido"

	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute
)

// CatalogConfig sizes the response caches.
type CatalogConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// homeRow is one fixed row of the home feed.
type homeRow struct {
	category domain.Category
	fetch    func(ctx context.Context, c MetadataClient) (*domain.Page, error)
}

func listRow(key, name string, mediaType domain.MediaType, list tmdb.List) homeRow {
	return homeRow{
		category: domain.Category{Key: key, Name: name, MediaType: mediaType},
		fetch: func(ctx context.Context, c MetadataClient) (*domain.Page, error) {
			return c.List(ctx, mediaType, list, 1)
		},
	}
}

func genreRow(key, name string, mediaType domain.MediaType, genreID int) homeRow {
	return homeRow{
		category: domain.Category{Key: key, Name: name, GenreID: genreID, MediaType: mediaType},
		fetch: func(ctx context.Context, c MetadataClient) (*domain.Page, error) {
			return c.Discover(ctx, tmdb.DiscoverParams{
				MediaType: mediaType,
				GenreID:   genre.ForMediaType(genreID, mediaType),
				Page:      1,
			})
		},
	}
}

// homeRows lists the home feed rows in display order. The featured item is
// taken from the popular_movies row.
var homeRows = []homeRow{
	listRow("trending_movies", "Em Tendência", domain.MediaTypeMovie, tmdb.ListTrending),
	listRow("popular_movies", "Populares no Momento", domain.MediaTypeMovie, tmdb.ListPopular),
	listRow("popular_tv", "Séries em Alta", domain.MediaTypeTV, tmdb.ListPopular),
	genreRow("action", "Ação e Aventura", domain.MediaTypeMovie, genre.Action),
	genreRow("comedy", "Comédias", domain.MediaTypeMovie, genre.Comedy),
	genreRow("drama_tv", "Dramas", domain.MediaTypeTV, genre.Drama),
	genreRow("horror", "Terror", domain.MediaTypeMovie, genre.Horror),
	genreRow("documentary", "Documentários", domain.MediaTypeMovie, genre.Documentary),
}

const featuredRowKey = "popular_movies"

// CatalogService serves the category listings, the home feed and title
// details. Responses are cached for a short time so that paging back and
// forth or reloading the home feed does not refetch.
type CatalogService struct {
	client MetadataClient
	events store.EventEmitter
	logger *slog.Logger

	pages   *expirable.LRU[string, *domain.Page]
	details *expirable.LRU[string, *tmdb.Details]
	genres  *expirable.LRU[domain.MediaType, []domain.Genre]

	mu     sync.RWMutex
	browse domain.BrowseState
}

// NewCatalogService creates the catalog orchestrator.
func NewCatalogService(client MetadataClient, events store.EventEmitter, cfg CatalogConfig, logger *slog.Logger) *CatalogService {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &CatalogService{
		client:  client,
		events:  events,
		logger:  logger,
		pages:   expirable.NewLRU[string, *domain.Page](cfg.CacheSize, nil, cfg.CacheTTL),
		details: expirable.NewLRU[string, *tmdb.Details](cfg.CacheSize, nil, cfg.CacheTTL),
		genres:  expirable.NewLRU[domain.MediaType, []domain.Genre](4, nil, cfg.CacheTTL),
		browse:  domain.BrowseState{Results: []domain.MediaItem{}},
	}
}

// Categories returns the browsable genre categories for a media type.
func (s *CatalogService) Categories(mediaType domain.MediaType) ([]domain.Category, error) {
	if mediaType != domain.MediaTypeMovie && mediaType != domain.MediaTypeTV {
		return nil, domainerrors.FieldError("type", "must be one of: movie tv")
	}
	return genre.Categories(mediaType), nil
}

// Browse fetches one page of a genre listing and installs it as the current
// browse state. Overlapping calls resolve last-request-wins: a page that
// arrives after a newer request was issued is returned to its caller but not
// installed. Upstream failures are reported in the state, not as an error.
func (s *CatalogService) Browse(ctx context.Context, params domain.BrowseParams) (domain.BrowseState, error) {
	params, err := normalizeBrowseParams(params)
	if err != nil {
		return domain.BrowseState{}, err
	}

	s.mu.Lock()
	s.browse.Generation++
	gen := s.browse.Generation
	s.browse.Params = params
	s.browse.Loading = true
	s.browse.Error = ""
	s.browse.ErrorCode = ""
	s.mu.Unlock()
	s.publishBrowse()

	ctx = context.WithoutCancel(ctx)
	result := domain.BrowseState{
		Params:     params,
		GenreName:  s.genreName(ctx, params.MediaType, params.GenreID),
		Results:    []domain.MediaItem{},
		Generation: gen,
	}

	page, err := s.discover(ctx, params)
	if err != nil {
		derr := upstreamError(err)
		result.Error = derr.Message
		result.ErrorCode = string(derr.Code)
		s.logger.Warn("category fetch failed",
			"media_type", params.MediaType,
			"genre_id", params.GenreID,
			"page", params.Page,
			"code", derr.Code,
			"error", err)
	} else {
		result.Results = append(result.Results, page.Results...)
		result.TotalPages = min(page.TotalPages, MaxBrowsePages)
	}

	s.mu.Lock()
	if gen != s.browse.Generation {
		latest := s.browse.Generation
		s.mu.Unlock()
		s.logger.Debug("dropping stale category response",
			"genre_id", params.GenreID,
			"page", params.Page,
			"generation", gen,
			"latest", latest)
		return result, nil
	}
	s.browse = result
	s.mu.Unlock()

	s.publishBrowse()
	return result, nil
}

// BrowseState returns the current category listing.
func (s *CatalogService) BrowseState() domain.BrowseState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.browse
	state.Results = slices.Clone(s.browse.Results)
	return state
}

// Home fetches the home rows in parallel. A row whose fetch fails is kept
// with no items and its error message; the other rows are unaffected.
func (s *CatalogService) Home(ctx context.Context) domain.HomeFeed {
	mapper := iter.Mapper[homeRow, domain.CategoryListing]{MaxGoroutines: len(homeRows)}
	rows := mapper.Map(homeRows, func(row *homeRow) domain.CategoryListing {
		listing := domain.CategoryListing{Category: row.category, Items: []domain.MediaItem{}}

		page, err := s.cachedPage(ctx, "home:"+row.category.Key, func(ctx context.Context) (*domain.Page, error) {
			return row.fetch(ctx, s.client)
		})
		if err != nil {
			derr := upstreamError(err)
			listing.Error = derr.Message
			s.logger.Warn("home row fetch failed",
				"row", row.category.Key,
				"code", derr.Code,
				"error", err)
			return listing
		}

		listing.Items = append(listing.Items, page.Results[:min(len(page.Results), HomeRowSize)]...)
		return listing
	})

	feed := domain.HomeFeed{Rows: rows}
	for _, row := range rows {
		if row.Key == featuredRowKey && len(row.Items) > 0 {
			featured := row.Items[0]
			feed.Featured = &featured
		}
	}
	return feed
}

// Details returns the full record of a movie or TV show.
func (s *CatalogService) Details(ctx context.Context, mediaType domain.MediaType, id int64) (*tmdb.Details, error) {
	if mediaType != domain.MediaTypeMovie && mediaType != domain.MediaTypeTV {
		return nil, domainerrors.FieldError("type", "must be one of: movie tv")
	}
	if id <= 0 {
		return nil, domainerrors.FieldError("id", "must be positive")
	}

	key := fmt.Sprintf("%s:%d", mediaType, id)
	if d, ok := s.details.Get(key); ok {
		return d, nil
	}

	d, err := s.client.Details(ctx, mediaType, id)
	if err != nil {
		return nil, upstreamError(err)
	}
	s.details.Add(key, d)
	return d, nil
}

// Genres returns the genre list of a media type.
func (s *CatalogService) Genres(ctx context.Context, mediaType domain.MediaType) ([]domain.Genre, error) {
	if g, ok := s.genres.Get(mediaType); ok {
		return g, nil
	}
	g, err := s.client.Genres(ctx, mediaType)
	if err != nil {
		return nil, upstreamError(err)
	}
	s.genres.Add(mediaType, g)
	return g, nil
}

// Purge drops every cached response.
func (s *CatalogService) Purge() {
	s.pages.Purge()
	s.details.Purge()
	s.genres.Purge()
}

func (s *CatalogService) discover(ctx context.Context, p domain.BrowseParams) (*domain.Page, error) {
	key := fmt.Sprintf("discover:%s:%d:%s:%d:%d", p.MediaType, p.GenreID, p.SortBy, p.Year, p.Page)
	return s.cachedPage(ctx, key, func(ctx context.Context) (*domain.Page, error) {
		return s.client.Discover(ctx, tmdb.DiscoverParams{
			MediaType: p.MediaType,
			GenreID:   genre.ForMediaType(p.GenreID, p.MediaType),
			Page:      p.Page,
			SortBy:    discoverSort(p.SortBy, p.MediaType),
			Year:      p.Year,
		})
	})
}

func (s *CatalogService) cachedPage(ctx context.Context, key string, fetch func(context.Context) (*domain.Page, error)) (*domain.Page, error) {
	if page, ok := s.pages.Get(key); ok {
		return page, nil
	}
	page, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.pages.Add(key, page)
	return page, nil
}

// genreName resolves the display name of a category page from the genre
// list endpoint, falling back to the built-in names.
func (s *CatalogService) genreName(ctx context.Context, mediaType domain.MediaType, genreID int) string {
	upstreamID := genre.ForMediaType(genreID, mediaType)
	if genres, err := s.Genres(ctx, mediaType); err == nil {
		for _, g := range genres {
			if g.ID == upstreamID || g.ID == genreID {
				return g.Name
			}
		}
	} else {
		s.logger.Debug("genre list unavailable, using built-in names", "media_type", mediaType, "error", err)
	}

	if seed, ok := genre.Lookup(genreID); ok {
		if mediaType == domain.MediaTypeTV && seed.TVName != "" {
			return seed.TVName
		}
		return seed.Name
	}
	return unknownGenreName
}

func (s *CatalogService) publishBrowse() {
	s.events.Emit(sse.NewBrowseUpdatedEvent(s.BrowseState()))
}

func normalizeBrowseParams(p domain.BrowseParams) (domain.BrowseParams, error) {
	if p.MediaType != domain.MediaTypeMovie && p.MediaType != domain.MediaTypeTV {
		return p, domainerrors.FieldError("mediaType", "must be one of: movie tv")
	}
	if p.GenreID <= 0 {
		return p, domainerrors.FieldError("genreId", "must be positive")
	}
	if p.SortBy == "" {
		p.SortBy = domain.SortPopularity
	}
	if !p.SortBy.Valid() {
		return p, domainerrors.FieldError("sortBy", "must be one of: popularity rating year title")
	}
	if p.Year < 0 {
		return p, domainerrors.FieldError("year", "must not be negative")
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxBrowsePages {
		return p, domainerrors.FieldError("page", fmt.Sprintf("must be at most %d", MaxBrowsePages))
	}
	return p, nil
}

// discoverSort maps an ordering to the discover endpoint's sort_by value.
func discoverSort(by domain.SortBy, mediaType domain.MediaType) string {
	switch by {
	case domain.SortRating:
		return "vote_average.desc"
	case domain.SortYear:
		if mediaType == domain.MediaTypeTV {
			return "first_air_date.desc"
		}
		return "primary_release_date.desc"
	case domain.SortTitle:
		if mediaType == domain.MediaTypeTV {
			return "name.asc"
		}
		return "title.asc"
	default:
		return "popularity.desc"
	}
}
