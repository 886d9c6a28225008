package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cinewave/cinewave/internal/debounce"
	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// MaxSearchResults caps the results kept for display.
const MaxSearchResults = 20

// SearchService turns query text and filters into a result listing.
//
// Keystrokes go through SetInput and are promoted to the effective query once
// the input has been quiet for the debounce delay. Submit bypasses the delay.
// Every fetch is tagged with a generation number; a response whose generation
// is no longer the latest is dropped, so overlapping requests resolve
// last-request-wins.
type SearchService struct {
	client   MetadataClient
	events   store.EventEmitter
	collator *normalize.Collator
	logger   *slog.Logger

	input *debounce.Debouncer[string]

	// ctx bounds fetches started from the debouncer; Close cancels it.
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	mu    sync.RWMutex
	state domain.SearchState
}

// NewSearchService creates the orchestrator with an empty query.
func NewSearchService(
	client MetadataClient,
	events store.EventEmitter,
	collator *normalize.Collator,
	debounceDelay time.Duration,
	logger *slog.Logger,
) *SearchService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &SearchService{
		client:   client,
		events:   events,
		collator: collator,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		state: domain.SearchState{
			Filters: domain.DefaultSearchFilters(),
			Results: []domain.MediaItem{},
		},
	}
	s.input = debounce.New(debounceDelay, s.settle)
	return s
}

// SetInput records a keystroke. The effective query follows once the input
// has been quiet for the debounce delay.
func (s *SearchService) SetInput(raw string) domain.SearchState {
	s.mu.Lock()
	s.state.RawInput = raw
	s.mu.Unlock()

	s.input.Schedule(raw)
	return s.publish()
}

// settle promotes debounced input to the effective query. Unchanged text
// does not refetch.
func (s *SearchService) settle(raw string) {
	query := normalize.Query(raw)

	s.mu.RLock()
	unchanged := query == s.state.Query
	s.mu.RUnlock()
	if unchanged {
		return
	}

	s.inflight.Go(func() {
		s.run(s.ctx, query)
	})
}

// Submit searches for raw immediately, dropping any pending debounced input.
func (s *SearchService) Submit(ctx context.Context, raw string) domain.SearchState {
	s.input.Cancel()

	s.mu.Lock()
	s.state.RawInput = raw
	s.mu.Unlock()

	s.run(context.WithoutCancel(ctx), normalize.Query(raw))
	return s.State()
}

// SetFilters changes the type filter and ordering and reruns the current
// query with them.
func (s *SearchService) SetFilters(ctx context.Context, filters domain.SearchFilters) (domain.SearchState, error) {
	if filters.MediaType == "" {
		filters.MediaType = domain.FilterAll
	}
	if filters.SortBy == "" {
		filters.SortBy = domain.SortPopularity
	}
	if !filters.MediaType.Valid() {
		return s.State(), domainerrors.FieldError("mediaType", "must be one of: all movie tv person")
	}
	if !filters.SortBy.Valid() {
		return s.State(), domainerrors.FieldError("sortBy", "must be one of: popularity rating year title")
	}

	s.mu.Lock()
	changed := s.state.Filters != filters
	s.state.Filters = filters
	query := s.state.Query
	s.mu.Unlock()

	if !changed {
		return s.State(), nil
	}
	s.run(context.WithoutCancel(ctx), query)
	return s.State(), nil
}

// Retry reissues the current effective query.
func (s *SearchService) Retry(ctx context.Context) domain.SearchState {
	s.mu.RLock()
	query := s.state.Query
	s.mu.RUnlock()

	s.run(context.WithoutCancel(ctx), query)
	return s.State()
}

// State returns the observable search state.
func (s *SearchService) State() domain.SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.Results = slices.Clone(s.state.Results)
	return state
}

// Wait blocks until fetches started from debounced input have finished.
func (s *SearchService) Wait() {
	s.inflight.Wait()
}

// Close drops pending input and abandons in-flight fetches.
func (s *SearchService) Close() error {
	s.input.Discard()
	s.cancel()
	s.inflight.Wait()
	return nil
}

// run fetches query with the current filters. An empty query clears the
// results without a request.
func (s *SearchService) run(ctx context.Context, query string) {
	s.mu.Lock()
	s.state.Generation++
	gen := s.state.Generation
	s.state.Query = query
	filters := s.state.Filters

	if query == "" {
		s.state.Loading = false
		s.state.Error = ""
		s.state.ErrorCode = ""
		s.state.Results = []domain.MediaItem{}
		s.mu.Unlock()
		s.publish()
		return
	}

	s.state.Loading = true
	s.state.Error = ""
	s.state.ErrorCode = ""
	s.mu.Unlock()
	s.publish()

	results, err := s.fetch(ctx, query, filters)

	s.mu.Lock()
	if gen != s.state.Generation {
		latest := s.state.Generation
		s.mu.Unlock()
		s.logger.Debug("dropping stale search response",
			"query", query,
			"generation", gen,
			"latest", latest)
		return
	}

	s.state.Loading = false
	if err != nil {
		derr := upstreamError(err)
		s.state.Error = derr.Message
		s.state.ErrorCode = string(derr.Code)
		s.mu.Unlock()
		s.logger.Warn("search failed",
			"query", query,
			"media_type", filters.MediaType,
			"code", derr.Code,
			"error", err)
		s.publish()
		return
	}

	s.state.Results = results
	s.mu.Unlock()
	s.logger.Debug("search completed", "query", query, "results", len(results))
	s.publish()
}

// fetch runs the request pipeline: scoped search, post-filter, sort, truncate.
func (s *SearchService) fetch(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.MediaItem, error) {
	page, err := s.client.Search(ctx, tmdb.ScopeFor(filters.MediaType), query, 1)
	if err != nil {
		return nil, err
	}

	results := filterSearchResults(page.Results, filters.MediaType)
	s.sortResults(results, filters.SortBy)
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}

// filterSearchResults drops people from multi-type searches and, except for
// person searches, entries without a poster.
func filterSearchResults(items []domain.MediaItem, filter domain.MediaTypeFilter) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		switch filter {
		case domain.FilterPerson:
		case domain.FilterAll:
			if item.Classify() == domain.MediaTypePerson || !item.HasPoster() {
				continue
			}
		default:
			if !item.HasPoster() {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func (s *SearchService) sortResults(items []domain.MediaItem, by domain.SortBy) {
	switch by {
	case domain.SortRating:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return cmp.Compare(b.VoteAverage, a.VoteAverage)
		})
	case domain.SortYear:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return strings.Compare(b.Date(), a.Date())
		})
	case domain.SortTitle:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			if s.collator == nil {
				return strings.Compare(a.DisplayTitle(), b.DisplayTitle())
			}
			return s.collator.Compare(a.DisplayTitle(), b.DisplayTitle())
		})
	default:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return cmp.Compare(b.Popularity, a.Popularity)
		})
	}
}

func (s *SearchService) publish() domain.SearchState {
	state := s.State()
	s.events.Emit(sse.NewSearchUpdatedEvent(state))
	return state
}
