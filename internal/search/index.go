package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/cinewave/cinewave/internal/domain"
)

// FavoritesIndex is an in-memory Bleve index over the current user's
// favorites. It is rebuilt whenever the favorites set is replaced.
//
// Thread safety: All public methods are safe for concurrent use.
type FavoritesIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // Protects the index pointer during Replace
}

// NewFavoritesIndex creates an empty in-memory index.
func NewFavoritesIndex(logger *slog.Logger) (*FavoritesIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &FavoritesIndex{index: index, logger: logger}, nil
}

func newMemIndex() (bleve.Index, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close closes the index and releases resources.
func (f *FavoritesIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index.Close()
}

// Replace discards the indexed documents and indexes items instead.
func (f *FavoritesIndex) Replace(items []domain.MediaItem) error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}

	batch := fresh.NewBatch()
	for i := range items {
		doc := NewFavoriteDocument(&items[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	f.mu.Lock()
	old := f.index
	f.index = fresh
	f.mu.Unlock()

	if err := old.Close(); err != nil {
		f.logger.Warn("failed to close replaced favorites index", "error", err)
	}
	return nil
}

// Index adds or updates one item.
func (f *FavoritesIndex) Index(item *domain.MediaItem) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	doc := NewFavoriteDocument(item)
	return f.index.Index(doc.ID, doc.ToMap())
}

// Delete removes one item.
func (f *FavoritesIndex) Delete(id int64) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.index.Delete(DocumentID(id))
}

// DocumentCount returns the number of indexed items.
func (f *FavoritesIndex) DocumentCount() (uint64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.index.DocCount()
}

// Query filters the indexed favorites.
type Query struct {
	Text      string
	MediaType domain.MediaType // empty means any type
	Limit     int              // 0 means all matches
}

// Search returns the ids of the matching items, best match first.
func (f *FavoritesIndex) Search(ctx context.Context, q Query) ([]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	size := q.Limit
	if size <= 0 {
		count, err := f.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		size = int(count)
	}
	if size == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), size, 0, false)
	res, err := f.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search favorites: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			f.logger.Warn("skipping favorites hit with bad id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildQuery constructs the Bleve query. Titles weigh more than overviews;
// a fuzzy match tolerates one typo and a prefix match serves partial words.
func buildQuery(q Query) query.Query {
	var queries []query.Query

	if text := strings.TrimSpace(q.Text); text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		fuzzyMatch := bleve.NewMatchQuery(text)
		fuzzyMatch.SetField("title")
		fuzzyMatch.SetFuzziness(1)
		fuzzyMatch.SetBoost(0.8)

		overviewMatch := bleve.NewMatchQuery(text)
		overviewMatch.SetField("overview")

		textQueries := []query.Query{titleMatch, fuzzyMatch, overviewMatch}

		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if q.MediaType != "" {
		tq := bleve.NewTermQuery(string(q.MediaType))
		tq.SetField("media_type")
		queries = append(queries, tq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
