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
	"github.com/cinewave/cinewave/internal/normalize"
	"github.com/cinewave/cinewave/internal/search"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// slotWrite is one debounced persistence job: the full set of a user at the
// time of the last mutation, or a request to erase the slot.
type slotWrite struct {
	userID int64
	items  []domain.MediaItem
	erase  bool
}

// FavoritesService owns the current user's favorites set. It follows the
// identity published by AuthService: the set is replaced by the new user's
// stored slot on every identity change and is empty while anonymous.
// Mutations are persisted through a debounced full-snapshot write.
type FavoritesService struct {
	kv       store.KV
	events   store.EventEmitter
	index    *search.FavoritesIndex
	collator *normalize.Collator
	logger   *slog.Logger
	now      func() time.Time

	saver *debounce.Debouncer[slotWrite]

	mu     sync.RWMutex
	user   *domain.User
	loaded bool
	items  []domain.MediaItem
}

// NewFavoritesService creates an Unloaded favorites container. index may be
// nil, in which case text filtering falls back to substring matching.
func NewFavoritesService(
	kv store.KV,
	events store.EventEmitter,
	index *search.FavoritesIndex,
	collator *normalize.Collator,
	saveDelay time.Duration,
	logger *slog.Logger,
) *FavoritesService {
	s := &FavoritesService{
		kv:       kv,
		events:   events,
		index:    index,
		collator: collator,
		logger:   logger,
		now:      time.Now,
	}
	s.saver = debounce.New(saveDelay, s.write)
	return s
}

// SetClock replaces the time source used for AddedAt stamps.
func (s *FavoritesService) SetClock(now func() time.Time) {
	s.now = now
}

// OnIdentityChange switches the container to user's slot. A save still
// pending for the previous user is written first.
func (s *FavoritesService) OnIdentityChange(ctx context.Context, user *domain.User) {
	s.saver.Flush()

	var items []domain.MediaItem
	if user != nil {
		items = s.load(ctx, user)
	}

	s.mu.Lock()
	s.user = user
	s.items = items
	s.loaded = true
	s.reindex(items)
	s.mu.Unlock()

	s.publish()
}

// load reads and sanitizes a user's slot. Entries without an id or a title
// are dropped; a corrupt slot loads as empty.
func (s *FavoritesService) load(ctx context.Context, user *domain.User) []domain.MediaItem {
	key := store.FavoritesKey(user.ID)
	stored, ok, err := store.GetJSON[[]domain.MediaItem](ctx, s.kv, key)
	if err != nil {
		s.logger.Warn("failed to load favorites, starting empty",
			"user_id", user.ID,
			"error", err)
		return []domain.MediaItem{}
	}
	if !ok {
		s.logger.Info("no favorites stored for user", "user_id", user.ID)
		return []domain.MediaItem{}
	}

	valid := make([]domain.MediaItem, 0, len(stored))
	for _, item := range stored {
		if item.Admissible() {
			valid = append(valid, item)
		}
	}
	if dropped := len(stored) - len(valid); dropped > 0 {
		s.logger.Warn("dropped invalid favorites on load",
			"user_id", user.ID,
			"dropped", dropped)
	}
	s.logger.Info("favorites loaded", "user_id", user.ID, "count", len(valid))
	return valid
}

// Add appends item to the set, stamping its media type, the time it was
// added and the owning user. Adding an item already present is a no-op and
// reports false.
func (s *FavoritesService) Add(item domain.MediaItem) (bool, error) {
	s.mu.Lock()
	if err := s.checkMutationLocked(item.ID); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.indexOfLocked(item.ID) >= 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.appendLocked(item)
	s.mu.Unlock()

	s.publish()
	return true, nil
}

// Remove drops the item with id. Removing an absent id succeeds.
func (s *FavoritesService) Remove(id int64) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domainerrors.RequiresLogin("login required to remove favorites")
	}
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.removeAtLocked(i)
	s.mu.Unlock()

	s.publish()
	return nil
}

// Toggle removes item when present and adds it otherwise. It reports whether
// the item ended up favorited.
func (s *FavoritesService) Toggle(item domain.MediaItem) (bool, error) {
	s.mu.Lock()
	if err := s.checkMutationLocked(item.ID); err != nil {
		s.mu.Unlock()
		return false, err
	}

	favorited := true
	if i := s.indexOfLocked(item.ID); i >= 0 {
		s.removeAtLocked(i)
		favorited = false
	} else {
		s.appendLocked(item)
	}
	s.mu.Unlock()

	s.publish()
	return favorited, nil
}

// Clear empties the set and erases the user's stored slot.
func (s *FavoritesService) Clear() error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domainerrors.RequiresLogin("login required to clear favorites")
	}
	userID := s.user.ID
	count := len(s.items)
	s.items = []domain.MediaItem{}
	s.reindex(nil)
	// Erasing goes through the debouncer so it cannot race a pending write.
	s.saver.Schedule(slotWrite{userID: userID, erase: true})
	s.mu.Unlock()

	s.saver.Flush()

	s.logger.Info("favorites cleared", "user_id", userID, "removed", count)
	s.publish()
	return nil
}

// IsFavorite reports whether id is in the set. It is always false while
// anonymous.
func (s *FavoritesService) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.indexOfLocked(id) >= 0
}

// Get returns the favorited item with id.
func (s *FavoritesService) Get(id int64) (domain.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.MediaItem{}, false
	}
	if i := s.indexOfLocked(id); i >= 0 {
		return s.items[i], true
	}
	return domain.MediaItem{}, false
}

// Items returns the set in insertion order.
func (s *FavoritesService) Items() []domain.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// ListByType returns the items classified as t, in insertion order.
func (s *FavoritesService) ListByType(t domain.MediaType) []domain.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByType(s.items, t)
}

// Sorted returns a sorted copy of the set. The set itself keeps insertion
// order. Unknown orderings fall back to SortAddedAt.
func (s *FavoritesService) Sorted(by domain.FavoritesSort) []domain.MediaItem {
	return s.sortItems(s.Items(), by)
}

// ListOptions narrows a favorites listing.
type ListOptions struct {
	MediaType domain.MediaType
	Sort      domain.FavoritesSort
	Query     string
}

// List filters by type and text, then sorts. Without a sort the listing
// keeps insertion order.
func (s *FavoritesService) List(ctx context.Context, opts ListOptions) ([]domain.MediaItem, error) {
	items := s.Items()
	if opts.MediaType != "" {
		items = filterByType(items, opts.MediaType)
	}

	if q := normalize.Query(opts.Query); q != "" {
		matched, err := s.match(ctx, items, q)
		if err != nil {
			return nil, err
		}
		items = matched
	}

	if opts.Sort != "" {
		items = s.sortItems(items, opts.Sort)
	}
	return items, nil
}

// match keeps the items whose text matches q.
func (s *FavoritesService) match(ctx context.Context, items []domain.MediaItem, q string) ([]domain.MediaItem, error) {
	if s.index == nil {
		needle := strings.ToLower(q)
		return slices.DeleteFunc(items, func(item domain.MediaItem) bool {
			return !strings.Contains(strings.ToLower(item.DisplayTitle()), needle) &&
				!strings.Contains(strings.ToLower(item.Overview), needle)
		}), nil
	}

	ids, err := s.index.Search(ctx, search.Query{Text: q})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "favorites search failed")
	}
	hit := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		hit[id] = struct{}{}
	}
	return slices.DeleteFunc(items, func(item domain.MediaItem) bool {
		_, ok := hit[item.ID]
		return !ok
	}), nil
}

// State returns the observable favorites state.
func (s *FavoritesService) State() domain.FavoritesState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := slices.Clone(s.items)
	if items == nil {
		items = []domain.MediaItem{}
	}
	state := domain.FavoritesState{
		Loaded:        s.loaded,
		Items:         items,
		Count:         len(items),
		HasAny:        len(items) > 0,
		IsEmpty:       len(items) == 0 && s.loaded,
		RequiresLogin: s.user == nil,
		Counts: domain.TypeCounts{
			Movie: len(filterByType(items, domain.MediaTypeMovie)),
			TV:    len(filterByType(items, domain.MediaTypeTV)),
		},
	}
	if s.user != nil {
		state.UserID = s.user.ID
	}
	return state
}

// Flush writes a pending save immediately.
func (s *FavoritesService) Flush() {
	s.saver.Flush()
}

// Close writes a pending save and stops accepting new ones.
func (s *FavoritesService) Close() error {
	s.saver.Stop()
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// write persists one debounced job. When the full records do not fit it
// retries with the reduced projection of every item.
func (s *FavoritesService) write(job slotWrite) {
	ctx := context.Background()
	key := store.FavoritesKey(job.userID)

	if job.erase {
		if err := s.kv.Remove(ctx, key); err != nil {
			s.logger.Error("failed to erase favorites", "user_id", job.userID, "error", err)
		}
		return
	}

	err := store.SetJSON(ctx, s.kv, key, job.items)
	if err == nil {
		s.logger.Debug("favorites saved", "user_id", job.userID, "count", len(job.items))
		return
	}
	if !store.IsQuotaExceeded(err) {
		s.logger.Error("failed to save favorites", "user_id", job.userID, "error", err)
		return
	}

	reduced := make([]domain.MediaItem, len(job.items))
	for i := range job.items {
		reduced[i] = job.items[i].Projection()
	}
	if err := store.SetJSON(ctx, s.kv, key, reduced); err != nil {
		s.logger.Error("failed to save reduced favorites",
			"user_id", job.userID,
			"count", len(reduced),
			"error", err)
		return
	}
	s.logger.Warn("storage quota exceeded, saved reduced favorites",
		"user_id", job.userID,
		"count", len(reduced))
}

func (s *FavoritesService) checkMutationLocked(id int64) error {
	if s.user == nil {
		return domainerrors.RequiresLogin("login required to change favorites")
	}
	if id == 0 {
		return domainerrors.FieldError("id", "is required")
	}
	return nil
}

// appendLocked stamps item and adds it to the end of the set. An item
// without a title is kept for the session; load-time sanitation drops it.
func (s *FavoritesService) appendLocked(item domain.MediaItem) {
	now := s.now().UTC()
	item.MediaType = item.Classify()
	item.AddedAt = &now
	item.UserID = s.user.ID

	s.items = append(slices.Clip(s.items), item)
	s.scheduleLocked()

	if s.index != nil {
		if err := s.index.Index(&item); err != nil {
			s.logger.Warn("failed to index favorite", "id", item.ID, "error", err)
		}
	}
	s.logger.Debug("favorite added", "user_id", s.user.ID, "id", item.ID, "title", item.DisplayTitle())
}

func (s *FavoritesService) removeAtLocked(i int) {
	id := s.items[i].ID
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	s.scheduleLocked()

	if s.index != nil {
		if err := s.index.Delete(id); err != nil {
			s.logger.Warn("failed to unindex favorite", "id", id, "error", err)
		}
	}
	s.logger.Debug("favorite removed", "user_id", s.user.ID, "id", id)
}

// scheduleLocked queues a write of the current set. Callers hold mu.
func (s *FavoritesService) scheduleLocked() {
	s.saver.Schedule(slotWrite{userID: s.user.ID, items: slices.Clone(s.items)})
}

func (s *FavoritesService) indexOfLocked(id int64) int {
	return slices.IndexFunc(s.items, func(item domain.MediaItem) bool { return item.ID == id })
}

func (s *FavoritesService) reindex(items []domain.MediaItem) {
	if s.index == nil {
		return
	}
	if err := s.index.Replace(items); err != nil {
		s.logger.Warn("failed to rebuild favorites index", "error", err)
	}
}

func (s *FavoritesService) publish() {
	s.events.Emit(sse.NewFavoritesChangedEvent(s.State()))
}

func (s *FavoritesService) sortItems(items []domain.MediaItem, by domain.FavoritesSort) []domain.MediaItem {
	switch by {
	case domain.SortFavoritesTitle:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return s.compareTitles(a.DisplayTitle(), b.DisplayTitle())
		})
	case domain.SortFavoritesYear:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return strings.Compare(b.Date(), a.Date())
		})
	case domain.SortFavoritesVote:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return cmp.Compare(b.VoteAverage, a.VoteAverage)
		})
	default:
		slices.SortStableFunc(items, func(a, b domain.MediaItem) int {
			return addedAt(b).Compare(addedAt(a))
		})
	}
	return items
}

func (s *FavoritesService) compareTitles(a, b string) int {
	if s.collator == nil {
		return strings.Compare(a, b)
	}
	return s.collator.Compare(a, b)
}

func addedAt(item domain.MediaItem) time.Time {
	if item.AddedAt == nil {
		return time.Time{}
	}
	return *item.AddedAt
}

func filterByType(items []domain.MediaItem, t domain.MediaType) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Classify() == t {
			out = append(out, item)
		}
	}
	return out
}
