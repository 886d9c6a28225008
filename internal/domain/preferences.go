package domain

// ThemeMode is the persisted display mode.
type ThemeMode string

// Theme modes.
const (
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

// ParseThemeMode returns the mode for s and whether s named a known mode.
func ParseThemeMode(s string) (ThemeMode, bool) {
	switch ThemeMode(s) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	default:
		return "", false
	}
}

// IsDark reports whether the mode is dark.
func (m ThemeMode) IsDark() bool { return m == ThemeDark }

// ThemeFromDark converts the boolean flag to its string form.
func ThemeFromDark(dark bool) ThemeMode {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// MediaTypeFilter scopes a search.
type MediaTypeFilter string

// Search scopes.
const (
	FilterAll    MediaTypeFilter = "all"
	FilterMovie  MediaTypeFilter = "movie"
	FilterTV     MediaTypeFilter = "tv"
	FilterPerson MediaTypeFilter = "person"
)

// Valid reports whether f is a known filter.
func (f MediaTypeFilter) Valid() bool {
	switch f {
	case FilterAll, FilterMovie, FilterTV, FilterPerson:
		return true
	default:
		return false
	}
}

// SortBy orders search results.
type SortBy string

// Search result orderings.
const (
	SortPopularity SortBy = "popularity"
	SortRating     SortBy = "rating"
	SortYear       SortBy = "year"
	SortTitle      SortBy = "title"
)

// Valid reports whether s is a known ordering.
func (s SortBy) Valid() bool {
	switch s {
	case SortPopularity, SortRating, SortYear, SortTitle:
		return true
	default:
		return false
	}
}

// FavoritesSort orders a favorites listing.
type FavoritesSort string

// Favorites orderings. SortAddedAt is the default.
const (
	SortAddedAt        FavoritesSort = "addedAt"
	SortFavoritesTitle FavoritesSort = "title"
	SortFavoritesYear  FavoritesSort = "year"
	SortFavoritesVote  FavoritesSort = "rating"
)

// Valid reports whether s is a known ordering.
func (s FavoritesSort) Valid() bool {
	switch s {
	case SortAddedAt, SortFavoritesTitle, SortFavoritesYear, SortFavoritesVote:
		return true
	default:
		return false
	}
}

// Category is a named genre row in browse and home listings.
type Category struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	GenreID   int       `json:"genreId,omitzero"`
	MediaType MediaType `json:"mediaType"`
}

// CategoryListing is a category together with the items fetched for it.
// A failed fetch leaves Items empty.
type CategoryListing struct {
	Category `json:",inline"`
	Items    []MediaItem `json:"items"`
	Error    string      `json:"error,omitempty"`
}
