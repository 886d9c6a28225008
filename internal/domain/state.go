package domain

// AuthStatus is the phase of the identity state machine.
type AuthStatus string

// Identity phases. A session starts Unresolved until the stored session is read.
const (
	AuthUnresolved    AuthStatus = "unresolved"
	AuthAnonymous     AuthStatus = "anonymous"
	AuthAuthenticated AuthStatus = "authenticated"
)

// AuthState is the observable output of the identity container.
type AuthState struct {
	Status          AuthStatus `json:"status"`
	User            *User      `json:"user,omitempty"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// TypeCounts holds per-media-type totals of a favorites set.
type TypeCounts struct {
	Movie int `json:"movie"`
	TV    int `json:"tv"`
}

// FavoritesState is the observable output of the favorites container.
type FavoritesState struct {
	UserID        int64       `json:"userId,omitzero"`
	Loaded        bool        `json:"isLoaded"`
	Items         []MediaItem `json:"items"`
	Count         int         `json:"count"`
	Counts        TypeCounts  `json:"counts"`
	HasAny        bool        `json:"hasFavorites"`
	IsEmpty       bool        `json:"isEmpty"`
	RequiresLogin bool        `json:"requiresLogin"`
}

// ThemeState is the observable output of the theme container.
type ThemeState struct {
	IsDarkMode   bool      `json:"isDarkMode"`
	CurrentTheme ThemeMode `json:"currentTheme"`
	RootClass    string    `json:"rootClass"`
}

// SearchFilters narrows and orders a search.
type SearchFilters struct {
	MediaType MediaTypeFilter `json:"mediaType"`
	SortBy    SortBy          `json:"sortBy"`
}

// DefaultSearchFilters returns the filters a new session starts with.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{MediaType: FilterAll, SortBy: SortPopularity}
}

// SearchState is the observable output of the search orchestrator.
// Generation increases with every request issued; a response tagged with an
// older generation is discarded.
type SearchState struct {
	RawInput   string        `json:"rawInput"`
	Query      string        `json:"query"`
	Filters    SearchFilters `json:"filters"`
	Loading    bool          `json:"loading"`
	Error      string        `json:"error,omitempty"`
	ErrorCode  string        `json:"errorCode,omitempty"`
	Results    []MediaItem   `json:"results"`
	Generation uint64        `json:"generation"`
}

// BrowseParams selects one page of a category listing.
type BrowseParams struct {
	MediaType MediaType `json:"mediaType"`
	GenreID   int       `json:"genreId"`
	SortBy    SortBy    `json:"sortBy,omitempty"`
	Year      int       `json:"year,omitzero"`
	Page      int       `json:"page"`
}

// BrowseState is the observable output of a category listing.
type BrowseState struct {
	Params     BrowseParams `json:"params"`
	GenreName  string       `json:"genreName,omitempty"`
	Loading    bool         `json:"loading"`
	Error      string       `json:"error,omitempty"`
	ErrorCode  string       `json:"errorCode,omitempty"`
	Results    []MediaItem  `json:"results"`
	TotalPages int          `json:"totalPages"`
	Generation uint64       `json:"generation"`
}

// HomeFeed is the aggregated home page: a featured item and the category rows
// in their fixed order.
type HomeFeed struct {
	Featured *MediaItem        `json:"featured,omitempty"`
	Rows     []CategoryListing `json:"rows"`
}
