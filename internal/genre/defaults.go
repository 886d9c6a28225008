// Package genre holds the fixed genre categories offered for browsing and the
// home rows, and resolves user-typed genre names to them.
package genre

import "github.com/cinewave/cinewave/internal/domain"

// Metadata API genre identifiers for the browsable categories.
const (
	Action      = 28
	Comedy      = 35
	Drama       = 18
	Horror      = 27
	Documentary = 99
	Animation   = 16
	Fantasy     = 14
)

// The TV catalog files action and fantasy under combined genres.
const (
	tvActionAdventure = 10759
	tvSciFiFantasy    = 10765
)

// Seed describes one browsable category.
type Seed struct {
	GenreID int
	Name    string
	TVName  string // Overrides Name in the TV listing when set
}

// Defaults lists the browsable categories in display order.
var Defaults = []Seed{
	{GenreID: Action, Name: "Ação"},
	{GenreID: Comedy, Name: "Comédia"},
	{GenreID: Drama, Name: "Drama"},
	{GenreID: Horror, Name: "Terror"},
	{GenreID: Fantasy, Name: "Fantasia"},
	{GenreID: Animation, Name: "Animação", TVName: "Animes"},
	{GenreID: Documentary, Name: "Documentário"},
}

// ForMediaType translates a category genre to the identifier the metadata
// API files it under for the given media type.
func ForMediaType(genreID int, mediaType domain.MediaType) int {
	if mediaType != domain.MediaTypeTV {
		return genreID
	}
	switch genreID {
	case Action:
		return tvActionAdventure
	case Fantasy:
		return tvSciFiFantasy
	default:
		return genreID
	}
}

// Categories returns the browsable categories for a media type.
func Categories(mediaType domain.MediaType) []domain.Category {
	out := make([]domain.Category, 0, len(Defaults))
	for _, s := range Defaults {
		name := s.Name
		if mediaType == domain.MediaTypeTV && s.TVName != "" {
			name = s.TVName
		}
		out = append(out, domain.Category{
			Key:       string(mediaType) + "-" + Slugify(s.Name),
			Name:      name,
			GenreID:   s.GenreID,
			MediaType: mediaType,
		})
	}
	return out
}

// Lookup returns the default category seed for a genre id.
func Lookup(genreID int) (Seed, bool) {
	for _, s := range Defaults {
		if s.GenreID == genreID {
			return s, true
		}
	}
	return Seed{}, false
}
