package providers

import (
	"github.com/samber/do/v2"

	"github.com/cinewave/cinewave/internal/search"
)

// ProvideFavoritesIndex provides the in-memory Bleve index over the current
// favorites set. FavoritesService owns and closes it.
func ProvideFavoritesIndex(i do.Injector) (*search.FavoritesIndex, error) {
	log := do.MustInvoke[*LoggerHandle](i)

	index, err := search.NewFavoritesIndex(log.Logger.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Favorites index initialized")
	return index, nil
}
