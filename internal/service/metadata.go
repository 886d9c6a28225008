package service

import (
	"context"
	"errors"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
)

// MetadataClient is the slice of the metadata API the orchestrators use.
// *tmdb.Client implements it.
type MetadataClient interface {
	Search(ctx context.Context, scope tmdb.Scope, query string, page int) (*domain.Page, error)
	List(ctx context.Context, mediaType domain.MediaType, list tmdb.List, page int) (*domain.Page, error)
	Discover(ctx context.Context, p tmdb.DiscoverParams) (*domain.Page, error)
	Details(ctx context.Context, mediaType domain.MediaType, id int64) (*tmdb.Details, error)
	Genres(ctx context.Context, mediaType domain.MediaType) ([]domain.Genre, error)
}

var _ MetadataClient = (*tmdb.Client)(nil)

// upstreamError converts a metadata API failure into a domain error. The
// credential, not-found and rate-limit cases keep distinct codes; everything
// else is a generic upstream failure. All of them are recoverable.
func upstreamError(err error) *domainerrors.Error {
	var derr *domainerrors.Error
	if errors.As(err, &derr) {
		return derr
	}

	switch {
	case errors.Is(err, tmdb.ErrUnauthorized):
		return domainerrors.Wrap(err, domainerrors.CodeUpstreamUnauthorized, "metadata API rejected the configured credential")
	case errors.Is(err, tmdb.ErrNotFound):
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, "title not found")
	case errors.Is(err, tmdb.ErrRateLimited):
		return domainerrors.Wrap(err, domainerrors.CodeRateLimited, "metadata API rate limit reached, try again shortly")
	case errors.Is(err, tmdb.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, "metadata API timed out")
	case errors.Is(err, tmdb.ErrMalformed):
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, "metadata API returned an unreadable response")
	default:
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, "metadata API request failed")
	}
}
