package ports

import (
	"context"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// CatalogSource fetches normalized tracks from a music catalog.
// Implementations return errors as-is; degrading to empty results is the
// caller's decision.
type CatalogSource interface {
	// Name identifies the source in logs.
	Name() string

	// SearchTracks returns tracks matching a free-text query.
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error)

	// PopularTracks returns the most popular tracks.
	PopularTracks(ctx context.Context, limit int) ([]domain.Track, error)

	// TracksByGenre returns tracks tagged with the given genre.
	TracksByGenre(ctx context.Context, genre string, limit int) ([]domain.Track, error)

	// NewReleases returns the most recently released tracks.
	NewReleases(ctx context.Context, limit int) ([]domain.Track, error)
}
