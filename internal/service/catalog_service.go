package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// DefaultCatalogLimit is used when a caller passes a non-positive limit.
const DefaultCatalogLimit = 20

const fallbackMediaURL = "https://www.soundjay.com/misc/sounds/bell-ringing-05.wav"

// FallbackTracks is the fixed list shown when popular tracks cannot be fetched.
func FallbackTracks() []domain.Track {
	return []domain.Track{
		{
			ID:         "1",
			Title:      "Chill Vibes",
			Artist:     "Lo-Fi Artist",
			Album:      "Relaxing Beats",
			Duration:   180 * time.Second,
			ArtworkURL: domain.FallbackArtworkURL,
			MediaURL:   fallbackMediaURL,
		},
		{
			ID:         "2",
			Title:      "Electronic Dreams",
			Artist:     "Synth Master",
			Album:      "Digital Waves",
			Duration:   240 * time.Second,
			ArtworkURL: domain.DefaultPlaylistArtworkURL,
			MediaURL:   fallbackMediaURL,
		},
		{
			ID:         "3",
			Title:      "Acoustic Journey",
			Artist:     "Folk Singer",
			Album:      "Unplugged Sessions",
			Duration:   200 * time.Second,
			ArtworkURL: domain.FavoritesArtworkURL,
			MediaURL:   fallbackMediaURL,
		},
	}
}

// CatalogService fronts a CatalogSource. Lookups never fail from the
// caller's point of view: source errors are logged and turned into an
// empty list, except PopularTracks which degrades to FallbackTracks.
type CatalogService struct {
	logger *slog.Logger
	source ports.CatalogSource
}

// NewCatalogService wraps source. A nil source behaves as an unavailable
// catalog.
func NewCatalogService(logger *slog.Logger, source ports.CatalogSource) *CatalogService {
	name := "none"
	if source != nil {
		name = source.Name()
	}
	return &CatalogService{
		logger: logger.With(slog.String("service", "catalog"), slog.String("source", name)),
		source: source,
	}
}

// Available reports whether a catalog source is configured.
func (s *CatalogService) Available() bool {
	return s.source != nil
}

// Search returns tracks matching query. Blank queries return nothing.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) []domain.Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Track{}
	}
	return s.fetch(ctx, "search", func(src ports.CatalogSource) ([]domain.Track, error) {
		return src.SearchTracks(ctx, query, normalizeLimit(limit))
	})
}

// Popular returns the most popular tracks, or FallbackTracks when the
// source fails or is missing.
func (s *CatalogService) Popular(ctx context.Context, limit int) []domain.Track {
	if s.source == nil {
		return FallbackTracks()
	}
	tracks, err := s.source.PopularTracks(ctx, normalizeLimit(limit))
	if err != nil {
		s.logger.Warn("popular tracks unavailable, using fallback", slog.Any("error", err))
		return FallbackTracks()
	}
	return tracks
}

// ByGenre returns tracks tagged with genre.
func (s *CatalogService) ByGenre(ctx context.Context, genre string, limit int) []domain.Track {
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return []domain.Track{}
	}
	return s.fetch(ctx, "genre", func(src ports.CatalogSource) ([]domain.Track, error) {
		return src.TracksByGenre(ctx, genre, normalizeLimit(limit))
	})
}

// NewReleases returns the latest tracks.
func (s *CatalogService) NewReleases(ctx context.Context, limit int) []domain.Track {
	return s.fetch(ctx, "new_releases", func(src ports.CatalogSource) ([]domain.Track, error) {
		return src.NewReleases(ctx, normalizeLimit(limit))
	})
}

func (s *CatalogService) fetch(ctx context.Context, op string, call func(ports.CatalogSource) ([]domain.Track, error)) []domain.Track {
	if s.source == nil {
		s.logger.Debug("no catalog source", slog.String("op", op))
		return []domain.Track{}
	}
	tracks, err := call(s.source)
	if err != nil {
		level := slog.LevelWarn
		if ctx.Err() != nil {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "catalog request failed", slog.String("op", op), slog.Any("error", err))
		return []domain.Track{}
	}
	if tracks == nil {
		return []domain.Track{}
	}
	return tracks
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultCatalogLimit
	}
	return limit
}
