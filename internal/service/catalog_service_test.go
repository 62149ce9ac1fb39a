package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

type stubCatalog struct {
	tracks []domain.Track
	err    error

	lastQuery string
	lastGenre string
	lastLimit int
}

func (s *stubCatalog) Name() string { return "stub" }

func (s *stubCatalog) SearchTracks(_ context.Context, query string, limit int) ([]domain.Track, error) {
	s.lastQuery, s.lastLimit = query, limit
	return s.tracks, s.err
}

func (s *stubCatalog) PopularTracks(_ context.Context, limit int) ([]domain.Track, error) {
	s.lastLimit = limit
	return s.tracks, s.err
}

func (s *stubCatalog) TracksByGenre(_ context.Context, genre string, limit int) ([]domain.Track, error) {
	s.lastGenre, s.lastLimit = genre, limit
	return s.tracks, s.err
}

func (s *stubCatalog) NewReleases(_ context.Context, limit int) ([]domain.Track, error) {
	s.lastLimit = limit
	return s.tracks, s.err
}

func TestCatalogService_PassesThrough(t *testing.T) {
	src := &stubCatalog{tracks: makeTracks(2)}
	svc := NewCatalogService(logger.NewTestLogger(), src)
	ctx := context.Background()

	got := svc.Search(ctx, "  lofi ", 0)
	assert.Len(t, got, 2)
	assert.Equal(t, "lofi", src.lastQuery)
	assert.Equal(t, DefaultCatalogLimit, src.lastLimit)

	svc.ByGenre(ctx, " Jazz", 12)
	assert.Equal(t, "jazz", src.lastGenre)
	assert.Equal(t, 12, src.lastLimit)

	assert.Len(t, svc.NewReleases(ctx, 12), 2)
	assert.Len(t, svc.Popular(ctx, 12), 2)
	assert.True(t, svc.Available())
}

func TestCatalogService_ErrorsDegradeToEmpty(t *testing.T) {
	src := &stubCatalog{err: errors.New("503")}
	svc := NewCatalogService(logger.NewTestLogger(), src)
	ctx := context.Background()

	assert.Empty(t, svc.Search(ctx, "x", 5))
	assert.NotNil(t, svc.Search(ctx, "x", 5))
	assert.Empty(t, svc.ByGenre(ctx, "rock", 5))
	assert.Empty(t, svc.NewReleases(ctx, 5))
}

func TestCatalogService_PopularFallsBack(t *testing.T) {
	src := &stubCatalog{err: errors.New("timeout")}
	svc := NewCatalogService(logger.NewTestLogger(), src)

	got := svc.Popular(context.Background(), 12)

	require.Len(t, got, 3)
	assert.Equal(t, FallbackTracks(), got)
	assert.Equal(t, "Chill Vibes", got[0].Title)
	for _, tr := range got {
		assert.NotEmpty(t, tr.MediaURL)
		assert.NotEmpty(t, tr.ArtworkURL)
	}
}

func TestCatalogService_BlankQuerySkipsSource(t *testing.T) {
	src := &stubCatalog{tracks: makeTracks(1)}
	svc := NewCatalogService(logger.NewTestLogger(), src)

	assert.Empty(t, svc.Search(context.Background(), "   ", 5))
	assert.Empty(t, svc.ByGenre(context.Background(), "", 5))
	assert.Empty(t, src.lastQuery)
	assert.Zero(t, src.lastLimit)
}

func TestCatalogService_NoSource(t *testing.T) {
	svc := NewCatalogService(logger.NewTestLogger(), nil)
	ctx := context.Background()

	assert.False(t, svc.Available())
	assert.Empty(t, svc.Search(ctx, "x", 1))
	assert.Equal(t, FallbackTracks(), svc.Popular(ctx, 1))
}
