// Package localfs provides a catalog source over a folder of audio files.
package localfs

import (
	"cmp"
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// SupportedExtensions lists the file types picked up by a scan.
var SupportedExtensions = []string{
	".mp3", ".ogg", ".oga", ".flac", ".m4a", ".m4b", ".mp4", ".aac", ".wav", ".opus",
}

// trackNamespace keeps track IDs stable across scans of the same file.
var trackNamespace = uuid.MustParse("0f6f5a43-8a4c-4d1e-9a57-6b2a4f7f3c11")

type entry struct {
	track domain.Track
	genre string
	year  int
}

// Source serves tracks found under a root folder. The folder is scanned on
// first use; call Rescan to pick up changes.
type Source struct {
	root   string
	logger *slog.Logger

	entries []entry
	scanned bool
	mu      sync.RWMutex
}

var _ ports.CatalogSource = (*Source)(nil)

// New creates a source for root.
func New(root string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		root:   root,
		logger: logger.With(slog.String("adapter", "localfs"), slog.String("root", root)),
	}
}

// Name implements ports.CatalogSource.
func (s *Source) Name() string { return "local" }

// Len returns the number of tracks found by the last scan.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Rescan walks the root folder again and replaces the indexed tracks.
func (s *Source) Rescan(ctx context.Context) error {
	entries, err := s.scan(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = entries
	s.scanned = true
	s.mu.Unlock()

	s.logger.Info("library scanned", slog.Int("tracks", len(entries)))
	return nil
}

func (s *Source) ensureScanned(ctx context.Context) ([]entry, error) {
	s.mu.RLock()
	if s.scanned {
		entries := s.entries
		s.mu.RUnlock()
		return entries, nil
	}
	s.mu.RUnlock()

	if err := s.Rescan(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, nil
}

func (s *Source) scan(ctx context.Context) ([]entry, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read library root %q", s.root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("library root %q is not a directory", s.root)
	}

	entries := make([]entry, 0)
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Debug("skipping unreadable path", slog.String("path", path), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsSupported(path) {
			return nil
		}
		entries = append(entries, readEntry(path))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "library scan failed")
	}

	return entries, nil
}

// IsSupported reports whether path has a supported audio extension.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// readEntry builds a track from the file's tags, falling back to the file
// name when tags are missing.
func readEntry(path string) entry {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	e := entry{track: domain.Track{
		ID:         uuid.NewSHA1(trackNamespace, []byte(abs)).String(),
		ArtworkURL: domain.FallbackArtworkURL,
		MediaURL:   (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
	}}
	e.track.Artist, e.track.Title = titleFromFilename(path)

	if info, err := os.Stat(path); err == nil {
		e.track.CreatedAt = info.ModTime()
	}

	file, err := os.Open(path)
	if err != nil {
		return e
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return e
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" {
		e.track.Title = title
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		e.track.Artist = artist
	}
	e.track.Album = strings.TrimSpace(metadata.Album())
	e.genre = strings.TrimSpace(metadata.Genre())
	e.year = metadata.Year()

	return e
}

// titleFromFilename splits "Artist - Title.ext" or returns the bare name.
func titleFromFilename(path string) (artist, title string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if a, t, ok := strings.Cut(name, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", name
}

// SearchTracks matches query against title, artist and album.
func (s *Source) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	entries, err := s.ensureScanned(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	return collect(entries, limit, func(e entry) bool {
		return strings.Contains(strings.ToLower(e.track.Title), q) ||
			strings.Contains(strings.ToLower(e.track.Artist), q) ||
			strings.Contains(strings.ToLower(e.track.Album), q)
	}), nil
}

// PopularTracks has no play counts to rank by, so it returns the library
// ordered by artist then title.
func (s *Source) PopularTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	entries, err := s.ensureScanned(ctx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b entry) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.track.Artist), strings.ToLower(b.track.Artist)),
			cmp.Compare(strings.ToLower(a.track.Title), strings.ToLower(b.track.Title)),
		)
	})
	return collect(sorted, limit, nil), nil
}

// TracksByGenre returns tracks whose genre tag contains genre.
func (s *Source) TracksByGenre(ctx context.Context, genre string, limit int) ([]domain.Track, error) {
	entries, err := s.ensureScanned(ctx)
	if err != nil {
		return nil, err
	}

	g := strings.ToLower(strings.TrimSpace(genre))
	return collect(entries, limit, func(e entry) bool {
		return g != "" && strings.Contains(strings.ToLower(e.genre), g)
	}), nil
}

// NewReleases orders by tagged year, newest first, then by file time.
func (s *Source) NewReleases(ctx context.Context, limit int) ([]domain.Track, error) {
	entries, err := s.ensureScanned(ctx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b entry) int {
		return cmp.Or(
			cmp.Compare(b.year, a.year),
			b.track.CreatedAt.Compare(a.track.CreatedAt),
		)
	})
	return collect(sorted, limit, nil), nil
}

func collect(entries []entry, limit int, keep func(entry) bool) []domain.Track {
	if limit <= 0 {
		limit = len(entries)
	}
	out := make([]domain.Track, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		if keep == nil || keep(e) {
			out = append(out, e.track)
		}
	}
	return out
}
