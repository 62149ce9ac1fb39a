package prefs

import (
	"log/slog"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PlaylistRepository stores each playlist as JSON under "playlist.<id>" and
// keeps the creation order in a string list.
type PlaylistRepository struct {
	prefs  fyne.Preferences
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a playlist repository.
func NewPlaylistRepository(prefs fyne.Preferences, logger *slog.Logger) *PlaylistRepository {
	return &PlaylistRepository{
		prefs:  prefs,
		logger: logger.With(slog.String("repository", "playlist")),
	}
}

// Save persists a playlist, appending new IDs to the creation order.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := setJSON(r.prefs, keyPlaylistPrefix+playlist.ID, playlist, "playlist", "save"); err != nil {
		return err
	}

	ids := r.prefs.StringList(keyPlaylistIDs)
	if !slices.Contains(ids, playlist.ID) {
		r.prefs.SetStringList(keyPlaylistIDs, append(ids, playlist.ID))
	}
	return nil
}

// Load retrieves a playlist by ID.
func (r *PlaylistRepository) Load(id string) (*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var playlist domain.Playlist
	found, err := getJSON(r.prefs, keyPlaylistPrefix+id, &playlist, "playlist", "load")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrPlaylistNotFound
	}
	return &playlist, nil
}

// LoadAll returns every playlist in creation order. Missing or corrupted
// entries are skipped.
func (r *PlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.prefs.StringList(keyPlaylistIDs)
	playlists := make([]*domain.Playlist, 0, len(ids))
	for _, id := range ids {
		var playlist domain.Playlist
		found, err := getJSON(r.prefs, keyPlaylistPrefix+id, &playlist, "playlist", "load_all")
		switch {
		case err != nil:
			r.logger.Warn("playlist corrupted", slog.String("id", id), slog.Any("error", err))
		case !found:
			r.logger.Warn("playlist data missing", slog.String("id", id))
		default:
			playlists = append(playlists, &playlist)
		}
	}
	return playlists, nil
}

// Delete removes a playlist. Unknown IDs are ignored.
func (r *PlaylistRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyPlaylistPrefix + id)

	ids := r.prefs.StringList(keyPlaylistIDs)
	if i := slices.Index(ids, id); i >= 0 {
		r.prefs.SetStringList(keyPlaylistIDs, slices.Delete(ids, i, i+1))
	}
	return nil
}

// Exists reports whether a playlist is stored under id.
func (r *PlaylistRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.String(keyPlaylistPrefix+id) != ""
}
