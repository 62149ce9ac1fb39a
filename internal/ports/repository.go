// Package ports define repository interfaces for data persistence abstraction.
// Two backends implement them: SQLite for the CLI and Fyne preferences for a
// host UI.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// Well-known track list names used with TrackListRepository.
const (
	TrackListLiked          = "liked"
	TrackListRecentlyPlayed = "recent"
)

// PlaylistRepository persists the user's playlists.
// Implementations must be safe for concurrent use.
type PlaylistRepository interface {
	// Save inserts or replaces a playlist. A replaced playlist keeps its
	// position in LoadAll.
	Save(playlist *domain.Playlist) error

	// Load returns domain.ErrPlaylistNotFound for an unknown ID.
	Load(id string) (*domain.Playlist, error)

	// LoadAll returns every playlist in creation order.
	LoadAll() ([]*domain.Playlist, error)

	// Delete removes a playlist; unknown IDs are not an error.
	Delete(id string) error

	Exists(id string) bool
}

// TrackListRepository persists named, ordered track lists such as liked songs
// and recently played.
type TrackListRepository interface {
	// SaveTracks replaces the contents of the named list.
	SaveTracks(list string, tracks []domain.Track) error

	// LoadTracks returns the named list.
	// The second result is false when the list was never saved.
	LoadTracks(list string) ([]domain.Track, bool, error)
}

// HistoryRepository keeps the queue and the current index between sessions.
type HistoryRepository interface {
	SaveQueue(tracks []domain.Track) error

	// LoadQueue returns an empty slice when nothing was saved.
	LoadQueue() ([]domain.Track, error)

	SaveCurrentIndex(index int) error

	// LoadCurrentIndex returns -1 when nothing was saved.
	LoadCurrentIndex() (int, error)

	Clear() error
}

// PreferencesRepository persists volume and the shuffle and repeat modes.
type PreferencesRepository interface {
	// SaveVolume persists the volume level.
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns domain.DefaultVolume.
	LoadVolume() (float64, error)

	// SaveShuffle persists the shuffle flag.
	SaveShuffle(enabled bool) error

	// LoadShuffle retrieves the saved shuffle flag, false by default.
	LoadShuffle() (bool, error)

	// SaveRepeat persists the repeat flag.
	SaveRepeat(enabled bool) error

	// LoadRepeat retrieves the saved repeat flag, false by default.
	LoadRepeat() (bool, error)

	// Clear removes all saved preferences.
	Clear() error
}

// SearchHistoryRepository persists the recent search terms under a single key.
type SearchHistoryRepository interface {
	// SaveTerms replaces the stored terms, most recent first.
	SaveTerms(terms []string) error

	// LoadTerms returns the stored terms; empty when nothing was saved.
	LoadTerms() ([]string, error)

	// Clear removes the stored terms.
	Clear() error
}

// Repositories groups every repository a storage backend provides.
type Repositories struct {
	Playlists     PlaylistRepository
	TrackLists    TrackListRepository
	History       HistoryRepository
	Preferences   PreferencesRepository
	SearchHistory SearchHistoryRepository
}
