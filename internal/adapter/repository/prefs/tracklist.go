package prefs

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// TrackListRepository stores named track lists as JSON under "tracks.<name>".
type TrackListRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

var _ ports.TrackListRepository = (*TrackListRepository)(nil)

// NewTrackListRepository creates a track list repository.
func NewTrackListRepository(prefs fyne.Preferences) *TrackListRepository {
	return &TrackListRepository{prefs: prefs}
}

// SaveTracks replaces the named list.
func (r *TrackListRepository) SaveTracks(list string, tracks []domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracks == nil {
		tracks = []domain.Track{}
	}
	return setJSON(r.prefs, keyListPrefix+list, tracks, "track_list", "save")
}

// LoadTracks returns the named list and whether it was ever saved.
func (r *TrackListRepository) LoadTracks(list string) ([]domain.Track, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tracks []domain.Track
	found, err := getJSON(r.prefs, keyListPrefix+list, &tracks, "track_list", "load")
	if err != nil || !found {
		return []domain.Track{}, found, err
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, true, nil
}
