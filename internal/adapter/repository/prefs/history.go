package prefs

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// HistoryRepository stores the playback queue and the current index.
type HistoryRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a history repository.
func NewHistoryRepository(prefs fyne.Preferences) *HistoryRepository {
	return &HistoryRepository{prefs: prefs}
}

// SaveQueue persists the playback queue.
func (r *HistoryRepository) SaveQueue(tracks []domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracks == nil {
		tracks = []domain.Track{}
	}
	return setJSON(r.prefs, keyQueue, tracks, "history", "save_queue")
}

// LoadQueue returns the saved queue, empty if none.
func (r *HistoryRepository) LoadQueue() ([]domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tracks []domain.Track
	found, err := getJSON(r.prefs, keyQueue, &tracks, "history", "load_queue")
	if err != nil {
		return nil, err
	}
	if !found || tracks == nil {
		return []domain.Track{}, nil
	}
	return tracks, nil
}

// SaveCurrentIndex persists the current index.
func (r *HistoryRepository) SaveCurrentIndex(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Fyne returns the fallback for a missing key, so -1 marks "never saved".
	r.prefs.SetInt(keyCurrentIndex, index)
	return nil
}

// LoadCurrentIndex returns the saved index, or -1.
func (r *HistoryRepository) LoadCurrentIndex() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.IntWithFallback(keyCurrentIndex, -1), nil
}

// Clear removes the saved queue and index.
func (r *HistoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyQueue)
	r.prefs.RemoveValue(keyCurrentIndex)
	return nil
}
