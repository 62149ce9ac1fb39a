package prefs

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PreferencesRepository stores volume, shuffle and repeat.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)

// NewPreferencesRepository creates a preferences repository.
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{prefs: prefs}
}

// SaveVolume persists the volume.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be within [0, 1]")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume returns the saved volume, or domain.DefaultVolume.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.FloatWithFallback(keyVolume, domain.DefaultVolume), nil
}

// SaveShuffle persists the shuffle flag.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetBool(keyShuffle, enabled)
	return nil
}

// LoadShuffle returns the saved shuffle flag.
func (r *PreferencesRepository) LoadShuffle() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.Bool(keyShuffle), nil
}

// SaveRepeat persists the repeat flag.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetBool(keyRepeat, enabled)
	return nil
}

// LoadRepeat returns the saved repeat flag.
func (r *PreferencesRepository) LoadRepeat() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.Bool(keyRepeat), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyShuffle)
	r.prefs.RemoveValue(keyRepeat)
	return nil
}
