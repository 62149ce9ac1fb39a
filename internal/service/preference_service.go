package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PreferenceService keeps volume, shuffle and repeat across sessions.
// It restores them into the player at startup and persists every later
// change it sees on the event bus.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	prefs domain.Preferences
	subs  []domain.SubscriptionID

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved
// preferences. Load failures fall back to defaults.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger.With(slog.String("service", "preferences")),
		repository: repository,
		bus:        bus,
		prefs:      domain.Preferences{Volume: domain.DefaultVolume},
	}

	service.loadPreferences()

	service.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVolumeChanged, service.handleVolumeChanged),
		bus.Subscribe(domain.EventModeChanged, service.handleModeChanged),
	}

	service.logger.Debug("preference service initialized")

	return service
}

// loadPreferences loads all preferences from the repository into the cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vol, err := s.repository.LoadVolume(); err == nil {
		s.prefs.Volume = domain.Clamp01(vol)
	} else {
		s.logger.Warn("failed to load volume", slog.Any("error", err))
	}

	if shuffle, err := s.repository.LoadShuffle(); err == nil {
		s.prefs.Shuffle = shuffle
	} else {
		s.logger.Warn("failed to load shuffle", slog.Any("error", err))
	}

	if repeat, err := s.repository.LoadRepeat(); err == nil {
		s.prefs.Repeat = repeat
	} else {
		s.logger.Warn("failed to load repeat", slog.Any("error", err))
	}
}

// Preferences returns the cached preferences.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Apply restores the cached preferences into the player.
func (s *PreferenceService) Apply(player *PlayerService) {
	prefs := s.Preferences()
	player.SetVolume(prefs.Volume)
	player.SetModes(prefs.Shuffle, prefs.Repeat)
}

func (s *PreferenceService) handleVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	volume := domain.Clamp01(e.Volume)

	s.mu.Lock()
	s.prefs.Volume = volume
	s.mu.Unlock()

	if err := s.repository.SaveVolume(volume); err != nil {
		s.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

func (s *PreferenceService) handleModeChanged(event domain.Event) {
	e, ok := event.(domain.ModeChangedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	s.prefs.Shuffle = e.Shuffle
	s.prefs.Repeat = e.Repeat
	s.mu.Unlock()

	if err := s.repository.SaveShuffle(e.Shuffle); err != nil {
		s.logger.Warn("failed to save shuffle", slog.Any("error", err))
	}
	if err := s.repository.SaveRepeat(e.Repeat); err != nil {
		s.logger.Warn("failed to save repeat", slog.Any("error", err))
	}
}

// Reset clears stored preferences and returns to defaults.
func (s *PreferenceService) Reset() error {
	if err := s.repository.Clear(); err != nil {
		return domain.NewServiceError("PreferenceService", "Reset", "failed to clear preferences", err)
	}

	s.mu.Lock()
	s.prefs = domain.Preferences{Volume: domain.DefaultVolume}
	s.mu.Unlock()

	return nil
}

// Close stops persisting changes.
func (s *PreferenceService) Close() {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	s.subs = nil
}
