// Package service provides business logic for the TuneStream player core.
package service

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PlayerService is the playback/queue state machine.
// It owns the queue, the current index and the transport state, and decides
// which track plays next under shuffle and repeat. It never touches audio;
// MediaBinding reflects its events onto a media element.
//
// All operations are serialized by a mutex. Events are published after the
// mutex is released, so subscribers may call back into the service.
type PlayerService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	bus     ports.EventBus
	history ports.HistoryRepository
	rng     *rand.Rand

	// State
	queue        []domain.Track
	currentIndex int
	isPlaying    bool
	volume       float64
	position     time.Duration
	duration     time.Duration
	isShuffled   bool
	isRepeating  bool

	// Concurrency control
	mu sync.RWMutex
}

// NewPlayerService creates a new player service with an empty queue.
// history may be nil when the queue is not persisted. rng may be nil, in which
// case a time-seeded generator is used for shuffle.
func NewPlayerService(
	logger *slog.Logger,
	bus ports.EventBus,
	history ports.HistoryRepository,
	rng *rand.Rand,
) *PlayerService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}

	service := &PlayerService{
		logger:       logger.With(slog.String("service", "player")),
		bus:          bus,
		history:      history,
		rng:          rng,
		queue:        make([]domain.Track, 0),
		currentIndex: -1,
		volume:       domain.DefaultVolume,
	}

	service.logger.Debug("player service initialized")

	return service
}

// publish delivers events collected while the lock was held.
func (s *PlayerService) publish(events []domain.Event) {
	for _, e := range events {
		s.bus.Publish(e)
	}
}

// currentLocked returns a copy of the current track, or nil. Callers hold mu.
func (s *PlayerService) currentLocked() *domain.Track {
	if s.currentIndex < 0 || s.currentIndex >= len(s.queue) {
		return nil
	}
	t := s.queue[s.currentIndex]
	return &t
}

func (s *PlayerService) queueChangedLocked() domain.Event {
	return domain.NewQueueChangedEvent(slices.Clone(s.queue), s.currentIndex)
}

// moveToLocked makes index current and rewinds the transport. Selecting the
// same song at the same index again is reported as a restart so the media
// source is not reloaded. A duplicate of the song elsewhere in the queue is
// a track change.
func (s *PlayerService) moveToLocked(previous *domain.Track, index int) domain.Event {
	sameIndex := index == s.currentIndex
	s.currentIndex = index
	s.position = 0
	current := s.currentLocked()

	if sameIndex && previous != nil && current != nil && previous.Equal(*current) {
		return domain.NewTrackRestartedEvent(*current)
	}

	s.duration = 0
	return domain.NewTrackChangedEvent(previous, current, index)
}

// emptyLocked resets the queue to the Empty state.
func (s *PlayerService) emptyLocked(previous *domain.Track) []domain.Event {
	var events []domain.Event

	s.queue = make([]domain.Track, 0)
	s.currentIndex = -1
	s.position = 0
	s.duration = 0

	if s.isPlaying {
		s.isPlaying = false
		events = append(events, domain.NewPlayStateChangedEvent(false, nil))
	}
	if previous != nil {
		events = append(events, domain.NewTrackChangedEvent(previous, nil, -1))
	}
	return events
}

// SetQueue replaces the queue and selects the track at startIndex.
// startIndex is clamped into range. The playing flag is kept unless the
// new queue is empty.
func (s *PlayerService) SetQueue(tracks []domain.Track, startIndex int) {
	s.mu.Lock()

	previous := s.currentLocked()
	var events []domain.Event

	if len(tracks) == 0 {
		events = s.emptyLocked(previous)
	} else {
		s.queue = slices.Clone(tracks)
		index := min(max(startIndex, 0), len(s.queue)-1)
		events = append(events, s.moveToLocked(previous, index))
	}
	events = append([]domain.Event{s.queueChangedLocked()}, events...)

	s.logger.Debug("queue replaced",
		slog.Int("tracks", len(s.queue)),
		slog.Int("index", s.currentIndex))

	s.mu.Unlock()
	s.publish(events)
}

// SetCurrentSong makes track current. If the track is not queued it is
// inserted at the front of the queue and becomes current at index 0.
func (s *PlayerService) SetCurrentSong(track domain.Track) {
	s.mu.Lock()

	previous := s.currentLocked()
	var events []domain.Event

	index := domain.IndexOfTrack(s.queue, track.ID)
	if index < 0 {
		s.queue = slices.Insert(s.queue, 0, track)
		index = 0
		event := s.moveToLocked(previous, index)
		events = append(events, s.queueChangedLocked(), event)
	} else {
		events = append(events, s.moveToLocked(previous, index))
	}

	s.logger.Debug("current song set", slog.String("track_id", track.ID), slog.Int("index", index))

	s.mu.Unlock()
	s.publish(events)
}

// TogglePlay flips the play intent. It does nothing on an empty queue.
func (s *PlayerService) TogglePlay() {
	s.mu.Lock()
	events := s.setPlayingLocked(!s.isPlaying)
	s.mu.Unlock()
	s.publish(events)
}

// SetIsPlaying sets the play intent. Requests to play an empty queue are ignored.
func (s *PlayerService) SetIsPlaying(playing bool) {
	s.mu.Lock()
	events := s.setPlayingLocked(playing)
	s.mu.Unlock()
	s.publish(events)
}

func (s *PlayerService) setPlayingLocked(playing bool) []domain.Event {
	if playing && len(s.queue) == 0 {
		s.logger.Debug("play ignored on empty queue")
		return nil
	}
	if s.isPlaying == playing {
		return nil
	}
	s.isPlaying = playing
	return []domain.Event{domain.NewPlayStateChangedEvent(playing, s.currentLocked())}
}

// PlayNext advances the queue. Repeat restarts the current track, shuffle
// picks a uniformly random index (possibly the current one), otherwise the
// next index is taken with wrap-around. No-op on an empty queue.
func (s *PlayerService) PlayNext() {
	s.mu.Lock()

	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	previous := s.currentLocked()
	var next int
	switch {
	case s.isRepeating:
		next = s.currentIndex
	case s.isShuffled:
		next = s.rng.IntN(len(s.queue))
	default:
		next = (s.currentIndex + 1) % len(s.queue)
	}
	event := s.moveToLocked(previous, next)

	s.logger.Debug("next track",
		slog.Int("index", next),
		slog.Bool("shuffle", s.isShuffled),
		slog.Bool("repeat", s.isRepeating))

	s.mu.Unlock()
	s.bus.Publish(event)
}

// PlayPrevious steps back one track with wrap-around, ignoring shuffle and
// repeat. No-op on an empty queue.
func (s *PlayerService) PlayPrevious() {
	s.mu.Lock()

	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	previous := s.currentLocked()
	prev := (s.currentIndex - 1 + len(s.queue)) % len(s.queue)
	event := s.moveToLocked(previous, prev)

	s.mu.Unlock()
	s.bus.Publish(event)
}

// JumpTo makes the track at index current. Returns false if index is out of range.
func (s *PlayerService) JumpTo(index int) bool {
	s.mu.Lock()

	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return false
	}
	event := s.moveToLocked(s.currentLocked(), index)

	s.mu.Unlock()
	s.bus.Publish(event)
	return true
}

// ToggleShuffle flips shuffle mode.
func (s *PlayerService) ToggleShuffle() {
	s.mu.Lock()
	s.isShuffled = !s.isShuffled
	event := domain.NewModeChangedEvent(s.isShuffled, s.isRepeating)
	s.mu.Unlock()
	s.bus.Publish(event)
}

// ToggleRepeat flips repeat mode.
func (s *PlayerService) ToggleRepeat() {
	s.mu.Lock()
	s.isRepeating = !s.isRepeating
	event := domain.NewModeChangedEvent(s.isShuffled, s.isRepeating)
	s.mu.Unlock()
	s.bus.Publish(event)
}

// SetModes sets shuffle and repeat at once, as when restoring preferences.
func (s *PlayerService) SetModes(shuffle, repeat bool) {
	s.mu.Lock()
	if s.isShuffled == shuffle && s.isRepeating == repeat {
		s.mu.Unlock()
		return
	}
	s.isShuffled = shuffle
	s.isRepeating = repeat
	event := domain.NewModeChangedEvent(shuffle, repeat)
	s.mu.Unlock()
	s.bus.Publish(event)
}

// SetVolume records the requested volume. The value is stored as given;
// clamping happens where it is applied to the media element.
func (s *PlayerService) SetVolume(volume float64) {
	s.mu.Lock()
	if s.volume == volume {
		s.mu.Unlock()
		return
	}
	s.volume = volume
	s.mu.Unlock()
	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
}

// SetCurrentTime mirrors the position reported by the media element.
func (s *PlayerService) SetCurrentTime(position time.Duration) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.position = position
	event := domain.NewTrackProgressEvent(s.position, s.duration)
	s.mu.Unlock()

	// Time updates arrive several times a second; skip them when unobserved.
	if s.bus.HasSubscribers(domain.EventTrackProgress) {
		s.bus.Publish(event)
	}
}

// SetDuration mirrors the duration reported by the media element.
func (s *PlayerService) SetDuration(duration time.Duration) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.duration = duration
	event := domain.NewTrackProgressEvent(s.position, s.duration)
	s.mu.Unlock()
	s.bus.Publish(event)
}

// AddToQueue appends a track. The current track is unchanged, except that a
// track added to an empty queue becomes current (paused).
func (s *PlayerService) AddToQueue(track domain.Track) {
	s.mu.Lock()

	s.queue = append(s.queue, track)
	var events []domain.Event
	if len(s.queue) == 1 {
		events = append(events, s.moveToLocked(nil, 0))
	}
	events = append([]domain.Event{s.queueChangedLocked()}, events...)

	s.mu.Unlock()
	s.publish(events)
}

// InsertNext queues track directly after the current one. On an empty
// queue it behaves like AddToQueue.
func (s *PlayerService) InsertNext(track domain.Track) {
	s.mu.Lock()

	var events []domain.Event
	if len(s.queue) == 0 {
		s.queue = append(s.queue, track)
		events = append(events, s.moveToLocked(nil, 0))
	} else {
		s.queue = slices.Insert(s.queue, s.currentIndex+1, track)
	}
	events = append([]domain.Event{s.queueChangedLocked()}, events...)

	s.mu.Unlock()
	s.publish(events)
}

// RemoveFromQueue removes the track at index and keeps the current index
// pointing at a valid track. Out-of-range indices are ignored and reported
// with false.
func (s *PlayerService) RemoveFromQueue(index int) bool {
	s.mu.Lock()

	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		s.logger.Debug("remove ignored: index out of range", slog.Int("index", index))
		return false
	}

	previous := s.currentLocked()
	s.queue = slices.Delete(s.queue, index, index+1)

	var events []domain.Event
	switch {
	case len(s.queue) == 0:
		events = s.emptyLocked(previous)
	case index < s.currentIndex:
		s.currentIndex--
	case index == s.currentIndex:
		events = append(events, s.moveToLocked(previous, min(index, len(s.queue)-1)))
	}
	events = append([]domain.Event{s.queueChangedLocked()}, events...)

	s.mu.Unlock()
	s.publish(events)
	return true
}

// MoveInQueue moves the track at from to position to, keeping the same track current.
func (s *PlayerService) MoveInQueue(from, to int) bool {
	s.mu.Lock()

	if from < 0 || from >= len(s.queue) || to < 0 || to >= len(s.queue) {
		s.mu.Unlock()
		return false
	}
	if from == to {
		s.mu.Unlock()
		return true
	}

	track := s.queue[from]
	s.queue = slices.Delete(s.queue, from, from+1)
	s.queue = slices.Insert(s.queue, to, track)

	switch {
	case s.currentIndex == from:
		s.currentIndex = to
	case from < s.currentIndex && to >= s.currentIndex:
		s.currentIndex--
	case from > s.currentIndex && to <= s.currentIndex:
		s.currentIndex++
	}
	event := s.queueChangedLocked()

	s.mu.Unlock()
	s.bus.Publish(event)
	return true
}

// ClearQueue empties the queue and stops playback.
func (s *PlayerService) ClearQueue() {
	s.SetQueue(nil, 0)
}

// State returns a snapshot of the queue and transport.
func (s *PlayerService) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.PlaybackState{
		CurrentTrack: s.currentLocked(),
		CurrentIndex: s.currentIndex,
		Queue:        slices.Clone(s.queue),
		IsPlaying:    s.isPlaying,
		Position:     s.position,
		Duration:     s.duration,
		Volume:       s.volume,
		IsShuffled:   s.isShuffled,
		IsRepeating:  s.isRepeating,
	}
}

// CurrentTrack returns a copy of the current track, or nil if the queue is empty.
func (s *PlayerService) CurrentTrack() *domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked()
}

// Queue returns a copy of the current queue.
func (s *PlayerService) Queue() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.queue)
}

// IsPlaying reports the play intent.
func (s *PlayerService) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// Volume returns the requested volume.
func (s *PlayerService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SaveQueue saves the current queue to the history repository.
func (s *PlayerService) SaveQueue() error {
	if s.history == nil {
		return nil
	}

	s.mu.RLock()
	queue := slices.Clone(s.queue)
	index := s.currentIndex
	s.mu.RUnlock()

	if err := s.history.SaveQueue(queue); err != nil {
		return domain.NewServiceError("PlayerService", "SaveQueue", "failed to save queue", err)
	}
	if err := s.history.SaveCurrentIndex(index); err != nil {
		return domain.NewServiceError("PlayerService", "SaveQueue", "failed to save index", err)
	}

	s.logger.Debug("queue saved", slog.Int("tracks", len(queue)), slog.Int("index", index))
	return nil
}

// LoadQueue restores the queue from the history repository. The restored
// queue is paused.
func (s *PlayerService) LoadQueue() error {
	if s.history == nil {
		return nil
	}

	queue, err := s.history.LoadQueue()
	if err != nil {
		return domain.NewServiceError("PlayerService", "LoadQueue", "failed to load queue", err)
	}

	index, err := s.history.LoadCurrentIndex()
	if err != nil {
		s.logger.Warn("failed to load queue index, starting at the top", slog.Any("error", err))
		index = 0
	}

	s.SetIsPlaying(false)
	s.SetQueue(queue, index)

	s.logger.Info("queue restored", slog.Int("tracks", len(queue)))
	return nil
}
