package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// MediaBinding keeps a MediaElement in step with the PlayerService.
//
// Engine events drive the element (load, play, pause, seek, volume) and
// element callbacks flow back into the engine (position, duration, end of
// track, errors). Play requests are acknowledged asynchronously; every
// command bumps a generation counter so an acknowledgment that arrives after
// a newer command is ignored.
type MediaBinding struct {
	// Dependencies (injected)
	logger *slog.Logger
	player *PlayerService
	media  ports.MediaElement
	bus    ports.EventBus

	retryDelay time.Duration

	// State
	generation uint64 // bumped by every load/play/pause command
	source     uint64 // bumped by every load or restart of the source
	endedFor   uint64 // source whose end was already handled
	dead       bool   // the current track failed to load
	retry      *time.Timer
	retryID    uint64
	closed     bool

	subs []domain.SubscriptionID
	done chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
}

// NewMediaBinding wires media to player and brings the element in line with
// the current engine state. retryDelay is how long to wait before skipping a
// track that failed during playback; zero means domain.ErrorRetryDelay.
func NewMediaBinding(
	logger *slog.Logger,
	player *PlayerService,
	media ports.MediaElement,
	bus ports.EventBus,
	retryDelay time.Duration,
) *MediaBinding {
	if retryDelay <= 0 {
		retryDelay = domain.ErrorRetryDelay
	}

	b := &MediaBinding{
		logger:     logger.With(slog.String("service", "media_binding")),
		player:     player,
		media:      media,
		bus:        bus,
		retryDelay: retryDelay,
		done:       make(chan struct{}),
	}

	b.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackChanged, b.handleTrackChanged),
		bus.Subscribe(domain.EventTrackRestarted, b.handleTrackRestarted),
		bus.Subscribe(domain.EventPlayStateChanged, b.handlePlayStateChanged),
		bus.Subscribe(domain.EventVolumeChanged, b.handleVolumeChanged),
	}
	media.SetListener(b)

	state := player.State()
	b.applyVolume(state.Volume)
	if state.CurrentTrack != nil {
		if b.load(*state.CurrentTrack) && state.IsPlaying {
			b.play()
		}
	}

	b.logger.Debug("media binding initialized")

	return b
}

func (b *MediaBinding) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *MediaBinding) handleTrackChanged(event domain.Event) {
	e, ok := event.(domain.TrackChangedEvent)
	if !ok || b.isClosed() {
		return
	}

	b.cancelRetry()

	if e.Current == nil {
		b.pause()
		return
	}

	if b.load(*e.Current) && b.player.IsPlaying() {
		b.play()
	}
}

func (b *MediaBinding) handleTrackRestarted(event domain.Event) {
	if _, ok := event.(domain.TrackRestartedEvent); !ok || b.isClosed() {
		return
	}

	b.cancelRetry()

	b.mu.Lock()
	dead := b.dead
	b.source++
	b.mu.Unlock()

	if dead {
		if current := b.player.CurrentTrack(); current != nil && b.load(*current) && b.player.IsPlaying() {
			b.play()
		}
		return
	}

	if err := b.media.Seek(0); err != nil {
		b.logger.Warn("failed to rewind media", slog.Any("error", err))
	}
	if b.player.IsPlaying() {
		b.play()
	}
}

func (b *MediaBinding) handlePlayStateChanged(event domain.Event) {
	e, ok := event.(domain.PlayStateChangedEvent)
	if !ok || b.isClosed() {
		return
	}

	if e.Playing {
		b.play()
	} else {
		b.pause()
	}
}

func (b *MediaBinding) handleVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok || b.isClosed() {
		return
	}
	b.applyVolume(e.Volume)
}

func (b *MediaBinding) applyVolume(volume float64) {
	if err := b.media.SetVolume(domain.Clamp01(volume)); err != nil {
		b.logger.Warn("failed to set media volume", slog.Any("error", err))
	}
}

// load points the element at the track's media URL. A source that cannot be
// loaded is reported through OnError and false is returned; the element is
// paused and whatever it still holds is ignored until the next load.
func (b *MediaBinding) load(track domain.Track) bool {
	b.mu.Lock()
	b.generation++
	b.source++
	b.mu.Unlock()

	b.logger.Debug("loading media", slog.String("track_id", track.ID), slog.String("url", track.MediaURL))

	var err error
	if track.MediaURL == "" {
		err = domain.NewMediaError("load", "", "track has no media url", domain.ErrInvalidMediaURL)
	} else {
		err = b.media.Load(track.MediaURL)
	}

	b.mu.Lock()
	b.dead = err != nil
	if b.dead {
		b.endedFor = b.source
	}
	b.mu.Unlock()

	if err != nil {
		b.pause()
		b.OnError(err)
		return false
	}
	return true
}

// stale reports whether element callbacks belong to a source that failed to
// be replaced.
func (b *MediaBinding) stale() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed || b.dead
}

// play issues a play command and waits for its acknowledgment in the background.
func (b *MediaBinding) play() {
	b.mu.Lock()
	if b.closed || b.dead {
		b.mu.Unlock()
		return
	}
	b.generation++
	gen := b.generation
	b.wg.Add(1)
	b.mu.Unlock()

	track := b.player.CurrentTrack()
	ack := b.media.Play()

	go b.awaitPlay(ack, gen, track)
}

func (b *MediaBinding) awaitPlay(ack <-chan error, gen uint64, track *domain.Track) {
	defer b.wg.Done()

	var err error
	select {
	case err = <-ack:
	case <-b.done:
		return
	}
	if err == nil {
		return
	}

	b.mu.Lock()
	stale := gen != b.generation || b.closed
	b.mu.Unlock()

	if stale {
		b.logger.Debug("ignoring stale play rejection", slog.Any("error", err))
		return
	}

	b.logger.Warn("media rejected play", slog.Any("error", err))

	if track != nil {
		b.bus.Publish(domain.NewPlaybackRejectedEvent(*track, err))
	}
	b.player.SetIsPlaying(false)
}

func (b *MediaBinding) pause() {
	b.mu.Lock()
	b.generation++
	b.mu.Unlock()

	if err := b.media.Pause(); err != nil {
		b.logger.Warn("failed to pause media", slog.Any("error", err))
	}
}

func (b *MediaBinding) cancelRetry() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelRetryLocked()
}

func (b *MediaBinding) cancelRetryLocked() {
	b.retryID++
	if b.retry == nil {
		return
	}
	if b.retry.Stop() {
		// the callback will never run
		b.wg.Done()
	}
	b.retry = nil
}

// Seek moves the playback position of the current track.
func (b *MediaBinding) Seek(position time.Duration) error {
	if position < 0 {
		return domain.ErrInvalidPosition
	}
	if b.player.CurrentTrack() == nil {
		return domain.ErrQueueEmpty
	}
	if err := b.media.Seek(position); err != nil {
		return domain.NewMediaError("seek", "", "seek failed", err)
	}
	b.player.SetCurrentTime(position)
	return nil
}

// ToggleMute silences an audible player, or restores domain.UnmuteVolume.
// The volume before muting is not remembered.
func (b *MediaBinding) ToggleMute() {
	if b.player.Volume() > 0 {
		b.player.SetVolume(0)
		return
	}
	b.player.SetVolume(domain.UnmuteVolume)
}

// OnTimeUpdate implements ports.MediaListener.
func (b *MediaBinding) OnTimeUpdate(position time.Duration) {
	if b.stale() {
		return
	}
	b.player.SetCurrentTime(position)
}

// OnMetadataLoaded implements ports.MediaListener.
func (b *MediaBinding) OnMetadataLoaded(duration time.Duration) {
	if b.stale() {
		return
	}
	b.player.SetDuration(duration)
}

// OnEnded implements ports.MediaListener. It advances the queue once per loaded source.
func (b *MediaBinding) OnEnded() {
	b.mu.Lock()
	if b.closed || b.endedFor == b.source {
		b.mu.Unlock()
		return
	}
	b.endedFor = b.source
	b.mu.Unlock()

	if track := b.player.CurrentTrack(); track != nil {
		b.bus.Publish(domain.NewTrackCompletedEvent(*track))
	}
	b.player.PlayNext()
}

// OnError implements ports.MediaListener. The failing track is skipped after
// the retry delay unless the track changes first.
func (b *MediaBinding) OnError(err error) {
	track := b.player.CurrentTrack()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.retry != nil {
		b.mu.Unlock()
		b.logger.Debug("skip already pending", slog.Any("error", err))
		return
	}
	b.retryID++
	id := b.retryID
	b.wg.Add(1)
	b.retry = time.AfterFunc(b.retryDelay, func() { b.fireRetry(id) })
	b.mu.Unlock()

	b.logger.Warn("media error, skipping track",
		slog.Any("error", err),
		slog.Duration("delay", b.retryDelay))

	if track != nil {
		b.bus.Publish(domain.NewTrackErrorEvent(*track, err))
	}
}

func (b *MediaBinding) fireRetry(id uint64) {
	defer b.wg.Done()

	b.mu.Lock()
	if b.closed || b.retryID != id {
		b.mu.Unlock()
		return
	}
	b.retry = nil
	b.mu.Unlock()

	b.player.PlayNext()
}

// Close detaches the binding from the engine and the element, cancels any
// pending skip and waits for outstanding acknowledgments.
func (b *MediaBinding) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return domain.ErrClosed
	}
	b.closed = true
	b.cancelRetryLocked()
	close(b.done)
	b.mu.Unlock()

	for _, id := range b.subs {
		b.bus.Unsubscribe(id)
	}
	b.media.SetListener(nil)

	b.wg.Wait()

	b.logger.Debug("media binding closed")
	return nil
}

var _ ports.MediaListener = (*MediaBinding)(nil)
