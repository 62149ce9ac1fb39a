// Package virtual provides a clock-driven MediaElement for headless use.
//
// The element decodes nothing. It tracks a position that advances with wall
// time while playing and reports the end of the track once the position
// reaches the resolved duration.
package virtual

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// DefaultInterval is how often time updates are emitted.
const DefaultInterval = 250 * time.Millisecond

// DurationResolver returns the length of the media at url. A zero duration
// means unknown; such a source plays until paused or replaced.
type DurationResolver func(url string) (time.Duration, error)

// Element is a MediaElement without audio output.
type Element struct {
	logger   *slog.Logger
	resolve  DurationResolver
	interval time.Duration

	listener ports.MediaListener
	source   string
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	lastTick time.Time
	closed   bool

	stop chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
}

var _ ports.MediaElement = (*Element)(nil)

// New creates an element and starts its clock. resolve may be nil.
// Call Close to stop the clock.
func New(logger *slog.Logger, interval time.Duration, resolve DurationResolver) *Element {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Element{
		logger:   logger.With(slog.String("adapter", "virtual_media")),
		resolve:  resolve,
		interval: interval,
		volume:   1.0,
		stop:     make(chan struct{}),
	}
	e.startClock()
	return e
}

func (e *Element) startClock() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.stop:
				return
			case now := <-ticker.C:
				e.mu.Lock()
				elapsed := now.Sub(e.lastTick)
				e.lastTick = now
				playing := e.playing
				e.mu.Unlock()

				if playing && elapsed > 0 {
					e.Advance(elapsed)
				}
			}
		}
	}()
}

// SetListener implements ports.MediaElement.
func (e *Element) SetListener(listener ports.MediaListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = listener
}

// Load implements ports.MediaElement. It stops playback, rewinds, and
// reports the resolved duration through OnMetadataLoaded.
func (e *Element) Load(url string) error {
	if url == "" {
		return domain.NewMediaError("load", url, "empty media url", domain.ErrInvalidMediaURL)
	}

	var duration time.Duration
	if e.resolve != nil {
		d, err := e.resolve(url)
		if err != nil {
			return domain.NewMediaError("load", url, "cannot resolve media", err)
		}
		duration = d
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrClosed
	}
	e.source = url
	e.playing = false
	e.position = 0
	e.duration = duration
	listener := e.listener
	e.mu.Unlock()

	e.logger.Debug("source loaded", slog.String("url", url), slog.Duration("duration", duration))

	if listener != nil && duration > 0 {
		listener.OnMetadataLoaded(duration)
	}
	return nil
}

// Play implements ports.MediaElement. Playing a finished source restarts it.
// The acknowledgment is delivered immediately.
func (e *Element) Play() <-chan error {
	ack := make(chan error, 1)
	defer close(ack)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		ack <- domain.ErrClosed
	case e.source == "":
		ack <- domain.NewMediaError("play", "", "no source loaded", domain.ErrPlaybackRejected)
	default:
		if e.duration > 0 && e.position >= e.duration {
			e.position = 0
		}
		e.playing = true
		e.lastTick = time.Now()
		ack <- nil
	}
	return ack
}

// Pause implements ports.MediaElement.
func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

// Seek implements ports.MediaElement. Positions past the end are clamped.
func (e *Element) Seek(position time.Duration) error {
	if position < 0 {
		return domain.ErrInvalidPosition
	}

	e.mu.Lock()
	if e.source == "" {
		e.mu.Unlock()
		return domain.NewMediaError("seek", "", "no source loaded", domain.ErrInvalidMediaURL)
	}
	if e.duration > 0 && position > e.duration {
		position = e.duration
	}
	e.position = position
	e.lastTick = time.Now()
	listener := e.listener
	e.mu.Unlock()

	if listener != nil {
		listener.OnTimeUpdate(position)
	}
	return nil
}

// SetVolume implements ports.MediaElement.
func (e *Element) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be within [0, 1]")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
	return nil
}

// Advance moves the clock forward by d as if d of media had played.
// It emits a time update and, when the end is reached, OnEnded.
func (e *Element) Advance(d time.Duration) {
	e.mu.Lock()
	if !e.playing || e.source == "" || d <= 0 {
		e.mu.Unlock()
		return
	}

	e.position += d
	ended := false
	if e.duration > 0 && e.position >= e.duration {
		e.position = e.duration
		e.playing = false
		ended = true
	}
	position := e.position
	listener := e.listener
	e.mu.Unlock()

	if listener == nil {
		return
	}
	listener.OnTimeUpdate(position)
	if ended {
		e.logger.Debug("source ended", slog.Duration("position", position))
		listener.OnEnded()
	}
}

// Source returns the loaded URL.
func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// IsPlaying reports whether the clock is running.
func (e *Element) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Position returns the current position.
func (e *Element) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Volume returns the last volume set.
func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Close stops the clock. Further Play calls are rejected.
func (e *Element) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrClosed
	}
	e.closed = true
	e.playing = false
	close(e.stop)
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}
