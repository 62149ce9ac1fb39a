// Package mock provides a scriptable implementation of the MediaElement interface.
// This is used for testing services without a real audio primitive.
package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// Element is a mock implementation of the MediaElement interface.
// It records every command and lets tests drive the listener callbacks.
//
// Thread-safety: This implementation is thread-safe. Listener callbacks are
// invoked without holding the internal lock.
type Element struct {
	listener ports.MediaListener

	// Source state
	source   string
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	calls    []string

	// Behavior configuration (for testing error scenarios)
	failLoad  bool
	playErr   error
	manualAck bool
	pending   []chan error

	mu sync.Mutex
}

// NewElement creates a new mock media element.
func NewElement() *Element {
	return &Element{volume: 1.0}
}

// SetFailLoad configures the mock to reject Load (for testing).
func (m *Element) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetPlayError makes every Play acknowledge with err. nil restores success.
func (m *Element) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// SetManualAck holds Play acknowledgments until ResolvePlay is called.
func (m *Element) SetManualAck(manual bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manualAck = manual
}

// PendingPlays returns the number of unacknowledged Play calls.
func (m *Element) PendingPlays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// ResolvePlay acknowledges the oldest pending Play with err.
// Returns false if nothing is pending.
func (m *Element) ResolvePlay(err error) bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	ack := m.pending[0]
	m.pending = m.pending[1:]
	if err == nil {
		m.playing = true
	}
	m.mu.Unlock()

	ack <- err
	close(ack)
	return true
}

// SetListener implements ports.MediaElement.
func (m *Element) SetListener(listener ports.MediaListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// Load implements ports.MediaElement.
func (m *Element) Load(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "load:"+url)

	if m.failLoad {
		return domain.NewMediaError("load", url, "mock load failed", nil)
	}
	if url == "" {
		return domain.ErrInvalidMediaURL
	}

	m.source = url
	m.playing = false
	m.position = 0
	m.duration = 0
	return nil
}

// Play implements ports.MediaElement.
func (m *Element) Play() <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "play")
	ack := make(chan error, 1)

	switch {
	case m.source == "":
		ack <- domain.NewMediaError("play", "", "no source loaded", domain.ErrPlaybackRejected)
		close(ack)
	case m.playErr != nil:
		ack <- m.playErr
		close(ack)
	case m.manualAck:
		m.pending = append(m.pending, ack)
	default:
		m.playing = true
		ack <- nil
		close(ack)
	}
	return ack
}

// Pause implements ports.MediaElement.
func (m *Element) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "pause")
	m.playing = false
	return nil
}

// Seek implements ports.MediaElement.
func (m *Element) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("seek:%s", position))
	if position < 0 {
		return domain.ErrInvalidPosition
	}
	m.position = position
	return nil
}

// SetVolume implements ports.MediaElement.
func (m *Element) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("volume:%.2f", volume))
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0.0 and 1.0")
	}
	m.volume = volume
	return nil
}

// Source returns the loaded URL.
func (m *Element) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// IsPlaying reports whether the element believes it is playing.
func (m *Element) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Volume returns the last volume applied.
func (m *Element) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Position returns the element position.
func (m *Element) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Calls returns a copy of the recorded commands, e.g. "load:<url>", "play", "seek:0s".
func (m *Element) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CountCalls returns how many recorded commands equal call.
func (m *Element) CountCalls(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded commands.
func (m *Element) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Element) currentListener() ports.MediaListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

// EmitMetadata reports a duration for the loaded source.
func (m *Element) EmitMetadata(duration time.Duration) {
	m.mu.Lock()
	m.duration = duration
	l := m.listener
	m.mu.Unlock()
	if l != nil {
		l.OnMetadataLoaded(duration)
	}
}

// SimulateProgress advances the position by delta, reporting a time update and,
// when the known duration is reached, the end of the source.
func (m *Element) SimulateProgress(delta time.Duration) {
	m.mu.Lock()
	m.position += delta
	pos := m.position
	ended := m.duration > 0 && pos >= m.duration
	if ended {
		m.playing = false
	}
	l := m.listener
	m.mu.Unlock()

	if l == nil {
		return
	}
	l.OnTimeUpdate(pos)
	if ended {
		l.OnEnded()
	}
}

// EmitEnded reports the end of the source.
func (m *Element) EmitEnded() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	if l := m.currentListener(); l != nil {
		l.OnEnded()
	}
}

// EmitError reports a runtime failure.
func (m *Element) EmitError(err error) {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	if l := m.currentListener(); l != nil {
		l.OnError(err)
	}
}

var _ ports.MediaElement = (*Element)(nil)
