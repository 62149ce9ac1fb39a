package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

type recordingListener struct {
	times    []time.Duration
	duration time.Duration
	ended    int
	errs     []error
}

func (r *recordingListener) OnTimeUpdate(p time.Duration)     { r.times = append(r.times, p) }
func (r *recordingListener) OnMetadataLoaded(d time.Duration) { r.duration = d }
func (r *recordingListener) OnEnded()                         { r.ended++ }
func (r *recordingListener) OnError(err error)                { r.errs = append(r.errs, err) }

// TestPlayWithoutSource tests that Play rejects when nothing is loaded.
func TestPlayWithoutSource(t *testing.T) {
	m := NewElement()

	err := <-m.Play()
	if !errors.Is(err, domain.ErrPlaybackRejected) {
		t.Errorf("Expected ErrPlaybackRejected, got %v", err)
	}
	if m.IsPlaying() {
		t.Error("Element should not be playing")
	}
}

// TestLoadAndPlay tests the happy path.
func TestLoadAndPlay(t *testing.T) {
	m := NewElement()

	if err := m.Load("https://example.com/a.mp3"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := <-m.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !m.IsPlaying() {
		t.Error("Element should be playing")
	}

	want := []string{"load:https://example.com/a.mp3", "play"}
	got := m.Calls()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Expected calls %v, got %v", want, got)
	}
}

// TestManualAck tests holding and resolving acknowledgments.
func TestManualAck(t *testing.T) {
	m := NewElement()
	m.SetManualAck(true)
	_ = m.Load("u")

	ack := m.Play()
	if m.PendingPlays() != 1 {
		t.Fatalf("Expected 1 pending play, got %d", m.PendingPlays())
	}

	select {
	case <-ack:
		t.Fatal("Ack should be held")
	default:
	}

	rejection := errors.New("autoplay blocked")
	if !m.ResolvePlay(rejection) {
		t.Fatal("ResolvePlay should report a pending play")
	}
	if err := <-ack; !errors.Is(err, rejection) {
		t.Errorf("Expected rejection, got %v", err)
	}
	if m.ResolvePlay(nil) {
		t.Error("Nothing should be pending")
	}
}

// TestSetVolumeRange tests volume validation.
func TestSetVolumeRange(t *testing.T) {
	m := NewElement()

	if err := m.SetVolume(1.5); err == nil {
		t.Error("Expected error for volume above 1")
	}
	if err := m.SetVolume(0.3); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if m.Volume() != 0.3 {
		t.Errorf("Expected volume 0.3, got %v", m.Volume())
	}
}

// TestSimulateProgress tests time updates and end detection.
func TestSimulateProgress(t *testing.T) {
	m := NewElement()
	l := &recordingListener{}
	m.SetListener(l)
	_ = m.Load("u")

	m.EmitMetadata(2 * time.Second)
	m.SimulateProgress(time.Second)
	m.SimulateProgress(time.Second)

	if l.duration != 2*time.Second {
		t.Errorf("Expected duration 2s, got %v", l.duration)
	}
	if len(l.times) != 2 || l.times[1] != 2*time.Second {
		t.Errorf("Unexpected time updates %v", l.times)
	}
	if l.ended != 1 {
		t.Errorf("Expected one end, got %d", l.ended)
	}
}

// TestDetachedListener tests that emitting without a listener is safe.
func TestDetachedListener(t *testing.T) {
	m := NewElement()
	m.SetListener(nil)

	m.EmitEnded()
	m.EmitError(errors.New("boom"))
	m.SimulateProgress(time.Second)
}
