// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"
)

// MediaElement is the external streaming audio primitive the player drives.
// It decodes and renders audio; the core only commands it and observes its callbacks.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type MediaElement interface {
	// Load sets the source URL. Any previous source is discarded and the
	// position returns to zero.
	//
	// Returns an error if the source is rejected outright.
	Load(url string) error

	// Play requests playback of the current source.
	// The request is acknowledged asynchronously: the returned channel receives
	// exactly one value (nil on success, an error on rejection) and is then closed.
	Play() <-chan error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Seek moves the playback position.
	Seek(position time.Duration) error

	// SetVolume sets the output volume. The value must be within [0, 1].
	SetVolume(volume float64) error

	// SetListener registers the receiver of media callbacks, replacing any previous one.
	// Passing nil detaches the listener.
	SetListener(listener MediaListener)
}

// MediaListener receives callbacks from a MediaElement.
// Callbacks may arrive on any goroutine.
type MediaListener interface {
	// OnTimeUpdate reports the current playback position.
	OnTimeUpdate(position time.Duration)

	// OnMetadataLoaded reports the duration of the loaded source.
	OnMetadataLoaded(duration time.Duration)

	// OnEnded reports that playback reached the end of the source.
	OnEnded()

	// OnError reports a runtime playback failure.
	OnError(err error)
}
