// Package domain defines events for the event-driven architecture.
// Events replace ambient global notifications and enable loose coupling between components.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Queue/transport events
	EventQueueChanged     EventType = "queue.changed"
	EventTrackChanged     EventType = "track.changed"
	EventTrackRestarted   EventType = "track.restarted"
	EventPlayStateChanged EventType = "playback.state_changed"
	EventTrackProgress    EventType = "track.progress"
	EventTrackCompleted   EventType = "track.completed"
	EventTrackError       EventType = "track.error"
	EventPlaybackRejected EventType = "playback.rejected"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Playback mode events
	EventModeChanged EventType = "mode.changed"

	// Collection events
	EventPlaylistUpdated       EventType = "playlist.updated"
	EventLikedSongsChanged     EventType = "liked.changed"
	EventRecentlyPlayedChanged EventType = "recent.changed"
	EventSearchHistoryChanged  EventType = "search.history_changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// QueueChangedEvent is published when the queue contents change.
type QueueChangedEvent struct {
	baseEvent
	Queue []Track
	Index int
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []Track, index int) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent: newBaseEvent(),
		Queue:     queue,
		Index:     index,
	}
}

// TrackChangedEvent is published when the current track changes.
// Current is nil when the queue became empty.
type TrackChangedEvent struct {
	baseEvent
	Previous *Track
	Current  *Track
	Index    int
}

// Type returns the event type.
func (e TrackChangedEvent) Type() EventType {
	return EventTrackChanged
}

// NewTrackChangedEvent creates a new TrackChangedEvent.
func NewTrackChangedEvent(previous, current *Track, index int) TrackChangedEvent {
	return TrackChangedEvent{
		baseEvent: newBaseEvent(),
		Previous:  previous,
		Current:   current,
		Index:     index,
	}
}

// TrackRestartedEvent is published when the current track is rewound to the start
// without changing, as with repeat.
type TrackRestartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackRestartedEvent) Type() EventType {
	return EventTrackRestarted
}

// NewTrackRestartedEvent creates a new TrackRestartedEvent.
func NewTrackRestartedEvent(track Track) TrackRestartedEvent {
	return TrackRestartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// PlayStateChangedEvent is published when the play/pause intent flips.
type PlayStateChangedEvent struct {
	baseEvent
	Playing bool
	Track   *Track
}

// Type returns the event type.
func (e PlayStateChangedEvent) Type() EventType {
	return EventPlayStateChanged
}

// NewPlayStateChangedEvent creates a new PlayStateChangedEvent.
func NewPlayStateChangedEvent(playing bool, track *Track) PlayStateChangedEvent {
	return PlayStateChangedEvent{
		baseEvent: newBaseEvent(),
		Playing:   playing,
		Track:     track,
	}
}

// TrackProgressEvent is published when the media element reports position or duration.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// TrackCompletedEvent is published when a track finishes playing naturally.
type TrackCompletedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackErrorEvent is published when the media element fails while playing a track.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// PlaybackRejectedEvent is published when the media element refuses a play command.
type PlaybackRejectedEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e PlaybackRejectedEvent) Type() EventType {
	return EventPlaybackRejected
}

// NewPlaybackRejectedEvent creates a new PlaybackRejectedEvent.
func NewPlaybackRejectedEvent(track Track, err error) PlaybackRejectedEvent {
	return PlaybackRejectedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ModeChangedEvent is published when shuffle or repeat is toggled.
type ModeChangedEvent struct {
	baseEvent
	Shuffle bool
	Repeat  bool
}

// Type returns the event type.
func (e ModeChangedEvent) Type() EventType {
	return EventModeChanged
}

// NewModeChangedEvent creates a new ModeChangedEvent.
func NewModeChangedEvent(shuffle, repeat bool) ModeChangedEvent {
	return ModeChangedEvent{
		baseEvent: newBaseEvent(),
		Shuffle:   shuffle,
		Repeat:    repeat,
	}
}

// PlaylistAction describes what happened to a playlist.
type PlaylistAction string

const (
	PlaylistCreated      PlaylistAction = "created"
	PlaylistDeleted      PlaylistAction = "deleted"
	PlaylistTrackAdded   PlaylistAction = "track_added"
	PlaylistTrackRemoved PlaylistAction = "track_removed"
)

// PlaylistUpdatedEvent is published when a playlist is created, deleted or edited.
type PlaylistUpdatedEvent struct {
	baseEvent
	PlaylistID string
	Action     PlaylistAction
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType {
	return EventPlaylistUpdated
}

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(id string, action PlaylistAction) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{
		baseEvent:  newBaseEvent(),
		PlaylistID: id,
		Action:     action,
	}
}

// LikedSongsChangedEvent is published when a track is liked or unliked.
type LikedSongsChangedEvent struct {
	baseEvent
	Track Track
	Liked bool
}

// Type returns the event type.
func (e LikedSongsChangedEvent) Type() EventType {
	return EventLikedSongsChanged
}

// NewLikedSongsChangedEvent creates a new LikedSongsChangedEvent.
func NewLikedSongsChangedEvent(track Track, liked bool) LikedSongsChangedEvent {
	return LikedSongsChangedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Liked:     liked,
	}
}

// RecentlyPlayedChangedEvent is published when a track is recorded as recently played.
type RecentlyPlayedChangedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e RecentlyPlayedChangedEvent) Type() EventType {
	return EventRecentlyPlayedChanged
}

// NewRecentlyPlayedChangedEvent creates a new RecentlyPlayedChangedEvent.
func NewRecentlyPlayedChangedEvent(tracks []Track) RecentlyPlayedChangedEvent {
	return RecentlyPlayedChangedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}

// SearchHistoryChangedEvent is published when the recent search terms change.
type SearchHistoryChangedEvent struct {
	baseEvent
	Terms []string
}

// Type returns the event type.
func (e SearchHistoryChangedEvent) Type() EventType {
	return EventSearchHistoryChanged
}

// NewSearchHistoryChangedEvent creates a new SearchHistoryChangedEvent.
func NewSearchHistoryChangedEvent(terms []string) SearchHistoryChangedEvent {
	return SearchHistoryChangedEvent{
		baseEvent: newBaseEvent(),
		Terms:     terms,
	}
}
