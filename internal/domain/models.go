// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the TuneStream player core.
package domain

import (
	"time"
)

const (
	// RecentlyPlayedLimit is the maximum number of tracks kept in recently played.
	RecentlyPlayedLimit = 50

	// RecentSearchLimit is the maximum number of remembered search terms.
	RecentSearchLimit = 5

	// DefaultVolume is the volume a fresh session starts with.
	DefaultVolume = 0.7

	// UnmuteVolume is the volume restored when un-muting.
	UnmuteVolume = 0.7

	// ErrorRetryDelay is how long the player waits before skipping a track that failed to play.
	ErrorRetryDelay = time.Second

	// FallbackArtworkURL is shown for tracks without artwork.
	FallbackArtworkURL = "https://images.pexels.com/photos/1105666/pexels-photo-1105666.jpeg?auto=compress&cs=tinysrgb&w=300"

	// DefaultPlaylistArtworkURL is assigned to newly created playlists.
	DefaultPlaylistArtworkURL = "https://images.pexels.com/photos/1699030/pexels-photo-1699030.jpeg?auto=compress&cs=tinysrgb&w=300"

	// FavoritesArtworkURL is the artwork of the seeded "My Favorites" playlist.
	FavoritesArtworkURL = "https://images.pexels.com/photos/1763075/pexels-photo-1763075.jpeg?auto=compress&cs=tinysrgb&w=300"

	// WorkoutArtworkURL is the artwork of the seeded "Workout Mix" playlist.
	WorkoutArtworkURL = FallbackArtworkURL
)

// Track is a single streamable song as delivered by a catalog.
// Tracks are values; two tracks are the same song when their IDs match.
type Track struct {
	// ID is the catalog identifier of the track
	ID string

	// Title is the song title
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Duration is the catalog-reported length of the track
	Duration time.Duration

	// ArtworkURL points to the cover image (may be empty)
	ArtworkURL string

	// MediaURL is the streamable audio resource
	MediaURL string

	// CreatedAt is when the record was created by the catalog mapping
	CreatedAt time.Time
}

// Equal reports whether t and other identify the same song.
func (t Track) Equal(other Track) bool {
	return t.ID == other.ID
}

// Artwork returns the artwork URL, falling back to the placeholder image.
func (t Track) Artwork() string {
	if t.ArtworkURL == "" {
		return FallbackArtworkURL
	}
	return t.ArtworkURL
}

// IndexOfTrack returns the position of the first track with the given ID, or -1.
func IndexOfTrack(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// Playlist represents a user-owned, named collection of tracks.
type Playlist struct {
	// ID is a unique identifier for the playlist (UUID)
	ID string

	// Name is the playlist name
	Name string

	// Description is free text shown under the name
	Description string

	// ArtworkURL is the playlist cover image
	ArtworkURL string

	// Tracks is the ordered list of tracks in the playlist; duplicates are allowed
	Tracks []Track

	// CreatedAt is when the playlist was created
	CreatedAt time.Time

	// UpdatedAt is when the playlist was last modified
	UpdatedAt time.Time
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	c := *p
	c.Tracks = append([]Track(nil), p.Tracks...)
	return &c
}

// Duration returns the sum of all track durations.
func (p *Playlist) Duration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// PlaybackState represents the current state of the player.
// It is a snapshot; mutating it does not affect the player.
type PlaybackState struct {
	// CurrentTrack is the track at CurrentIndex (nil if the queue is empty)
	CurrentTrack *Track

	// CurrentIndex is the index in the queue (0-based, -1 if no track)
	CurrentIndex int

	// Queue is the current playback queue
	Queue []Track

	// IsPlaying is the intent to play; the media element may still reject it
	IsPlaying bool

	// Position is the current playback position within the track
	Position time.Duration

	// Duration is the length reported by the media element
	Duration time.Duration

	// Volume is the requested volume level, nominally 0.0 to 1.0
	Volume float64

	// IsShuffled enables random next-track selection
	IsShuffled bool

	// IsRepeating restarts the current track instead of advancing
	IsRepeating bool
}

// Status derives the playback status from the snapshot.
func (s PlaybackState) Status() PlaybackStatus {
	switch {
	case len(s.Queue) == 0:
		return StatusEmpty
	case s.IsPlaying:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// IsMuted reports whether the volume is at or below zero.
func (s PlaybackState) IsMuted() bool {
	return s.Volume <= 0
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusEmpty indicates there is nothing queued
	StatusEmpty PlaybackStatus = iota

	// StatusPaused indicates a track is loaded but not playing
	StatusPaused

	// StatusPlaying indicates playback is requested
	StatusPlaying
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Preferences contain user preferences restored at startup.
type Preferences struct {
	// Volume is the saved volume level (0.0 to 1.0)
	Volume float64

	// Shuffle indicates if shuffle was enabled
	Shuffle bool

	// Repeat indicates if repeat was enabled
	Repeat bool
}

// Clamp01 limits v to the range [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
