// Package domain defines domain-specific errors.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Queue and collection errors.
var (
	ErrTrackNotFound    = errors.New("track not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrInvalidIndex     = errors.New("invalid queue index")
)

// Media errors.
var (
	// ErrInvalidMediaURL means a track has no playable resource.
	ErrInvalidMediaURL = errors.New("invalid media url")

	// ErrPlaybackRejected means the media element refused to start, for
	// example under an autoplay policy or with no source loaded.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrInvalidPosition means a seek before the start of the track.
	ErrInvalidPosition = errors.New("invalid playback position")
)

// ErrClosed is returned when a component is used after Close.
var ErrClosed = errors.New("component closed")

// MediaError is a failure reported by or about the media element.
type MediaError struct {
	Op      string // load, play, seek, ...
	URL     string // may be empty
	Message string
	Err     error
}

func (e *MediaError) Error() string {
	var b strings.Builder
	b.WriteString("media ")
	b.WriteString(e.Op)
	if e.URL != "" {
		fmt.Fprintf(&b, " %q", e.URL)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MediaError) Unwrap() error { return e.Err }

// NewMediaError creates a new MediaError.
func NewMediaError(op, url, message string, err error) *MediaError {
	return &MediaError{Op: op, URL: url, Message: message, Err: err}
}

// RepositoryError wraps a persistence failure with the repository and the
// operation that hit it.
type RepositoryError struct {
	Op      string // save, load, delete, ...
	Type    string // playlist, tracks, history, preferences, search
	Message string
	Err     error
}

func (e *RepositoryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s repository: %s: %s", e.Type, e.Op, e.Message)
	}
	return fmt.Sprintf("%s repository: %s: %s: %v", e.Type, e.Op, e.Message, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Type: repoType, Message: message, Err: err}
}

// ValidationError rejects caller input such as a blank playlist name or a
// volume outside [0, 1].
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ServiceError wraps a failure inside a service operation.
type ServiceError struct {
	Service string
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s.%s: %s: %v", e.Service, e.Op, e.Message, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Message: message, Err: err}
}
