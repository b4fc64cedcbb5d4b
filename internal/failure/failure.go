// Package failure defines the typed outcomes that hardware-facing components
// return instead of raw platform errors.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the composer recovers from it
type Kind int

const (
	// HardwareUnavailable means the audio resource is busy, absent or failed
	// in a way that has no more specific mapping
	HardwareUnavailable Kind = iota
	// PermissionDenied means the user declined microphone access
	PermissionDenied
	// PlaybackFailed means a captured clip could not be auditioned
	PlaybackFailed
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case HardwareUnavailable:
		return "HardwareUnavailable"
	case PermissionDenied:
		return "PermissionDenied"
	case PlaybackFailed:
		return "PlaybackFailed"
	default:
		return "Unknown"
	}
}

// MessageKey returns the i18n key of the user-facing message for the kind
func (k Kind) MessageKey() string {
	switch k {
	case PermissionDenied:
		return "error.mic_permission_denied"
	case PlaybackFailed:
		return "error.playback_failed"
	default:
		return "error.hardware_unavailable"
	}
}

// Error is a failure translated at a component boundary
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New creates a failure of the given kind for operation op
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Translate wraps err as a failure of op. Errors that already carry a kind
// keep it; anything else degrades to HardwareUnavailable.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return New(HardwareUnavailable, op, err)
}

// KindOf reports the kind of err. Unrecognized errors are HardwareUnavailable.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return HardwareUnavailable
}

// Is reports whether err is a failure of the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
