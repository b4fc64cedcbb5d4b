// Package composer arbitrates the voice-note modes of a message composer.
//
// The Controller is the only owner of the capture and playback hardware:
// it creates a recording.Session for each take and a preview.Player for
// each audition, and never lets the two hold hardware at the same time.
package composer

import (
	"time"

	"github.com/yok-tottii/voicenote/internal/preview"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// ModeKind identifies which of the composer modes is active
type ModeKind int

const (
	// TextEntry is the resting mode: typing, attachments, record button
	TextEntry ModeKind = iota
	// Recording means a take is being captured
	Recording
	// Preview means a finished take is waiting to be sent or discarded
	Preview
)

// String returns the string representation of the mode kind
func (k ModeKind) String() string {
	switch k {
	case TextEntry:
		return "TextEntry"
	case Recording:
		return "Recording"
	case Preview:
		return "Preview"
	default:
		return "Unknown"
	}
}

// Mode is a snapshot of the composer state. The zero value is TextEntry.
type Mode struct {
	Kind ModeKind

	// Recording
	Elapsed time.Duration

	// Preview
	Artifact *recording.Artifact
	Playback preview.PlaybackState
	Position time.Duration
}

// ElapsedSeconds returns the whole seconds recorded so far
func (m Mode) ElapsedSeconds() int {
	return int(m.Elapsed / time.Second)
}
