package composer

import "strings"

// Draft is the host's text composer content
type Draft struct {
	Text        string
	Attachments int
}

// HasContent reports whether the draft can be sent as a text message
func (d Draft) HasContent() bool {
	return strings.TrimSpace(d.Text) != "" || d.Attachments > 0
}

// PrimaryAction is what the composer's main button does
type PrimaryAction int

const (
	// ActionNone means the main button is replaced by mode-specific controls
	ActionNone PrimaryAction = iota
	// ActionSend sends the draft text and attachments
	ActionSend
	// ActionRecord starts a voice note
	ActionRecord
)

// String returns the string representation of the action
func (a PrimaryAction) String() string {
	switch a {
	case ActionSend:
		return "send"
	case ActionRecord:
		return "record"
	default:
		return "none"
	}
}

// ResolvePrimaryAction computes the main button's meaning from the mode and
// the draft alone
func ResolvePrimaryAction(kind ModeKind, draft Draft) PrimaryAction {
	if kind != TextEntry {
		return ActionNone
	}
	if draft.HasContent() {
		return ActionSend
	}
	return ActionRecord
}

// Controls lists the affordances a surface may render
type Controls struct {
	Primary        PrimaryAction `json:"primary"`
	Stop           bool          `json:"stop"`
	Cancel         bool          `json:"cancel"`
	TogglePlayback bool          `json:"toggle_playback"`
	Discard        bool          `json:"discard"`
	Send           bool          `json:"send"`
}

// ControlsFor returns the controls that are legal in the given mode
func ControlsFor(mode Mode, draft Draft) Controls {
	return Controls{
		Primary:        ResolvePrimaryAction(mode.Kind, draft),
		Stop:           Allowed(mode.Kind, IntentStop),
		Cancel:         Allowed(mode.Kind, IntentCancel),
		TogglePlayback: Allowed(mode.Kind, IntentTogglePlayback),
		Discard:        Allowed(mode.Kind, IntentDiscard),
		Send:           Allowed(mode.Kind, IntentSend),
	}
}

// MarshalText encodes the action by name
func (a PrimaryAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
