package composer

import "fmt"

// IntentKind identifies a user request forwarded by a surface
type IntentKind int

const (
	// IntentPrimary is a tap on the main button
	IntentPrimary IntentKind = iota
	// IntentStop finishes the current take
	IntentStop
	// IntentCancel drops the current take without an artifact
	IntentCancel
	// IntentTogglePlayback plays or pauses the preview
	IntentTogglePlayback
	// IntentDiscard drops the previewed take
	IntentDiscard
	// IntentSend hands the previewed take to the send pipeline
	IntentSend
	// IntentSetDraft replaces the host's draft content
	IntentSetDraft
)

var intentNames = map[IntentKind]string{
	IntentPrimary:        "primary",
	IntentStop:           "stop",
	IntentCancel:         "cancel",
	IntentTogglePlayback: "toggle_playback",
	IntentDiscard:        "discard",
	IntentSend:           "send",
	IntentSetDraft:       "set_draft",
}

// String returns the wire name of the intent kind
func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseIntentKind parses a wire name such as "toggle_playback"
func ParseIntentKind(name string) (IntentKind, error) {
	for kind, n := range intentNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown intent: %q", name)
}

// Intent is a single request to the controller
type Intent struct {
	Kind  IntentKind
	Draft Draft // IntentSetDraft only
}

// Primary returns a main-button intent
func Primary() Intent { return Intent{Kind: IntentPrimary} }

// Stop returns a stop intent
func Stop() Intent { return Intent{Kind: IntentStop} }

// Cancel returns a cancel intent
func Cancel() Intent { return Intent{Kind: IntentCancel} }

// TogglePlayback returns a play/pause intent
func TogglePlayback() Intent { return Intent{Kind: IntentTogglePlayback} }

// Discard returns a discard intent
func Discard() Intent { return Intent{Kind: IntentDiscard} }

// Send returns a send intent
func Send() Intent { return Intent{Kind: IntentSend} }

// SetDraft returns an intent replacing the draft
func SetDraft(draft Draft) Intent { return Intent{Kind: IntentSetDraft, Draft: draft} }

// Allowed reports whether an intent is legal in the given mode
func Allowed(kind ModeKind, intent IntentKind) bool {
	switch intent {
	case IntentSetDraft:
		return true
	case IntentPrimary:
		return kind == TextEntry
	case IntentStop, IntentCancel:
		return kind == Recording
	case IntentTogglePlayback, IntentDiscard, IntentSend:
		return kind == Preview
	default:
		return false
	}
}
