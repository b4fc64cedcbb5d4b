package composer

import "testing"

func TestResolvePrimaryAction(t *testing.T) {
	tests := []struct {
		name     string
		kind     ModeKind
		draft    Draft
		expected PrimaryAction
	}{
		{"empty draft records", TextEntry, Draft{}, ActionRecord},
		{"whitespace records", TextEntry, Draft{Text: "  \n"}, ActionRecord},
		{"text sends", TextEntry, Draft{Text: "hi"}, ActionSend},
		{"attachments send", TextEntry, Draft{Attachments: 2}, ActionSend},
		{"recording has no primary", Recording, Draft{}, ActionNone},
		{"preview has no primary", Preview, Draft{Text: "hi"}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolvePrimaryAction(tt.kind, tt.draft)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestControlsFor(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		draft    Draft
		expected Controls
	}{
		{
			name:     "text entry",
			mode:     Mode{},
			expected: Controls{Primary: ActionRecord},
		},
		{
			name:     "text entry with content",
			mode:     Mode{Kind: TextEntry},
			draft:    Draft{Text: "hello"},
			expected: Controls{Primary: ActionSend},
		},
		{
			name:     "recording",
			mode:     Mode{Kind: Recording},
			expected: Controls{Stop: true, Cancel: true},
		},
		{
			name:     "preview",
			mode:     Mode{Kind: Preview},
			expected: Controls{TogglePlayback: true, Discard: true, Send: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ControlsFor(tt.mode, tt.draft)
			if result != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	intents := []IntentKind{IntentPrimary, IntentStop, IntentCancel, IntentTogglePlayback, IntentDiscard, IntentSend}
	legal := map[ModeKind]map[IntentKind]bool{
		TextEntry: {IntentPrimary: true},
		Recording: {IntentStop: true, IntentCancel: true},
		Preview:   {IntentTogglePlayback: true, IntentDiscard: true, IntentSend: true},
	}

	for kind, allowed := range legal {
		for _, intent := range intents {
			if got := Allowed(kind, intent); got != allowed[intent] {
				t.Errorf("Allowed(%s, %s): expected %v, got %v", kind, intent, allowed[intent], got)
			}
		}
		if !Allowed(kind, IntentSetDraft) {
			t.Errorf("SetDraft must be allowed in %s", kind)
		}
	}
}

func TestParseIntentKind(t *testing.T) {
	for kind, name := range intentNames {
		parsed, err := ParseIntentKind(name)
		if err != nil {
			t.Errorf("ParseIntentKind(%q) failed: %v", name, err)
		}
		if parsed != kind {
			t.Errorf("ParseIntentKind(%q): expected %v, got %v", name, kind, parsed)
		}
	}

	if _, err := ParseIntentKind("rewind"); err == nil {
		t.Error("Expected error for unknown intent")
	}
}

func TestModeKind_String(t *testing.T) {
	tests := []struct {
		kind     ModeKind
		expected string
	}{
		{TextEntry, "TextEntry"},
		{Recording, "Recording"},
		{Preview, "Preview"},
		{ModeKind(9), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
