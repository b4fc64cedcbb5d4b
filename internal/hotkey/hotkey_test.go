package hotkey

import (
	"testing"
	"time"

	"golang.design/x/hotkey"

	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/config"
)

func TestNew(t *testing.T) {
	m := New(nil)
	if m == nil {
		t.Fatal("New() returned nil")
	}

	config := m.GetConfig()
	if len(config.Modifiers) != 2 {
		t.Errorf("Expected 2 modifiers, got %d", len(config.Modifiers))
	}

	if config.Key != hotkey.KeySpace {
		t.Errorf("Expected KeySpace, got %v", config.Key)
	}

	if config.Mode != PressToHold {
		t.Errorf("Expected PressToHold mode, got %v", config.Mode)
	}
}

func TestConfigFrom(t *testing.T) {
	hk := config.HotkeyConfig{Ctrl: true, Shift: true, Key: "r"}

	c, err := ConfigFrom(hk, config.RecordingModeToggle)
	if err != nil {
		t.Fatalf("ConfigFrom failed: %v", err)
	}

	if c.Key != hotkey.KeyR {
		t.Errorf("Expected KeyR, got %v", c.Key)
	}
	if len(c.Modifiers) != 2 || c.Modifiers[0] != hotkey.ModCtrl || c.Modifiers[1] != hotkey.ModShift {
		t.Errorf("Expected Ctrl+Shift, got %v", c.Modifiers)
	}
	if c.Mode != Toggle {
		t.Errorf("Expected Toggle mode, got %v", c.Mode)
	}
}

func TestConfigFromErrors(t *testing.T) {
	tests := []struct {
		name string
		hk   config.HotkeyConfig
		mode string
	}{
		{"unknown key", config.HotkeyConfig{Ctrl: true, Key: "F13"}, config.RecordingModePressToHold},
		{"no modifiers", config.HotkeyConfig{Key: "Space"}, config.RecordingModePressToHold},
		{"bad mode", config.HotkeyConfig{Ctrl: true, Key: "Space"}, "double-tap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ConfigFrom(tt.hk, tt.mode); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestDefaultSettingsParse(t *testing.T) {
	settings := config.DefaultConfig()

	c, err := ConfigFrom(settings.Hotkey, settings.RecordingMode)
	if err != nil {
		t.Fatalf("Default settings should produce a hotkey: %v", err)
	}
	if !sameChord(c.Modifiers, c.Key, New(nil).GetConfig().Modifiers, hotkey.KeySpace) {
		t.Error("Default settings should match the built-in default hotkey")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name     string
		expected hotkey.Key
	}{
		{"Space", hotkey.KeySpace},
		{"space", hotkey.KeySpace},
		{"escape", hotkey.KeyEscape},
		{"A", hotkey.KeyA},
		{"s", hotkey.KeyS},
		{"7", hotkey.Key7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.name)
			if err != nil {
				t.Fatalf("ParseKey failed: %v", err)
			}
			if key != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, key)
			}
		})
	}
}

func TestKeyToString(t *testing.T) {
	for _, k := range keyNames {
		if got := keyToString(k.key); got != k.name {
			t.Errorf("keyToString(%v) = %q, expected %q", k.key, got, k.name)
		}
	}
}

func TestCheckConflicts(t *testing.T) {
	for _, known := range knownConflicts {
		if len(CheckConflicts(known.Modifiers, known.Key)) == 0 {
			t.Errorf("Expected %s to be reported", known.Name)
		}
	}

	for _, own := range composerShortcuts {
		if len(CheckConflicts(own.Modifiers, own.Key)) == 0 {
			t.Errorf("Expected the composer's %s binding to be reported", own.Name)
		}
	}

	if conflicts := CheckConflicts([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyF); len(conflicts) != 0 {
		t.Errorf("Expected no conflicts, got %v", conflicts)
	}
}

func TestConfigConflicts(t *testing.T) {
	paste := Config{Modifiers: []hotkey.Modifier{hotkey.ModCtrl}, Key: hotkey.KeyV}
	if len(paste.Conflicts()) == 0 {
		t.Error("Expected Ctrl+V to shadow the composer paste")
	}
	if paste.String() != FormatHotkey(paste.Modifiers, paste.Key) {
		t.Errorf("Unexpected String(): %q", paste.String())
	}
}

func TestSameChord(t *testing.T) {
	tests := []struct {
		name     string
		mods1    []hotkey.Modifier
		key1     hotkey.Key
		mods2    []hotkey.Modifier
		key2     hotkey.Key
		expected bool
	}{
		{
			name:     "Same hotkey",
			mods1:    []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
			key1:     hotkey.KeySpace,
			mods2:    []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
			key2:     hotkey.KeySpace,
			expected: true,
		},
		{
			name:     "Different key",
			mods1:    []hotkey.Modifier{hotkey.ModCtrl},
			key1:     hotkey.KeySpace,
			mods2:    []hotkey.Modifier{hotkey.ModCtrl},
			key2:     hotkey.KeyReturn,
			expected: false,
		},
		{
			name:     "Different modifiers",
			mods1:    []hotkey.Modifier{hotkey.ModCtrl},
			key1:     hotkey.KeySpace,
			mods2:    []hotkey.Modifier{hotkey.ModShift},
			key2:     hotkey.KeySpace,
			expected: false,
		},
		{
			name:     "Same modifiers, different order",
			mods1:    []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
			key1:     hotkey.KeySpace,
			mods2:    []hotkey.Modifier{hotkey.ModShift, hotkey.ModCtrl},
			key2:     hotkey.KeySpace,
			expected: true,
		},
		{
			name:     "Repeated modifier",
			mods1:    []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModCtrl},
			key1:     hotkey.KeySpace,
			mods2:    []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
			key2:     hotkey.KeySpace,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sameChord(tt.mods1, tt.key1, tt.mods2, tt.key2)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestFormatHotkey(t *testing.T) {
	mods := []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}
	expected := modifierLabel(hotkey.ModCtrl) + modifierLabel(hotkey.ModShift) + "A"

	if result := FormatHotkey(mods, hotkey.KeyA); result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestIntentFor(t *testing.T) {
	tests := []struct {
		name     string
		event    EventType
		mode     composer.ModeKind
		expected composer.IntentKind
		ok       bool
	}{
		{"press records", Pressed, composer.TextEntry, composer.IntentPrimary, true},
		{"release stops", Released, composer.Recording, composer.IntentStop, true},
		{"press sends preview", Pressed, composer.Preview, composer.IntentSend, true},
		{"release in text entry", Released, composer.TextEntry, 0, false},
		{"press while recording", Pressed, composer.Recording, 0, false},
		{"release in preview", Released, composer.Preview, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, ok := IntentFor(Event{Type: tt.event}, tt.mode)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && intent.Kind != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, intent.Kind)
			}
		})
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := New(nil)

	if m.IsRunning() {
		t.Error("Manager should not be running initially")
	}

	// Close should be safe on non-running manager
	if err := m.Close(); err != nil {
		t.Errorf("Close() on non-running manager returned error: %v", err)
	}

	// Registration needs a display server and accessibility permission,
	// so it is left to manual testing.
}

func TestEventChannel(t *testing.T) {
	m := New(nil)

	eventChan := m.Events()
	if eventChan == nil {
		t.Fatal("Events() returned nil channel")
	}

	select {
	case <-eventChan:
		t.Error("Events channel should be empty initially")
	case <-time.After(10 * time.Millisecond):
	}
}
