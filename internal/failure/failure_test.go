package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{HardwareUnavailable, "HardwareUnavailable"},
		{PermissionDenied, "PermissionDenied"},
		{PlaybackFailed, "PlaybackFailed"},
		{Kind(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	raw := errors.New("device busy")

	if KindOf(raw) != HardwareUnavailable {
		t.Errorf("Expected unmapped error to degrade to HardwareUnavailable, got %v", KindOf(raw))
	}

	denied := New(PermissionDenied, "authorize", nil)
	wrapped := fmt.Errorf("start recording: %w", denied)
	if KindOf(wrapped) != PermissionDenied {
		t.Errorf("Expected PermissionDenied through wrapping, got %v", KindOf(wrapped))
	}

	if Is(nil, HardwareUnavailable) {
		t.Error("nil error should not match any kind")
	}
}

func TestTranslate(t *testing.T) {
	if Translate("prepare", nil) != nil {
		t.Error("Expected nil for nil error")
	}

	raw := errors.New("paUnanticipatedHostError")
	err := Translate("prepare", raw)
	if !Is(err, HardwareUnavailable) {
		t.Errorf("Expected HardwareUnavailable, got %v", err)
	}
	if !errors.Is(err, raw) {
		t.Error("Expected translated error to unwrap to the original")
	}

	playback := New(PlaybackFailed, "play", raw)
	if Translate("other", playback) != error(playback) {
		t.Error("Expected typed failure to pass through unchanged")
	}
}

func TestError_Message(t *testing.T) {
	err := New(PlaybackFailed, "open", errors.New("bad header"))
	expected := "open: PlaybackFailed: bad header"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	if New(PermissionDenied, "authorize", nil).Error() != "authorize: PermissionDenied" {
		t.Errorf("Unexpected message: %s", New(PermissionDenied, "authorize", nil).Error())
	}
}
