package notification

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/i18n"
	"github.com/yok-tottii/voicenote/internal/recording"
)

type recordingNotifier struct {
	sent []*Notification
	err  error
}

func (r *recordingNotifier) Send(n *Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager("TestApp")

	if nm == nil {
		t.Fatal("Expected notification manager to be created")
	}

	if nm.appName != "TestApp" {
		t.Errorf("Expected appName to be TestApp, got %s", nm.appName)
	}
}

func TestNotificationManagerSend(t *testing.T) {
	nm := NewNotificationManager("TestApp")

	var gotName string
	var gotArgs []string
	nm.run = func(name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	if err := nm.Send(&Notification{Message: `say "hi"`, Type: TypeInfo}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotName != "osascript" {
		t.Errorf("Expected osascript, got %s", gotName)
	}
	expected := `display notification "say \"hi\"" with title "TestApp"`
	if len(gotArgs) != 2 || gotArgs[1] != expected {
		t.Errorf("Expected script %q, got %v", expected, gotArgs)
	}
}

func TestNotificationManagerSendError(t *testing.T) {
	nm := NewNotificationManager("TestApp")
	nm.run = func(name string, args ...string) error {
		return errors.New("no display")
	}

	if err := nm.Send(&Notification{Message: "x"}); err == nil {
		t.Error("Expected error when osascript fails")
	}
}

func TestSendNilNotification(t *testing.T) {
	if err := NewNotificationManager("TestApp").Send(nil); err == nil {
		t.Error("Expected error for nil notification")
	}
	if err := NewWriterNotifier(&bytes.Buffer{}).Send(nil); err == nil {
		t.Error("Expected error for nil notification")
	}
}

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{`a "quote"`, `a \"quote\"`},
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"tab\there", `tab\there`},
	}

	for _, tt := range tests {
		if got := EscapeAppleScript(tt.input); got != tt.expected {
			t.Errorf("EscapeAppleScript(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	wn := NewWriterNotifier(&buf)

	if err := wn.Send(&Notification{Message: "Recording started", Type: TypeInfo}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if buf.String() != "[INFO] Recording started\n" {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestReporterFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		key      string
		expected NotificationType
	}{
		{"permission", failure.New(failure.PermissionDenied, "record", nil), "error.mic_permission_denied", TypeWarning},
		{"playback", failure.New(failure.PlaybackFailed, "play", nil), "error.playback_failed", TypeError},
		{"unmapped", errors.New("boom"), "error.hardware_unavailable", TypeError},
	}

	translator := i18n.NewDefaultTranslator(i18n.LanguageEnglish)
	catalogue := i18n.DefaultEnglishTranslations()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			r := NewReporter("VoiceNote", n, translator)

			if err := r.Failure(tt.err); err != nil {
				t.Fatalf("Failure returned error: %v", err)
			}
			if len(n.sent) != 1 {
				t.Fatalf("Expected one notification, got %d", len(n.sent))
			}
			if n.sent[0].Message != catalogue[tt.key] {
				t.Errorf("Expected %q, got %q", catalogue[tt.key], n.sent[0].Message)
			}
			if n.sent[0].Type != tt.expected {
				t.Errorf("Expected type %s, got %s", tt.expected, n.sent[0].Type)
			}
		})
	}
}

func TestReporterFailureNil(t *testing.T) {
	n := &recordingNotifier{}
	if err := NewReporter("VoiceNote", n, nil).Failure(nil); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if len(n.sent) != 0 {
		t.Error("Nil error must not notify")
	}
}

func TestReporterMessages(t *testing.T) {
	n := &recordingNotifier{}
	r := NewReporter("VoiceNote", n, i18n.NewDefaultTranslator(i18n.LanguageEnglish))

	r.MaxDuration(5 * time.Minute)
	r.VoiceNoteSent(recording.Artifact{DurationSeconds: 4})
	r.LocationCopied()

	if len(n.sent) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(n.sent))
	}
	if !strings.Contains(n.sent[0].Message, "300") {
		t.Errorf("Expected limit in message, got %q", n.sent[0].Message)
	}
	if !strings.Contains(n.sent[1].Message, "4") {
		t.Errorf("Expected duration in message, got %q", n.sent[1].Message)
	}
	if n.sent[2].Title != "VoiceNote" {
		t.Errorf("Expected app name as title, got %q", n.sent[2].Title)
	}
}

func TestMulti(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: errors.New("offline")}

	err := Multi{a, b}.Send(&Notification{Message: "hi"})
	if err == nil {
		t.Error("Expected joined error")
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Error("Expected delivery to every notifier")
	}

	if err := (Multi{}).Send(&Notification{}); !errors.Is(err, ErrNoNotifier) {
		t.Errorf("Expected ErrNoNotifier, got %v", err)
	}
}

func TestNotificationType(t *testing.T) {
	types := []NotificationType{TypeInfo, TypeWarning, TypeError, TypeSuccess}
	expected := []string{"info", "warning", "error", "success"}

	for i, nt := range types {
		if string(nt) != expected[i] {
			t.Errorf("Expected %s, got %s", expected[i], nt)
		}
	}
}
