package outbox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yok-tottii/voicenote/internal/recording"
)

func newTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(filepath.Join(t.TempDir(), "outbox"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	o.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return o
}

func writeTake(t *testing.T) recording.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voicenote-take.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0600); err != nil {
		t.Fatalf("Failed to write take: %v", err)
	}
	return recording.Artifact{ID: uuid.New(), Location: path, DurationSeconds: 4}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Error("Expected error for empty directory")
	}
}

func TestSendAudio(t *testing.T) {
	o := newTestOutbox(t)
	artifact := writeTake(t)

	entry, err := o.SendAudio(artifact)
	if err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}

	if entry.ID != artifact.ID || entry.Kind != KindAudio || entry.DurationSeconds != 4 {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if filepath.Dir(entry.Location) != o.Dir() {
		t.Errorf("Expected file inside outbox, got %s", entry.Location)
	}
	if _, err := os.Stat(entry.Location); err != nil {
		t.Errorf("Moved file missing: %v", err)
	}
	if _, err := os.Stat(artifact.Location); !os.IsNotExist(err) {
		t.Error("Original take should have been moved")
	}
}

func TestSendAudioMissingFile(t *testing.T) {
	o := newTestOutbox(t)

	_, err := o.SendAudio(recording.Artifact{ID: uuid.New(), Location: "/nonexistent/take.wav"})
	if err == nil {
		t.Error("Expected error for missing take")
	}

	entries, _ := o.List()
	if len(entries) != 0 {
		t.Errorf("Failed send must not be indexed, got %d entries", len(entries))
	}
}

func TestListOrderAndRoundTrip(t *testing.T) {
	o := newTestOutbox(t)

	if _, err := o.SendText("hello", 0); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	audio, err := o.SendAudio(writeTake(t))
	if err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}
	if _, err := o.SendText("", 2); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	// A second handle reads the same index
	reopened, err := Open(o.Dir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	entries, err := reopened.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Attachments != 2 {
		t.Errorf("Expected newest entry first, got %+v", entries[0])
	}
	if entries[1].ID != audio.ID || entries[1].Location != audio.Location {
		t.Errorf("Voice note entry did not round trip: %+v", entries[1])
	}
	if entries[2].Text != "hello" {
		t.Errorf("Expected oldest text entry last, got %+v", entries[2])
	}
}

func TestListEmpty(t *testing.T) {
	entries, err := newTestOutbox(t).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty outbox, got %d", len(entries))
	}
}

func TestCorruptIndex(t *testing.T) {
	o := newTestOutbox(t)
	os.WriteFile(filepath.Join(o.Dir(), IndexFile), []byte{0xc1, 0x00}, 0644)

	if _, err := o.List(); err == nil {
		t.Error("Expected error for corrupt index")
	}
}

func TestDiscard(t *testing.T) {
	o := newTestOutbox(t)
	artifact := writeTake(t)

	if err := o.Discard(artifact); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := os.Stat(artifact.Location); !os.IsNotExist(err) {
		t.Error("Discarded take should be deleted")
	}

	// Already gone is fine
	if err := o.Discard(artifact); err != nil {
		t.Errorf("Second Discard failed: %v", err)
	}
	if err := o.Discard(recording.Artifact{}); err != nil {
		t.Errorf("Discard without location failed: %v", err)
	}
}
