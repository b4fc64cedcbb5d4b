// Package outbox is the reference send pipeline: sent voice notes are moved
// out of the temp area and recorded in a msgpack index.
package outbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// IndexFile is the name of the index inside the outbox directory
const IndexFile = "index.msgpack"

// Kind tells what a sent message carried
type Kind string

const (
	// KindText is a typed message, possibly with attachments
	KindText Kind = "text"
	// KindAudio is a voice note
	KindAudio Kind = "audio"
)

// Entry is one sent message
type Entry struct {
	ID              uuid.UUID `msgpack:"id" json:"id"`
	Kind            Kind      `msgpack:"kind" json:"kind"`
	Text            string    `msgpack:"text,omitempty" json:"text,omitempty"`
	Attachments     int       `msgpack:"attachments,omitempty" json:"attachments,omitempty"`
	Location        string    `msgpack:"location,omitempty" json:"location,omitempty"`
	DurationSeconds int       `msgpack:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	SentAt          time.Time `msgpack:"sent_at" json:"sent_at"`
}

// Outbox stores sent messages under a directory
type Outbox struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
	log *logger.Logger
}

// Open creates the outbox directory if needed
func Open(dir string, log *logger.Logger) (*Outbox, error) {
	if dir == "" {
		return nil, fmt.Errorf("outbox directory is not set")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create outbox directory: %w", err)
	}
	return &Outbox{dir: dir, now: time.Now, log: log}, nil
}

// Dir returns the outbox directory
func (o *Outbox) Dir() string {
	return o.dir
}

// SendText records a typed message
func (o *Outbox) SendText(text string, attachments int) (Entry, error) {
	entry := Entry{
		ID:          uuid.New(),
		Kind:        KindText,
		Text:        text,
		Attachments: attachments,
		SentAt:      o.now(),
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.append(entry); err != nil {
		return Entry{}, err
	}
	o.log.Info("outbox: text message %s", entry.ID)
	return entry, nil
}

// SendAudio moves the artifact into the outbox and records it
func (o *Outbox) SendAudio(artifact recording.Artifact) (Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	dest := filepath.Join(o.dir, artifact.ID.String()+filepath.Ext(artifact.Location))
	if err := moveFile(artifact.Location, dest); err != nil {
		return Entry{}, fmt.Errorf("failed to move voice note into outbox: %w", err)
	}

	entry := Entry{
		ID:              artifact.ID,
		Kind:            KindAudio,
		Location:        dest,
		DurationSeconds: artifact.DurationSeconds,
		SentAt:          o.now(),
	}
	if err := o.append(entry); err != nil {
		return Entry{}, err
	}

	o.log.Info("outbox: voice note %s (%ds)", entry.ID, entry.DurationSeconds)
	return entry, nil
}

// Discard deletes a dropped artifact's file
func (o *Outbox) Discard(artifact recording.Artifact) error {
	if artifact.Location == "" {
		return nil
	}
	if err := os.Remove(artifact.Location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete discarded voice note: %w", err)
	}
	o.log.Debug("outbox: discarded %s", artifact.Location)
	return nil
}

// List returns the sent messages, newest first
func (o *Outbox) List() ([]Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SentAt.After(entries[j].SentAt)
	})
	return entries, nil
}

func (o *Outbox) load() ([]Entry, error) {
	data, err := os.ReadFile(filepath.Join(o.dir, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox index: %w", err)
	}

	var entries []Entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode outbox index: %w", err)
	}
	return entries, nil
}

// append rewrites the index with entry added. Callers hold o.mu.
func (o *Outbox) append(entry Entry) error {
	entries, err := o.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := msgpack.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode outbox index: %w", err)
	}

	tmp := filepath.Join(o.dir, IndexFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write outbox index: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(o.dir, IndexFile)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace outbox index: %w", err)
	}
	return nil
}

// moveFile renames src to dst, copying when they are on different devices
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	in.Close()
	return os.Remove(src)
}
