// Package clipboard moves voice-note locations and draft text through the
// system clipboard.
package clipboard

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// Backend is the system clipboard
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type robotgoBackend struct{}

func (robotgoBackend) ReadAll() (string, error) {
	return robotgo.ReadAll()
}

func (robotgoBackend) WriteAll(text string) error {
	return robotgo.WriteAll(text)
}

// Manager manages clipboard operations
type Manager struct {
	backend Backend
}

// NewManager creates a manager backed by the system clipboard
func NewManager() *Manager {
	return &Manager{backend: robotgoBackend{}}
}

// NewManagerWithBackend creates a manager over the given backend
func NewManagerWithBackend(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// Copy puts text on the clipboard
func (m *Manager) Copy(text string) error {
	if err := m.backend.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// CopyLocation puts the artifact's file location on the clipboard
func (m *Manager) CopyLocation(artifact recording.Artifact) error {
	if artifact.Location == "" {
		return fmt.Errorf("artifact has no location")
	}
	return m.Copy(artifact.Location)
}

// PasteText returns the clipboard content as a single draft line.
// Line breaks collapse to spaces.
func (m *Manager) PasteText() (string, error) {
	content, err := m.backend.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return strings.Join(strings.Fields(content), " "), nil
}
