// Package hotkey turns a global push-to-talk shortcut into composer intents.
package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/logger"
)

// RecordingMode defines how the hotkey triggers recording
type RecordingMode int

const (
	// PressToHold mode: record while key is held down
	PressToHold RecordingMode = iota
	// Toggle mode: first press starts, second press stops
	Toggle
)

// EventType represents the type of hotkey event
type EventType int

const (
	// Pressed indicates the hotkey was pressed
	Pressed EventType = iota
	// Released indicates the hotkey was released
	Released
)

// Event represents a hotkey event
type Event struct {
	Type EventType
}

// Config holds hotkey configuration
type Config struct {
	Modifiers []hotkey.Modifier
	Key       hotkey.Key
	Mode      RecordingMode
}

// ConfigFrom builds a hotkey configuration from the application settings
func ConfigFrom(hk config.HotkeyConfig, recordingMode string) (Config, error) {
	key, err := ParseKey(hk.Key)
	if err != nil {
		return Config{}, err
	}

	var mods []hotkey.Modifier
	for _, m := range []struct {
		name string
		on   bool
	}{
		{"ctrl", hk.Ctrl},
		{"shift", hk.Shift},
		{"alt", hk.Alt},
		{"cmd", hk.Cmd},
	} {
		if !m.on {
			continue
		}
		mod, ok := modifierFor(m.name)
		if !ok {
			return Config{}, fmt.Errorf("unsupported modifier: %s", m.name)
		}
		mods = append(mods, mod)
	}
	if len(mods) == 0 {
		return Config{}, fmt.Errorf("hotkey needs at least one modifier")
	}

	mode := PressToHold
	switch recordingMode {
	case config.RecordingModePressToHold, "":
	case config.RecordingModeToggle:
		mode = Toggle
	default:
		return Config{}, fmt.Errorf("invalid recording mode: %s", recordingMode)
	}

	return Config{Modifiers: mods, Key: key, Mode: mode}, nil
}

// Manager manages global hotkey registration and events
type Manager struct {
	hk        *hotkey.Hotkey
	config    Config
	eventChan chan Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	log       *logger.Logger
}

// New creates a new hotkey manager with the platform default shortcut
// (Ctrl+Option+Space on macOS, Ctrl+Alt+Space elsewhere)
func New(log *logger.Logger) *Manager {
	return &Manager{
		config: Config{
			Modifiers: append([]hotkey.Modifier(nil), defaultModifiers...),
			Key:       hotkey.KeySpace,
			Mode:      PressToHold,
		},
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
		log:       log,
	}
}

// Register registers the hotkey with the system
func (m *Manager) Register(config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey is already running, call Close() first")
	}

	for _, c := range config.Conflicts() {
		m.log.Warn("hotkey %s conflicts with %s (%s)", config, c.Name, c.Description)
	}

	m.config = config

	// Recreate channels (they may have been closed by a previous Close())
	m.stopChan = make(chan struct{})
	m.eventChan = make(chan Event, 10)

	hk := hotkey.New(m.config.Modifiers, m.config.Key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	m.hk = hk
	m.running = true

	m.wg.Add(1)
	go m.listen(hk, m.config.Mode, m.eventChan, m.stopChan)

	m.log.Info("hotkey registered: %s", config)
	return nil
}

// listen monitors hotkey events and sends them to the event channel
func (m *Manager) listen(hk *hotkey.Hotkey, mode RecordingMode, events chan<- Event, stop <-chan struct{}) {
	defer m.wg.Done()

	toggleState := false
	emit := func(t EventType) {
		select {
		case events <- Event{Type: t}:
		case <-stop:
		}
	}

	for {
		select {
		case <-hk.Keydown():
			switch mode {
			case PressToHold:
				emit(Pressed)
			case Toggle:
				if !toggleState {
					emit(Pressed)
				} else {
					emit(Released)
				}
				toggleState = !toggleState
			}

		case <-hk.Keyup():
			if mode == PressToHold {
				emit(Released)
			}

		case <-stop:
			return
		}
	}
}

// Events returns the event channel for receiving hotkey events
func (m *Manager) Events() <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventChan
}

// Close unregisters the hotkey and stops listening
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	var unregisterErr error

	close(m.stopChan)
	m.wg.Wait()

	// Cleanup continues even if unregistering fails
	if m.hk != nil {
		if err := m.hk.Unregister(); err != nil {
			unregisterErr = fmt.Errorf("failed to unregister hotkey: %w", err)
		}
	}

	// Close event channel to notify consumers of shutdown
	close(m.eventChan)

	// A failed Unregister must still allow the next Register
	m.running = false

	return unregisterErr
}

// IsRunning returns whether the hotkey is currently registered and running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetConfig returns a deep copy of the current hotkey configuration
func (m *Manager) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := m.config
	if m.config.Modifiers != nil {
		configCopy.Modifiers = make([]hotkey.Modifier, len(m.config.Modifiers))
		copy(configCopy.Modifiers, m.config.Modifiers)
	}

	return configCopy
}

// IntentFor maps a hotkey event onto a composer intent. A press records
// from TextEntry and sends from Preview; a release stops a take.
func IntentFor(ev Event, mode composer.ModeKind) (composer.Intent, bool) {
	switch {
	case ev.Type == Pressed && mode == composer.TextEntry:
		return composer.Primary(), true
	case ev.Type == Released && mode == composer.Recording:
		return composer.Stop(), true
	case ev.Type == Pressed && mode == composer.Preview:
		return composer.Send(), true
	}
	return composer.Intent{}, false
}

// Forward posts the intents for hotkey events to the controller until the
// event channel closes
func Forward(events <-chan Event, c *composer.Controller) {
	for ev := range events {
		if intent, ok := IntentFor(ev, c.Mode().Kind); ok {
			c.Post(intent)
		}
	}
}
