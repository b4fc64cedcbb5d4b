// Package tray is the menu-bar composer: the menu offers exactly the
// controls that are legal in the composer's current mode.
package tray

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/i18n"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/preview"
)

// Composer is the part of the controller the menu drives
type Composer interface {
	Post(intent composer.Intent)
	Mode() composer.Mode
	Controls() composer.Controls
}

// Icon identifies a tray icon
type Icon int

const (
	IconIdle Icon = iota
	IconRecording
	IconPreview
)

// MenuState is what the menu shows for one composer mode
type MenuState struct {
	Icon        Icon
	Status      string
	Record      bool
	Stop        bool
	Cancel      bool
	Toggle      bool
	ToggleLabel string
	Send        bool
	Discard     bool
}

// StateFor derives the menu from the mode and its legal controls.
// The menu has no draft, so Record is offered whenever the primary action records.
func StateFor(mode composer.Mode, controls composer.Controls, t *i18n.Translator) MenuState {
	state := MenuState{
		Record:  controls.Primary == composer.ActionRecord,
		Stop:    controls.Stop,
		Cancel:  controls.Cancel,
		Toggle:  controls.TogglePlayback,
		Send:    controls.Send,
		Discard: controls.Discard,
	}

	switch mode.Kind {
	case composer.Recording:
		state.Icon = IconRecording
		state.Status = t.TranslateWithFormat("status.recording", map[string]string{"elapsed": FormatElapsed(mode.Elapsed.Seconds())})
	case composer.Preview:
		state.Icon = IconPreview
		seconds := 0
		if mode.Artifact != nil {
			seconds = mode.Artifact.DurationSeconds
		}
		state.Status = t.TranslateWithFormat("status.preview", map[string]string{"seconds": strconv.Itoa(seconds)})
		state.ToggleLabel = t.Translate("menu.play")
		if mode.Playback == preview.Playing {
			state.ToggleLabel = t.Translate("menu.pause")
		}
	default:
		state.Icon = IconIdle
		state.Status = t.Translate("status.text_entry")
	}

	return state
}

// FormatElapsed renders seconds as m:ss
func FormatElapsed(seconds float64) string {
	s := int(seconds)
	return strconv.Itoa(s/60) + ":" + pad2(s%60)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Config holds tray manager configuration
type Config struct {
	AppName        string
	Composer       Composer
	Translator     *i18n.Translator
	Logger         *logger.Logger
	OnReady        func() // Called when systray is ready for initialization
	OnOpenOutbox   func()
	OnMicSettings  func()
	OnDeviceChange func(deviceID int)
	OnQuit         func()
}

// Manager manages the system tray icon and menu
type Manager struct {
	config Config
	t      *i18n.Translator
	log    *logger.Logger

	stateMutex sync.Mutex
	state      MenuState
	ready      bool

	menuStatus        *systray.MenuItem
	menuRecord        *systray.MenuItem
	menuStop          *systray.MenuItem
	menuCancel        *systray.MenuItem
	menuToggle        *systray.MenuItem
	menuSend          *systray.MenuItem
	menuDiscard       *systray.MenuItem
	menuDevices       *systray.MenuItem
	menuOutbox        *systray.MenuItem
	menuMic           *systray.MenuItem
	menuQuit          *systray.MenuItem
	deviceMenuItems   []*systray.MenuItem
	deviceCancelFuncs []context.CancelFunc

	icons map[Icon][]byte
}

// NewManager creates a new tray manager
func NewManager(config Config) *Manager {
	t := config.Translator
	if t == nil {
		t = i18n.NewDefaultTranslator(i18n.LanguageEnglish)
	}
	if config.AppName == "" {
		config.AppName = "VoiceNote"
	}

	m := &Manager{
		config: config,
		t:      t,
		log:    config.Logger,
	}
	m.state = StateFor(composer.Mode{}, composer.ControlsFor(composer.Mode{}, composer.Draft{}), t)

	// Load icons once at initialization
	m.icons = map[Icon][]byte{
		IconIdle:      m.loadIconData("idle.png", idleFallback()),
		IconRecording: m.loadIconData("recording.png", recordingFallback()),
		IconPreview:   m.loadIconData("preview.png", previewFallback()),
	}

	return m
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

func (m *Manager) onReady() {
	systray.SetTooltip(m.config.AppName)

	m.menuStatus = systray.AddMenuItem("", "")
	m.menuStatus.Disable()
	systray.AddSeparator()

	m.menuRecord = systray.AddMenuItem(m.t.Translate("menu.record"), "")
	m.menuStop = systray.AddMenuItem(m.t.Translate("menu.stop"), "")
	m.menuCancel = systray.AddMenuItem(m.t.Translate("menu.cancel"), "")
	m.menuToggle = systray.AddMenuItem(m.t.Translate("menu.play"), "")
	m.menuSend = systray.AddMenuItem(m.t.Translate("menu.send"), "")
	m.menuDiscard = systray.AddMenuItem(m.t.Translate("menu.discard"), "")

	systray.AddSeparator()

	m.menuDevices = systray.AddMenuItem(m.t.Translate("permission.microphone"), "")
	m.menuOutbox = systray.AddMenuItem(m.t.Translate("menu.open_outbox"), "")
	m.menuMic = systray.AddMenuItem(m.t.Translate("menu.mic_settings"), "")

	systray.AddSeparator()

	m.menuQuit = systray.AddMenuItem(m.t.Translate("menu.quit"), "")

	m.stateMutex.Lock()
	m.ready = true
	m.apply(m.state)
	m.stateMutex.Unlock()

	go m.handleMenuEvents()

	if m.config.OnReady != nil {
		m.config.OnReady()
	}
}

func (m *Manager) onExit() {
	m.stateMutex.Lock()
	m.ready = false
	m.stateMutex.Unlock()
}

func (m *Manager) post(intent composer.Intent) {
	if m.config.Composer != nil {
		m.config.Composer.Post(intent)
	}
}

// handleMenuEvents forwards menu clicks as composer intents
func (m *Manager) handleMenuEvents() {
	for {
		select {
		case <-m.menuRecord.ClickedCh:
			m.post(composer.Primary())
		case <-m.menuStop.ClickedCh:
			m.post(composer.Stop())
		case <-m.menuCancel.ClickedCh:
			m.post(composer.Cancel())
		case <-m.menuToggle.ClickedCh:
			m.post(composer.TogglePlayback())
		case <-m.menuSend.ClickedCh:
			m.post(composer.Send())
		case <-m.menuDiscard.ClickedCh:
			m.post(composer.Discard())
		case <-m.menuOutbox.ClickedCh:
			if m.config.OnOpenOutbox != nil {
				m.config.OnOpenOutbox()
			}
		case <-m.menuMic.ClickedCh:
			if m.config.OnMicSettings != nil {
				m.config.OnMicSettings()
			}
		case <-m.menuQuit.ClickedCh:
			if m.config.OnQuit != nil {
				m.config.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// ModeChanged refreshes the menu for a new composer mode
func (m *Manager) ModeChanged(mode composer.Mode) {
	var controls composer.Controls
	if m.config.Composer != nil {
		controls = m.config.Composer.Controls()
	} else {
		controls = composer.ControlsFor(mode, composer.Draft{})
	}
	state := StateFor(mode, controls, m.t)

	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()
	m.state = state
	if m.ready {
		m.apply(state)
	}
}

// State returns what the menu currently shows
func (m *Manager) State() MenuState {
	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()
	return m.state
}

func (m *Manager) apply(state MenuState) {
	systray.SetIcon(m.icons[state.Icon])
	systray.SetTooltip(m.config.AppName + " - " + state.Status)
	m.menuStatus.SetTitle(state.Status)

	show(m.menuRecord, state.Record)
	show(m.menuStop, state.Stop)
	show(m.menuCancel, state.Cancel)
	show(m.menuToggle, state.Toggle)
	show(m.menuSend, state.Send)
	show(m.menuDiscard, state.Discard)
	if state.ToggleLabel != "" {
		m.menuToggle.SetTitle(state.ToggleLabel)
	}
}

func show(item *systray.MenuItem, visible bool) {
	if visible {
		item.Show()
		item.Enable()
		return
	}
	item.Disable()
	item.Hide()
}

// UpdateDeviceMenu updates the device submenu with available input devices
func (m *Manager) UpdateDeviceMenu(devices []audio.Device, current int) {
	for _, cancel := range m.deviceCancelFuncs {
		cancel()
	}
	m.deviceCancelFuncs = nil

	for _, item := range m.deviceMenuItems {
		item.Hide()
	}
	m.deviceMenuItems = nil

	for _, device := range devices {
		prefix := ""
		if device.ID == current || (current == audio.DefaultDevice && device.IsDefault) {
			prefix = "✓ "
		}

		item := m.menuDevices.AddSubMenuItem(prefix+device.Name, "")
		m.deviceMenuItems = append(m.deviceMenuItems, item)

		ctx, cancel := context.WithCancel(context.Background())
		m.deviceCancelFuncs = append(m.deviceCancelFuncs, cancel)

		go func(ctx context.Context, id int, item *systray.MenuItem) {
			for {
				select {
				case <-ctx.Done():
					return
				case <-item.ClickedCh:
					if m.config.OnDeviceChange != nil {
						m.config.OnDeviceChange(id)
					}
				}
			}
		}(ctx, device.ID, item)
	}
}

// Quit quits the system tray
func (m *Manager) Quit() {
	systray.Quit()
}

// loadIconData loads an icon from assets/icon next to the executable,
// falling back to a built-in placeholder
func (m *Manager) loadIconData(filename string, fallback []byte) []byte {
	exe, err := os.Executable()
	if err != nil {
		m.log.Debug("tray icon %s: %v", filename, err)
		return fallback
	}

	iconPath := filepath.Join(filepath.Dir(exe), "assets", "icon", filename)
	data, err := os.ReadFile(iconPath)
	if err != nil {
		m.log.Debug("tray icon %s not found, using placeholder", iconPath)
		return fallback
	}

	return data
}

// idleFallback is a placeholder icon for text entry
func idleFallback() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff,
		0x61, 0x00, 0x00, 0x00, 0x19, 0x74, 0x45, 0x58,
		0x74, 0x53, 0x6f, 0x66, 0x74, 0x77, 0x61, 0x72,
		0x65, 0x00, 0x41, 0x64, 0x6f, 0x62, 0x65, 0x20,
		0x49, 0x6d, 0x61, 0x67, 0x65, 0x52, 0x65, 0x61,
		0x64, 0x79, 0x71, 0xc9, 0x65, 0x3c, 0x00, 0x00,
		0x00, 0x18, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda,
		0x62, 0xfc, 0xff, 0xff, 0x3f, 0x03, 0x00, 0x00,
		0x00, 0xff, 0xff, 0x03, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60,
		0x82,
	}
}

// recordingFallback is a placeholder icon for an active take
func recordingFallback() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff,
		0x61, 0x00, 0x00, 0x00, 0x19, 0x74, 0x45, 0x58,
		0x74, 0x53, 0x6f, 0x66, 0x74, 0x77, 0x61, 0x72,
		0x65, 0x00, 0x41, 0x64, 0x6f, 0x62, 0x65, 0x20,
		0x49, 0x6d, 0x61, 0x67, 0x65, 0x52, 0x65, 0x61,
		0x64, 0x79, 0x71, 0xc9, 0x65, 0x3c, 0x00, 0x00,
		0x00, 0x20, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda,
		0x62, 0xfc, 0xcf, 0xc0, 0xc0, 0xc0, 0xf0, 0x9f,
		0x81, 0x81, 0x81, 0x81, 0xff, 0x19, 0x18, 0x18,
		0x18, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0x03,
		0x00, 0x0c, 0x10, 0x02, 0x01, 0x8b, 0xd5, 0xf8,
		0x23, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e,
		0x44, 0xae, 0x42, 0x60, 0x82,
	}
}

// previewFallback is a placeholder icon for a take waiting to be sent
func previewFallback() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff,
		0x61, 0x00, 0x00, 0x00, 0x19, 0x74, 0x45, 0x58,
		0x74, 0x53, 0x6f, 0x66, 0x74, 0x77, 0x61, 0x72,
		0x65, 0x00, 0x41, 0x64, 0x6f, 0x62, 0x65, 0x20,
		0x49, 0x6d, 0x61, 0x67, 0x65, 0x52, 0x65, 0x61,
		0x64, 0x79, 0x71, 0xc9, 0x65, 0x3c, 0x00, 0x00,
		0x00, 0x20, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda,
		0x62, 0xfc, 0xcf, 0xf0, 0x9f, 0xc1, 0xc8, 0xc0,
		0xc0, 0xc0, 0xff, 0x0c, 0x0c, 0x0c, 0xfc, 0xcf,
		0xc0, 0xc0, 0xc0, 0x00, 0x00, 0x00, 0x00, 0xff,
		0xff, 0x03, 0x00, 0x0c, 0x50, 0x02, 0x01, 0x3e,
		0x0a, 0xe4, 0x5b, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
}
