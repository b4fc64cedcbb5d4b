// Package app wires the composer to the platform: PortAudio hardware, the
// permission gate, the outbox, notifications and the clipboard.
package app

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/yok-tottii/voicenote/internal/api"
	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/clipboard"
	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/i18n"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/notification"
	"github.com/yok-tottii/voicenote/internal/outbox"
	"github.com/yok-tottii/voicenote/internal/permissions"
	"github.com/yok-tottii/voicenote/internal/preview"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// Name is shown in notifications and the tray tooltip
const Name = "VoiceNote"

// Options configure an App. Zero values select the real platform.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger

	Notifier          notification.Notifier
	Platform          permissions.Platform
	NewCaptureDriver  func() (audio.CaptureDriver, error)
	NewPlaybackDriver func() (audio.PlaybackDriver, error)
	Clipboard         clipboard.Backend
	Devices           api.DeviceLister

	// CopyLocation puts the path of each sent voice note on the clipboard
	CopyLocation bool
}

// App owns one composer and everything it reports to
type App struct {
	config     *config.Config
	configPath string
	log        *logger.Logger
	translator *i18n.Translator
	reporter   *notification.Reporter
	outbox     *outbox.Outbox
	clipboard  *clipboard.Manager
	platform   permissions.Platform
	devices    api.DeviceLister
	copyLoc    bool
	controller *composer.Controller

	mu        sync.Mutex
	observers []func(composer.Mode)
	onReload  []func(*config.Config) error
}

// New builds the application from its configuration
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		config:     cfg,
		configPath: opts.ConfigPath,
		log:        opts.Logger,
		translator: i18n.NewDefaultTranslator(i18n.Language(cfg.UILanguage)),
		platform:   opts.Platform,
		devices:    opts.Devices,
		copyLoc:    opts.CopyLocation,
	}

	outboxDir, err := config.ExpandPath(cfg.OutboxDir)
	if err != nil {
		return nil, err
	}
	a.outbox, err = outbox.Open(outboxDir, a.log)
	if err != nil {
		return nil, err
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.NewPlatformNotifier(Name, os.Stderr)
	}
	a.reporter = notification.NewReporter(Name, notifier, a.translator)

	if opts.Clipboard != nil {
		a.clipboard = clipboard.NewManagerWithBackend(opts.Clipboard)
	} else {
		a.clipboard = clipboard.NewManager()
	}

	if a.platform == nil {
		a.platform = permissions.NewPermissionChecker()
	}
	if a.devices == nil {
		a.devices = audio.ListAllDevices
	}

	newCapture := opts.NewCaptureDriver
	if newCapture == nil {
		newCapture = func() (audio.CaptureDriver, error) { return audio.NewPortAudioDriver() }
	}
	newPlayback := opts.NewPlaybackDriver
	if newPlayback == nil {
		newPlayback = func() (audio.PlaybackDriver, error) { return audio.NewPortAudioPlayer() }
	}

	controllerConfig, err := ControllerConfig(cfg)
	if err != nil {
		return nil, err
	}

	a.controller = composer.New(controllerConfig, composer.Deps{
		Gate:              permissions.NewGate(a.platform, a.log),
		NewCaptureDriver:  newCapture,
		NewPlaybackDriver: newPlayback,
		Logger:            a.log,
	}, composer.Callbacks{
		OnSendText:        a.sendText,
		OnSendAttachments: a.sendAttachments,
		OnSendAudio:       a.sendAudio,
		OnDiscardAudio:    a.discardAudio,
		OnModeChange:      a.modeChanged,
		OnFailure:         a.failed,
		OnMaxDuration:     a.maxDuration,
	})

	return a, nil
}

// ControllerConfig derives the composer configuration from the settings
func ControllerConfig(cfg *config.Config) (composer.Config, error) {
	maxRecord, prepareTimeout, tick, endTolerance := cfg.Durations()

	dir, err := config.ExpandPath(cfg.TempDir)
	if err != nil {
		return composer.Config{}, err
	}

	session := recording.DefaultConfig()
	session.Audio.DeviceID = cfg.InputDeviceID
	session.TickInterval = tick
	session.PrepareTimeout = prepareTimeout
	session.Dir = dir

	return composer.Config{
		MaxRecordTime: maxRecord,
		Session:       session,
		Preview: preview.Config{
			DeviceID:     cfg.OutputDeviceID,
			EndTolerance: endTolerance,
			PollInterval: tick,
		},
	}, nil
}

// Controller returns the composer controller
func (a *App) Controller() *composer.Controller { return a.controller }

// Outbox returns the send pipeline
func (a *App) Outbox() *outbox.Outbox { return a.outbox }

// Translator returns the UI translator
func (a *App) Translator() *i18n.Translator { return a.translator }

// Clipboard returns the clipboard manager
func (a *App) Clipboard() *clipboard.Manager { return a.clipboard }

// Config returns the live configuration
func (a *App) Config() *config.Config { return a.config }

// Observe registers fn for every mode change. Register before Start.
func (a *App) Observe(fn func(composer.Mode)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// OnReload registers fn to run after settings are changed through the API
func (a *App) OnReload(fn func(*config.Config) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReload = append(a.onReload, fn)
}

// Start mounts the composer
func (a *App) Start() error {
	a.log.Info("composer mounted (outbox %s)", a.outbox.Dir())
	return a.controller.Mount()
}

// Close unmounts the composer, releasing any held audio hardware
func (a *App) Close() {
	a.controller.Unmount()
	a.log.Info("composer unmounted")
}

// APIHandler builds the HTTP API over this app
func (a *App) APIHandler() *api.Handler {
	return api.New(api.Options{
		Config:            a.config,
		ConfigPath:        a.configPath,
		Composer:          a.controller,
		Outbox:            a.outbox,
		Permissions:       a.platform,
		Devices:           a.devices,
		Logger:            a.log,
		OnSettingsChanged: a.ApplySettings,
	})
}

// Devices enumerates audio devices
func (a *App) Devices() (inputs, outputs []audio.Device, err error) {
	return a.devices()
}

// ApplySettings applies the settings that can change while running.
// Device and timing changes take effect on the next start.
func (a *App) ApplySettings(cfg *config.Config) error {
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		a.log.SetLevel(level)
	}
	a.translator.SetLanguage(i18n.Language(cfg.UILanguage))

	a.mu.Lock()
	hooks := append([]func(*config.Config) error(nil), a.onReload...)
	a.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(cfg); err != nil {
			return err
		}
	}
	return nil
}

// OpenOutbox reveals the outbox directory in the file manager
func (a *App) OpenOutbox() error {
	return openPath(a.outbox.Dir())
}

// OpenMicrophoneSettings opens the system microphone privacy page
func (a *App) OpenMicrophoneSettings() error {
	opener, ok := a.platform.(interface{ OpenMicrophoneSettings() error })
	if !ok {
		return fmt.Errorf("microphone settings are not available")
	}
	return opener.OpenMicrophoneSettings()
}

func openPath(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

func (a *App) sendText(text string) {
	if _, err := a.outbox.SendText(text, a.controller.Draft().Attachments); err != nil {
		a.log.Error("failed to send message: %v", err)
	}
}

// sendAttachments records attachment-only messages; attachments sent with
// text are recorded by sendText.
func (a *App) sendAttachments() {
	draft := a.controller.Draft()
	if strings.TrimSpace(draft.Text) != "" {
		return
	}
	if _, err := a.outbox.SendText("", draft.Attachments); err != nil {
		a.log.Error("failed to send attachments: %v", err)
	}
}

func (a *App) sendAudio(artifact recording.Artifact) {
	entry, err := a.outbox.SendAudio(artifact)
	if err != nil {
		a.log.Error("failed to send voice note: %v", err)
		a.reporter.Failure(err)
		return
	}
	a.reporter.VoiceNoteSent(artifact)

	if !a.copyLoc {
		return
	}
	sent := artifact
	sent.Location = entry.Location
	if err := a.clipboard.CopyLocation(sent); err != nil {
		a.log.Warn("failed to copy voice note location: %v", err)
		return
	}
	a.reporter.LocationCopied()
}

func (a *App) discardAudio(artifact recording.Artifact) {
	if err := a.outbox.Discard(artifact); err != nil {
		a.log.Warn("%v", err)
	}
}

func (a *App) modeChanged(mode composer.Mode) {
	a.log.Debug("composer mode %s", mode.Kind)

	a.mu.Lock()
	observers := append(([]func(composer.Mode))(nil), a.observers...)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(mode)
	}
}

func (a *App) failed(err error) {
	if err := a.reporter.Failure(err); err != nil {
		a.log.Warn("failed to show notification: %v", err)
	}
}

func (a *App) maxDuration(limit time.Duration) {
	a.log.Info("recording stopped at the %v limit", limit)
	if err := a.reporter.MaxDuration(limit); err != nil {
		a.log.Warn("failed to show notification: %v", err)
	}
}
