package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/app"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/hotkey"
	"github.com/yok-tottii/voicenote/internal/server"
	"github.com/yok-tottii/voicenote/internal/tray"
)

// NewTrayCmd creates the tray command
func NewTrayCmd(deps *Dependencies) *cobra.Command {
	var (
		noHotkey bool
		noServer bool
	)

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Run the menu-bar composer",
		Long: `Run the menu-bar composer with a global push-to-talk hotkey.

Hold the hotkey to record (or press it twice in toggle mode), then use the
menu to play, send or discard the take. A press while previewing sends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.newApp(app.Options{CopyLocation: true})
			if err != nil {
				return err
			}
			t := &trayApp{
				deps:      deps,
				app:       a,
				useHotkey: !noHotkey,
				useServer: !noServer,
			}
			return t.run()
		},
	}

	cmd.Flags().BoolVar(&noHotkey, "no-hotkey", false, "do not register the global hotkey")
	cmd.Flags().BoolVar(&noServer, "no-server", false, "do not serve the HTTP composer API")

	return cmd
}

type trayApp struct {
	deps      *Dependencies
	app       *app.App
	useHotkey bool
	useServer bool

	tray    *tray.Manager
	hotkeys *hotkey.Manager
	server  *server.Server

	hotkeyMu sync.Mutex
	quitOnce sync.Once
}

func (t *trayApp) run() error {
	t.tray = tray.NewManager(tray.Config{
		AppName:        app.Name,
		Composer:       t.app.Controller(),
		Translator:     t.app.Translator(),
		Logger:         t.deps.Logger,
		OnReady:        t.onReady,
		OnOpenOutbox:   t.openOutbox,
		OnMicSettings:  t.openMicSettings,
		OnDeviceChange: t.selectDevice,
		OnQuit:         t.shutdown,
	})
	t.app.Observe(t.tray.ModeChanged)
	if t.useHotkey {
		t.app.OnReload(t.reloadHotkey)
	}

	if err := t.app.Start(); err != nil {
		return err
	}
	defer t.shutdown()

	// Blocks until the menu's Quit or a signal
	t.tray.Run()
	return nil
}

func (t *trayApp) onReady() {
	log := t.deps.Logger
	cfg := t.app.Config().Clone()

	if inputs, _, err := t.app.Devices(); err != nil {
		log.Warn("failed to list input devices: %v", err)
	} else {
		t.tray.UpdateDeviceMenu(inputs, cfg.InputDeviceID)
	}

	if t.useHotkey {
		t.hotkeys = hotkey.New(log)
		if err := t.reloadHotkey(cfg); err != nil {
			log.Error("failed to register hotkey: %v", err)
			t.warn("hotkey unavailable: %v", err)
		}
	}

	if t.useServer {
		t.server = newAPIServer(t.deps, t.app)
		if err := t.server.Start(); err != nil {
			log.Error("failed to start HTTP server: %v", err)
			t.warn("HTTP API unavailable: %v", err)
			t.server = nil
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		t.shutdown()
		t.tray.Quit()
	}()

	t.banner()
}

func (t *trayApp) banner() {
	out := t.deps.Stdout
	fmt.Fprintf(out, "%s is running in the menu bar\n", app.Name)
	if t.server != nil {
		fmt.Fprintf(out, "  API:    %s/api/composer\n", t.server.URL())
	}
	if t.hotkeys != nil && t.hotkeys.IsRunning() {
		fmt.Fprintf(out, "  Hotkey: %s\n", t.hotkeys.GetConfig())
	}
	fmt.Fprintf(out, "  Outbox: %s\n", t.app.Outbox().Dir())
	fmt.Fprintln(out, "  Quit:   Ctrl+C or the menu")
}

func (t *trayApp) warn(format string, args ...interface{}) {
	fmt.Fprintf(t.deps.Stderr, format+"\n", args...)
}

// reloadHotkey registers the hotkey from cfg, restoring the previous
// binding when the new one cannot be registered
func (t *trayApp) reloadHotkey(cfg *config.Config) error {
	t.hotkeyMu.Lock()
	defer t.hotkeyMu.Unlock()

	if t.hotkeys == nil {
		return nil
	}

	next, err := hotkey.ConfigFrom(cfg.Hotkey, cfg.RecordingMode)
	if err != nil {
		return err
	}

	wasRunning := t.hotkeys.IsRunning()
	previous := t.hotkeys.GetConfig()
	if wasRunning {
		if err := t.hotkeys.Close(); err != nil {
			return fmt.Errorf("failed to unregister old hotkey: %w", err)
		}
	}

	if err := t.hotkeys.Register(next); err != nil {
		if !wasRunning {
			return err
		}
		t.deps.Logger.Warn("restoring previous hotkey")
		if rollbackErr := t.hotkeys.Register(previous); rollbackErr != nil {
			return fmt.Errorf("failed to register new hotkey and rollback failed: %w, rollback error: %v", err, rollbackErr)
		}
		go hotkey.Forward(t.hotkeys.Events(), t.app.Controller())
		return fmt.Errorf("failed to register new hotkey: %w", err)
	}

	go hotkey.Forward(t.hotkeys.Events(), t.app.Controller())
	return nil
}

func (t *trayApp) openOutbox() {
	if err := t.app.OpenOutbox(); err != nil {
		t.deps.Logger.Error("failed to open outbox: %v", err)
	}
}

func (t *trayApp) openMicSettings() {
	if err := t.app.OpenMicrophoneSettings(); err != nil {
		t.deps.Logger.Error("failed to open microphone settings: %v", err)
	}
}

// selectDevice saves the chosen input device. It is used from the next take.
func (t *trayApp) selectDevice(id int) {
	cfg := t.app.Config()
	if err := cfg.Update(map[string]interface{}{"input_device_id": float64(id)}); err != nil {
		t.deps.Logger.Error("failed to select device %d: %v", id, err)
		return
	}
	if err := cfg.Save(t.deps.ConfigPath); err != nil {
		t.deps.Logger.Error("failed to save config: %v", err)
	}
	t.deps.Logger.Info("input device set to %d (applies after restart)", id)

	if inputs, _, err := t.app.Devices(); err == nil {
		t.tray.UpdateDeviceMenu(inputs, id)
	}
}

func (t *trayApp) shutdown() {
	t.quitOnce.Do(func() {
		t.deps.Logger.Info("shutting down")

		if t.server != nil && t.server.IsRunning() {
			if err := t.server.Stop(); err != nil {
				t.deps.Logger.Error("failed to stop HTTP server: %v", err)
			}
		}

		t.hotkeyMu.Lock()
		if t.hotkeys != nil {
			t.hotkeys.Close()
		}
		t.hotkeyMu.Unlock()

		t.app.Close()
	})
}
