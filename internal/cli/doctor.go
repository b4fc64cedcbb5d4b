package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/api"
	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/hotkey"
	"github.com/yok-tottii/voicenote/internal/permissions"
)

// Check is one doctor finding
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check microphone access, devices and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := RunChecks(deps)

			t := newTable("Check", "Status", "Detail")
			failed := 0
			for _, c := range checks {
				status := "ok"
				if !c.OK {
					status = "FAIL"
					failed++
				}
				t.Row(c.Name, status, c.Detail)
			}
			fmt.Fprintln(deps.Stdout, t.String())

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

// RunChecks inspects the environment a composer needs
func RunChecks(deps *Dependencies) []Check {
	cfg := deps.Config.Clone()

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return []Check{
		checkConfig(deps.ConfigPath, cfg),
		checkMicrophone(deps.Permissions),
		checkInputDevice(deps.ListDevices, cfg.InputDeviceID),
		checkDir("temp dir", tempDir),
		checkDir("outbox", cfg.OutboxDir),
		checkHotkey(cfg),
	}
}

func checkConfig(path string, cfg *config.Config) Check {
	c := Check{Name: "config", Detail: path}
	if err := cfg.Validate(); err != nil {
		c.Detail = err.Error()
		return c
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.Detail = path + " (not created yet, using defaults)"
	}
	c.OK = true
	return c
}

func checkMicrophone(checker api.PermissionChecker) Check {
	status := checker.CheckMicrophonePermission()
	return Check{
		Name: "microphone",
		// NotDetermined is answered by the prompt on the first take
		OK:     permissions.DecisionFor(status) != permissions.Denied,
		Detail: permissions.GetPermissionStatusMessage(status),
	}
}

func checkInputDevice(list func() ([]audio.Device, []audio.Device, error), selected int) Check {
	c := Check{Name: "input device"}

	inputs, _, err := list()
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	if len(inputs) == 0 {
		c.Detail = "no input devices found"
		return c
	}

	for _, d := range inputs {
		if d.ID == selected || (selected == audio.DefaultDevice && d.IsDefault) {
			c.OK = true
			c.Detail = d.Name
			return c
		}
	}
	if selected == audio.DefaultDevice {
		c.OK = true
		c.Detail = "system default"
		return c
	}
	c.Detail = "configured device " + strconv.Itoa(selected) + " not found"
	return c
}

// checkDir creates dir if needed and verifies it is writable
func checkDir(name, dir string) Check {
	c := Check{Name: name}

	path, err := config.ExpandPath(dir)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.Detail = path

	if err := os.MkdirAll(path, 0755); err != nil {
		c.Detail = err.Error()
		return c
	}
	probe, err := os.CreateTemp(path, ".doctor-*")
	if err != nil {
		c.Detail = fmt.Sprintf("%s is not writable: %v", path, err)
		return c
	}
	probe.Close()
	os.Remove(probe.Name())

	c.OK = true
	return c
}

func checkHotkey(cfg *config.Config) Check {
	c := Check{Name: "hotkey"}

	hk, err := hotkey.ConfigFrom(cfg.Hotkey, cfg.RecordingMode)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.Detail = hk.String()

	if conflicts := hk.Conflicts(); len(conflicts) > 0 {
		c.Detail += " conflicts with " + conflicts[0].Name
		return c
	}
	c.OK = true
	return c
}
