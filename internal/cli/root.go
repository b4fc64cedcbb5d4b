// Package cli holds the voicenote commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/api"
	"github.com/yok-tottii/voicenote/internal/app"
	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/permissions"
)

// Version is set at build time
var Version = "dev"

// Dependencies are resolved once per invocation by the root command
type Dependencies struct {
	ConfigPath string
	LogLevel   string
	LogStderr  bool

	Config *config.Config
	Logger *logger.Logger

	// NewApp builds the application; tests replace it
	NewApp func(opts app.Options) (*app.App, error)
	// ListDevices enumerates audio hardware
	ListDevices func() (inputs, outputs []audio.Device, err error)
	// Permissions reports the microphone authorization
	Permissions api.PermissionChecker

	Stdout io.Writer
	Stderr io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps.NewApp == nil {
		deps.NewApp = app.New
	}
	if deps.ListDevices == nil {
		deps.ListDevices = audio.ListAllDevices
	}
	if deps.Permissions == nil {
		deps.Permissions = permissions.NewPermissionChecker()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	rootCmd := &cobra.Command{
		Use:           "voicenote",
		Short:         "Record, preview and send voice notes",
		Long:          "A message composer that records voice notes, lets you listen before sending, and drops sent notes in a local outbox.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			deps.Logger.Close()
		},
	}

	rootCmd.Version = Version
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&deps.ConfigPath, "config", config.GetConfigPath(), "config file (.toml or .json)")
	flags.StringVar(&deps.LogLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&deps.LogStderr, "log-stderr", false, "log to stderr instead of the log file")

	rootCmd.AddCommand(NewComposeCmd(deps))
	rootCmd.AddCommand(NewTrayCmd(deps))
	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewDevicesCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewOutboxCmd(deps))
	rootCmd.AddCommand(NewConfigCmd(deps))

	return rootCmd
}

func (d *Dependencies) load() error {
	cfg, err := config.Load(d.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if d.LogLevel != "" {
		cfg.LogLevel = d.LogLevel
	}
	d.Config = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	if d.LogStderr {
		d.Logger = logger.NewWriter(d.Stderr, level)
		return nil
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = level
	d.Logger, err = logger.New(logConfig)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

// newApp builds the app from the loaded settings; opts supplies the
// surface-specific parts
func (d *Dependencies) newApp(opts app.Options) (*app.App, error) {
	opts.Config = d.Config
	opts.ConfigPath = d.ConfigPath
	opts.Logger = d.Logger
	if opts.Devices == nil {
		opts.Devices = d.ListDevices
	}

	a, err := d.NewApp(opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}
