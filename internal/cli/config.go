package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/config"
)

// NewConfigCmd creates the config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the settings file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings, environment overrides included",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(deps.Stdout).Encode(deps.Config.Clone())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(deps.Stdout, deps.ConfigPath)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(deps.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", deps.ConfigPath)
			}
			if err := config.DefaultConfig().Save(deps.ConfigPath); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Wrote %s\n", deps.ConfigPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
