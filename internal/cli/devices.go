package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/audio"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NewDevicesCmd creates the devices command
func NewDevicesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input and output devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, outputs, err := deps.ListDevices()
			if err != nil {
				return fmt.Errorf("listing devices: %w", err)
			}

			cfg := deps.Config.Clone()
			fmt.Fprintln(deps.Stdout, "Input devices")
			fmt.Fprintln(deps.Stdout, deviceTable(inputs, cfg.InputDeviceID))
			fmt.Fprintln(deps.Stdout, "Output devices")
			fmt.Fprintln(deps.Stdout, deviceTable(outputs, cfg.OutputDeviceID))
			return nil
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// deviceTable renders devices, marking the system default and the
// configured selection
func deviceTable(devices []audio.Device, selected int) string {
	t := newTable("ID", "Name", "Default", "Selected")
	for _, d := range devices {
		t.Row(
			strconv.Itoa(d.ID),
			d.Name,
			mark(d.IsDefault),
			mark(d.ID == selected || (selected == audio.DefaultDevice && d.IsDefault)),
		)
	}
	return t.String()
}

func mark(on bool) string {
	if on {
		return "*"
	}
	return ""
}
