package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/outbox"
)

// NewOutboxCmd creates the outbox command
func NewOutboxCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect sent messages and voice notes",
	}

	cmd.AddCommand(newOutboxListCmd(deps))
	cmd.AddCommand(newOutboxPathCmd(deps))

	return cmd
}

func openOutbox(deps *Dependencies) (*outbox.Outbox, error) {
	dir, err := config.ExpandPath(deps.Config.Clone().OutboxDir)
	if err != nil {
		return nil, err
	}
	return outbox.Open(dir, deps.Logger)
}

func newOutboxListCmd(deps *Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sent messages, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := openOutbox(deps)
			if err != nil {
				return err
			}
			entries, err := box.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(deps.Stdout, "Outbox is empty")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			t := newTable("Sent", "Kind", "Content")
			for _, e := range entries {
				t.Row(e.SentAt.Local().Format("2006-01-02 15:04:05"), string(e.Kind), describeEntry(e))
			}
			fmt.Fprintln(deps.Stdout, t.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n entries")

	return cmd
}

func newOutboxPathCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the outbox directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := openOutbox(deps)
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, box.Dir())
			return nil
		},
	}
}

// describeEntry summarizes an entry in one table cell
func describeEntry(e outbox.Entry) string {
	switch e.Kind {
	case outbox.KindAudio:
		return strconv.Itoa(e.DurationSeconds) + "s  " + e.Location
	}

	text := e.Text
	if len([]rune(text)) > 48 {
		text = string([]rune(text)[:47]) + "…"
	}
	if e.Attachments > 0 {
		if text != "" {
			text += "  "
		}
		text += "+" + strconv.Itoa(e.Attachments) + " attachment(s)"
	}
	return text
}
