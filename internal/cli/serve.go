package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/voicenote/internal/app"
	"github.com/yok-tottii/voicenote/internal/notification"
)

// NewServeCmd creates the serve command
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the composer over a loopback HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, deps, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", -1, "port to listen on, overriding server_port (0 picks a free port)")

	return cmd
}

func runServe(cmd *cobra.Command, deps *Dependencies, port int) error {
	a, err := deps.newApp(app.Options{
		Notifier: notification.NewWriterNotifier(deps.Stderr),
	})
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port < 0 {
		port = a.Config().Clone().ServerPort
	}
	srv := newAPIServerOn(port, deps, a)
	if err := srv.Start(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Composer API: %s/api/composer\n", srv.URL())
	fmt.Fprintln(deps.Stdout, "Press Ctrl+C to stop")

	<-ctx.Done()
	deps.Logger.Info("shutting down")
	return srv.Stop()
}
