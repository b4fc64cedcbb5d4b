package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yok-tottii/voicenote/internal/app"
	"github.com/yok-tottii/voicenote/internal/notification"
	"github.com/yok-tottii/voicenote/internal/server"
	"github.com/yok-tottii/voicenote/internal/tui"
)

// NewComposeCmd creates the compose command
func NewComposeCmd(deps *Dependencies) *cobra.Command {
	var (
		serve        bool
		copyLocation bool
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Open the terminal composer",
		Long: `Open the terminal composer.

With an empty draft, enter starts recording a voice note and enter again
stops it. The take can then be played (space), sent (enter) or discarded (d).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd.Context(), deps, serve, copyLocation)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "also serve the HTTP composer API")
	cmd.Flags().BoolVar(&copyLocation, "copy-location", false, "copy the path of each sent voice note to the clipboard")

	return cmd
}

// forwarder hands notifications to the terminal UI once it exists
type forwarder struct {
	ui *tui.UI
}

func (f *forwarder) Send(n *notification.Notification) error {
	if f.ui == nil {
		return nil
	}
	return f.ui.Send(n)
}

func runCompose(ctx context.Context, deps *Dependencies, serve, copyLocation bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fwd := &forwarder{}
	a, err := deps.newApp(app.Options{
		Notifier:     fwd,
		CopyLocation: copyLocation,
	})
	if err != nil {
		return err
	}

	ui := tui.New(a.Controller(), a.Translator(), a.Clipboard())
	fwd.ui = ui
	a.Observe(ui.ModeChanged)

	if err := a.Start(); err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if serve {
		srv := newAPIServer(deps, a)
		g.Go(func() error {
			return srv.Serve(ctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return ui.Run()
	})
	g.Go(func() error {
		<-ctx.Done()
		ui.Quit()
		return nil
	})

	return g.Wait()
}

// newAPIServer mounts the app's HTTP API on the configured loopback port
func newAPIServer(deps *Dependencies, a *app.App) *server.Server {
	return newAPIServerOn(a.Config().Clone().ServerPort, deps, a)
}

func newAPIServerOn(port int, deps *Dependencies, a *app.App) *server.Server {
	config := server.DefaultConfig()
	config.Port = port

	srv := server.New(config, deps.Logger)
	a.APIHandler().RegisterRoutes(srv.Router())
	return srv
}
