package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/app"
	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/config"
	"github.com/twintray/twintray/internal/models"
	"github.com/twintray/twintray/internal/tray"
)

// runTray is the root command's action: run the system tray until quit.
func runTray(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	a := app.New(settings)
	ctx, cancel := context.WithCancel(context.Background())

	a.SetBaseContext(ctx)
	a.SetRebuildHook(tray.Refresh)

	ctl := &trayController{app: a, ctx: ctx}

	onStart := func() {
		go a.Startup(ctx)
		go a.RunBackground(ctx)

		// Quit the tray on SIGINT/SIGTERM so onExit cleanup runs.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("received signal %v, shutting down", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		// Cancel in-flight fetches and auth flows; a newer run should
		// never find a stale flow still polling.
		cancel()
	}

	// This blocks the main goroutine until the tray exits.
	tray.Run(ctl, onStart, onExit)
	return nil
}

// trayController adapts App to the tray's Controller interface. Actions
// run in goroutines so the systray event loop is never blocked, and
// failures degrade to a log line rather than a crash.
type trayController struct {
	app *app.App
	ctx context.Context
}

func (t *trayController) Status() appstate.ServiceStatus {
	return t.app.State.Status()
}

func (t *trayController) CachedNetwork() *models.Network {
	return t.app.State.Network()
}

func (t *trayController) StartService() {
	go func() {
		if err := t.app.StartService(t.ctx); err != nil {
			log.Printf("start service: %v", err)
		}
	}()
}

func (t *trayController) StopService() {
	go func() {
		if err := t.app.StopService(t.ctx); err != nil {
			log.Printf("stop service: %v", err)
		}
	}()
}

func (t *trayController) CopyAddress(resourceID string) {
	go func() {
		if err := t.app.CopyAddress(t.ctx, resourceID); err != nil {
			log.Printf("copy address for %s: %v", resourceID, err)
		}
	}()
}

func (t *trayController) OpenResource(resourceID string) {
	go func() {
		if err := t.app.OpenResource(t.ctx, resourceID); err != nil {
			log.Printf("open resource %s: %v", resourceID, err)
		}
	}()
}

func (t *trayController) AuthenticateResource(resourceID string) {
	go func() {
		if err := t.app.Flow.AuthenticateResource(t.ctx, resourceID); err != nil {
			log.Printf("authenticate resource %s: %v", resourceID, err)
		}
		t.app.Rebuild()
	}()
}

func (t *trayController) OpenAuthURL() {
	go func() {
		if err := t.app.OpenAuthURL(t.ctx); err != nil {
			log.Printf("open auth url: %v", err)
		}
	}()
}

func (t *trayController) CopyAuthURL() {
	go func() {
		if err := t.app.CopyAuthURL(); err != nil {
			log.Printf("copy auth url: %v", err)
		}
	}()
}

func (t *trayController) Quit() {
	tray.Quit()
}
