// Package app wires the daemon client, shared state, auth flow, and tray
// together and exposes the actions behind menu clicks and CLI commands.
package app

import (
	"context"
	"errors"
	"log"
	"os/exec"
	"runtime"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/auth"
	"github.com/twintray/twintray/internal/models"
	"github.com/twintray/twintray/internal/notify"
	"github.com/twintray/twintray/internal/retry"
	"github.com/twintray/twintray/internal/twingate"
)

// App is the application controller. One instance lives for the process
// lifetime; the tray and CLI act through it.
type App struct {
	Settings *models.Settings
	State    *appstate.State
	Client   *twingate.Client
	Flow     *auth.Flow
	Notifier *notify.Notifier

	rebuildMu   sync.Mutex
	rebuildHook func()

	// baseCtx bounds background goroutines that are not tied to a single
	// call (RebuildSoon). Canceled when the tray exits.
	baseCtx context.Context
}

// New builds the controller from settings.
func New(settings *models.Settings) *App {
	runner := twingate.NewExecRunner(settings.ElevateBinary)
	policy := retry.DefaultPolicy().WithRetries(settings.FetchMaxRetries)
	client := twingate.NewClient(runner, settings.DaemonBinary, settings.NotifierBinary, policy)

	a := &App{
		Settings: settings,
		State:    appstate.New(),
		Client:   client,
		Notifier: notify.New(settings.Notifications),
		baseCtx:  context.Background(),
	}
	a.Flow = auth.New(client, a.State, a, a, a, settings.AuthTimeout())
	return a
}

// SetRebuildHook installs the tray's menu rebuild callback.
func (a *App) SetRebuildHook(fn func()) {
	a.rebuildMu.Lock()
	a.rebuildHook = fn
	a.rebuildMu.Unlock()
}

// SetBaseContext bounds the app's detached background goroutines.
// Call before any action that can trigger RebuildSoon.
func (a *App) SetBaseContext(ctx context.Context) {
	a.baseCtx = ctx
}

// Rebuild asks the tray to re-render the menu from current state.
// Implements auth.UI.
func (a *App) Rebuild() {
	a.rebuildMu.Lock()
	fn := a.rebuildHook
	a.rebuildMu.Unlock()
	if fn != nil {
		fn()
	}
}

// OpenURL opens a URL with the platform's default browser command.
// Implements auth.Opener.
func (a *App) OpenURL(ctx context.Context, url string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	cmd := exec.CommandContext(ctx, opener, url)
	if err := cmd.Run(); err != nil {
		return &twingate.CommandError{Command: opener, Err: err}
	}
	return nil
}

// CachedOrRefresh returns the cached snapshot when fresh, fetching a new
// one otherwise. Implements auth.NetworkSource.
func (a *App) CachedOrRefresh(ctx context.Context) (*models.Network, error) {
	if !a.State.ShouldRefresh(a.Settings.RefreshInterval()) {
		return a.State.Network(), nil
	}
	return a.Refresh(ctx)
}

// Refresh fetches a fresh snapshot and folds it into state, emitting
// desktop notifications on status edges.
func (a *App) Refresh(ctx context.Context) (*models.Network, error) {
	if !a.State.SetRefreshing(true) {
		// Another refresh is in flight; report what we have.
		return a.State.Network(), nil
	}
	defer a.State.SetRefreshing(false)

	before := a.State.Status().Kind

	network, err := a.Client.FetchNetwork(ctx, a.Settings.FetchMaxRetries)
	if err != nil {
		if errors.Is(err, twingate.ErrAuthRequired) {
			if before != appstate.StatusAuthenticating {
				a.Notifier.AuthRequired()
			}
			return nil, err
		}
		log.Printf("[app] refresh failed: %v", err)
		return nil, err
	}

	// Do not clobber an in-flight auth flow's menu with a not-running
	// state; the flow clears the marker itself.
	if network == nil && before == appstate.StatusAuthenticating {
		return nil, nil
	}

	a.State.UpdateNetwork(network)

	after := a.State.Status().Kind
	if after == appstate.StatusConnected && before != appstate.StatusConnected {
		a.Notifier.Connected(network.User.Email)
	}
	if after == appstate.StatusNotRunning && before == appstate.StatusConnected {
		a.Notifier.Disconnected()
	}
	return network, nil
}

// NetworkOrError returns the current snapshot or ErrServiceNotRunning.
func (a *App) NetworkOrError(ctx context.Context) (*models.Network, error) {
	network, err := a.CachedOrRefresh(ctx)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, twingate.ErrServiceNotRunning
	}
	return network, nil
}

// StartService starts the daemon and kicks the auth flow, since a fresh
// daemon usually comes up wanting authentication.
func (a *App) StartService(ctx context.Context) error {
	log.Printf("[app] starting twingate service")
	if _, err := a.Client.Start(ctx); err != nil {
		return err
	}
	a.RebuildSoon()
	go func() {
		if err := a.Flow.EnsureServiceAuth(ctx); err != nil {
			log.Printf("[app] post-start auth flow: %v", err)
		}
	}()
	return nil
}

// StopService stops the daemon.
func (a *App) StopService(ctx context.Context) error {
	log.Printf("[app] stopping twingate service")
	if _, err := a.Client.Stop(ctx); err != nil {
		return err
	}
	a.RebuildSoon()
	return nil
}

// CopyAddress copies a resource's display address to the clipboard.
func (a *App) CopyAddress(ctx context.Context, resourceID string) error {
	network, err := a.NetworkOrError(ctx)
	if err != nil {
		return err
	}
	resource, ok := network.FindResource(resourceID)
	if !ok {
		return &twingate.ResourceNotFoundError{ID: resourceID}
	}
	address := resource.DisplayAddress()
	if err := clipboard.WriteAll(address); err != nil {
		return err
	}
	log.Printf("[app] copied address %s", address)
	return nil
}

// OpenResource opens a browsable resource in the default browser.
func (a *App) OpenResource(ctx context.Context, resourceID string) error {
	network, err := a.NetworkOrError(ctx)
	if err != nil {
		return err
	}
	resource, ok := network.FindResource(resourceID)
	if !ok {
		return &twingate.ResourceNotFoundError{ID: resourceID}
	}
	url := resource.BrowserURL()
	if url == "" {
		return &twingate.ResourceNotFoundError{ID: resourceID + " (not browsable)"}
	}
	return a.OpenURL(ctx, url)
}

// OpenAuthURL re-opens the pending authentication URL.
func (a *App) OpenAuthURL(ctx context.Context) error {
	url, ok := a.State.AuthURL()
	if !ok {
		return errors.New("no authentication in progress")
	}
	return a.OpenURL(ctx, url)
}

// CopyAuthURL copies the pending authentication URL to the clipboard.
func (a *App) CopyAuthURL() error {
	url, ok := a.State.AuthURL()
	if !ok {
		return errors.New("no authentication in progress")
	}
	return clipboard.WriteAll(url)
}
