// Package auth drives the authentication handshake with the daemon:
// detect that authentication is required, dig the auth URL out of command
// output, open a browser, and poll until the service is connected again.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/models"
	"github.com/twintray/twintray/internal/twingate"
)

// Phase is the flow's current position in its state machine.
type Phase int

// Flow phases.
const (
	PhaseIdle Phase = iota
	PhaseDetecting
	PhaseAuthenticating
	PhaseVerifying
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDetecting:
		return "detecting"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseVerifying:
		return "verifying"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// minAuthURLLength filters out fragments that cannot be a real
// authentication URL.
const minAuthURLLength = 21

// urlPatterns anchor URL extraction to the phrasing the daemon uses when
// it prints an auth link, in priority order.
var urlPatterns = []string{
	"visit:", "go to:", "open:", "navigate to:", "visit ", "go to ",
	"browse to:", "authenticate at:", "login at:",
}

// UI is what the flow needs from the tray: an immediate menu rebuild (so
// the authenticating menu appears before the browser opens) and a
// deferred one for after the daemon settles.
type UI interface {
	Rebuild()
	RebuildSoon()
}

// NetworkSource supplies the current snapshot, refreshing if stale.
type NetworkSource interface {
	CachedOrRefresh(ctx context.Context) (*models.Network, error)
}

// Opener opens a URL in the user's browser.
type Opener interface {
	OpenURL(ctx context.Context, url string) error
}

// Flow coordinates one authentication handshake at a time. The zero
// value is not usable; construct with New.
type Flow struct {
	client  *twingate.Client
	state   *appstate.State
	ui      UI
	opener  Opener
	source  NetworkSource
	timeout time.Duration

	// Tunables, overridden in tests.
	detectAttempts int
	detectDelay    time.Duration
	settleDelay    time.Duration
	resourceSettle time.Duration
	pollInterval   time.Duration

	mu    sync.Mutex
	phase Phase
}

// New builds a flow with the reference timing: 8 detection attempts
// 1500 ms apart, a 3 s settle after the browser opens, 1 s status polls,
// and the given overall timeout.
func New(client *twingate.Client, state *appstate.State, ui UI, opener Opener, source NetworkSource, timeout time.Duration) *Flow {
	return &Flow{
		client:         client,
		state:          state,
		ui:             ui,
		opener:         opener,
		source:         source,
		timeout:        timeout,
		detectAttempts: 8,
		detectDelay:    1500 * time.Millisecond,
		settleDelay:    3000 * time.Millisecond,
		resourceSettle: 500 * time.Millisecond,
		pollInterval:   1000 * time.Millisecond,
	}
}

// Phase returns the flow's current phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) setPhase(p Phase) {
	f.mu.Lock()
	f.phase = p
	f.mu.Unlock()
}

// ExtractAuthURL pulls an authentication URL out of command output,
// preferring pattern-anchored matches and falling back to any URL in the
// text. Short fragments are rejected.
func ExtractAuthURL(output string) (string, bool) {
	if url, ok := twingate.ExtractURLNear(output, urlPatterns); ok && len(url) >= minAuthURLLength {
		return url, true
	}
	if url, ok := twingate.ExtractURL(output); ok && len(url) >= minAuthURLLength {
		return url, true
	}
	return "", false
}

// EnsureServiceAuth checks whether the daemon needs service-level
// authentication and, if so, runs the full flow. Not finding a URL is not
// an error: the user can still authenticate out-of-band.
func (f *Flow) EnsureServiceAuth(ctx context.Context) error {
	sid := sessionID()

	state, statusText, err := f.client.ServiceState(ctx)
	if err != nil {
		return err
	}
	if state != twingate.StateAuthRequired {
		log.Printf("[auth %s] service does not require authentication (%s)", sid, state)
		return nil
	}

	if url, ok := ExtractAuthURL(statusText); ok {
		log.Printf("[auth %s] auth URL found in status output", sid)
		return f.run(ctx, sid, url)
	}

	log.Printf("[auth %s] authentication required, searching for auth URL", sid)
	f.setPhase(PhaseDetecting)
	url, found := f.findAuthURL(ctx, sid)
	if !found {
		f.setPhase(PhaseIdle)
		log.Printf("[auth %s] no auth URL found; user may need to run '%s auth' manually", sid, "twingate")
		return nil
	}
	return f.run(ctx, sid, url)
}

// AuthenticateResource re-authenticates a single expired resource by ID,
// then verifies the service comes back connected.
func (f *Flow) AuthenticateResource(ctx context.Context, resourceID string) error {
	sid := sessionID()

	if resourceID == "" {
		return &twingate.InvalidResourceIDError{ID: resourceID}
	}

	network, err := f.source.CachedOrRefresh(ctx)
	if err != nil {
		return err
	}
	if network == nil {
		return twingate.ErrServiceNotRunning
	}

	resource, ok := network.FindResource(resourceID)
	if !ok {
		return &twingate.ResourceNotFoundError{ID: resourceID}
	}

	log.Printf("[auth %s] authenticating resource %q", sid, resource.Name)
	if _, err := f.client.AuthResource(ctx, resource.Name); err != nil {
		f.setPhase(PhaseFailed)
		return err
	}

	if err := sleepCtx(ctx, f.resourceSettle); err != nil {
		return err
	}

	f.setPhase(PhaseVerifying)
	if err := f.waitForReady(ctx, sid); err != nil {
		f.setPhase(PhaseFailed)
		return err
	}
	f.finish(ctx, sid)
	return nil
}

// run is the Authenticating → Verifying → Done leg once a URL is known.
func (f *Flow) run(ctx context.Context, sid, url string) error {
	f.setPhase(PhaseAuthenticating)
	log.Printf("[auth %s] starting authentication flow", sid)

	// The menu must show the authenticating state (with the URL available
	// for manual copy) before the browser is even opened.
	f.state.SetAuthenticating(url)
	f.ui.Rebuild()

	f.openBrowser(ctx, sid, url)

	if err := sleepCtx(ctx, f.settleDelay); err != nil {
		return err
	}

	f.setPhase(PhaseVerifying)
	if err := f.waitForReady(ctx, sid); err != nil {
		var timeout *twingate.AuthTimeoutError
		if errors.As(err, &timeout) {
			// The user may still be completing the browser step; leave the
			// authenticating menu up and carry on.
			log.Printf("[auth %s] %v; user may still be completing authentication", sid, err)
			return nil
		}
		f.setPhase(PhaseFailed)
		return err
	}

	f.finish(ctx, sid)
	return nil
}

// finish clears the authenticating marker, requests a rebuild, and runs
// the secondary confirmation fetch. Confirmation failure is logged but
// does not revert the Done outcome.
func (f *Flow) finish(ctx context.Context, sid string) {
	f.setPhase(PhaseDone)
	log.Printf("[auth %s] service connected", sid)

	f.state.UpdateNetwork(nil)
	f.ui.RebuildSoon()

	if network, err := f.source.CachedOrRefresh(ctx); err != nil {
		log.Printf("[auth %s] post-auth snapshot fetch failed: %v", sid, err)
	} else if network != nil {
		log.Printf("[auth %s] confirmed %d resources for %s", sid, len(network.Resources), network.User.Email)
	}
}

// findAuthURL polls several command outputs for an auth URL: status, the
// daemon's own resource listing, and the auth command itself, scanning
// combined stdout+stderr of each.
func (f *Flow) findAuthURL(ctx context.Context, sid string) (string, bool) {
	for attempt := 1; attempt <= f.detectAttempts; attempt++ {
		log.Printf("[auth %s] auth URL detection attempt %d of %d", sid, attempt, f.detectAttempts)

		outputs := []func(context.Context) (twingate.Output, error){
			f.client.Status,
			f.client.ResourcesList,
			f.client.Auth,
		}
		for _, cmd := range outputs {
			out, err := cmd(ctx)
			if err != nil {
				continue
			}
			if url, ok := ExtractAuthURL(out.Combined()); ok {
				return url, true
			}
		}

		if attempt < f.detectAttempts {
			if err := sleepCtx(ctx, f.detectDelay); err != nil {
				return "", false
			}
		}
	}
	return "", false
}

// waitForReady polls the service state until connected or the overall
// timeout elapses. The timeout is wall-clock from the first poll and is
// not reset by intermediate progress.
func (f *Flow) waitForReady(ctx context.Context, sid string) error {
	deadline := time.Now().Add(f.timeout)
	for {
		state, _, err := f.client.ServiceState(ctx)
		if err != nil {
			log.Printf("[auth %s] status check failed while waiting: %v", sid, err)
		} else if state == twingate.StateConnected {
			return nil
		}

		if time.Now().After(deadline) {
			return &twingate.AuthTimeoutError{Seconds: int(f.timeout.Seconds())}
		}
		if err := sleepCtx(ctx, f.pollInterval); err != nil {
			return err
		}
	}
}

// openBrowser tries the configured opener (xdg-open on Linux), then the
// GLib opener as a second mechanism, and finally gives up without
// failing the flow: the URL stays in the menu for manual copy.
func (f *Flow) openBrowser(ctx context.Context, sid, url string) {
	if err := f.opener.OpenURL(ctx, url); err == nil {
		log.Printf("[auth %s] opened auth URL in browser", sid)
		return
	} else {
		log.Printf("[auth %s] browser open failed: %v, trying gio", sid, err)
	}

	out, err := f.client.Runner().Run(ctx, "gio", "open", url)
	if err != nil || !out.Success() {
		log.Printf("[auth %s] gio open failed too (err=%v, exit=%d)", sid, err, out.ExitCode)
		log.Printf("[auth %s] auth URL remains available in the tray menu", sid)
	}
}

func sessionID() string {
	return uuid.NewString()[:8]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
