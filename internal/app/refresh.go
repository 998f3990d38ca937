package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/twintray/twintray/internal/twingate"
	"github.com/twintray/twintray/internal/watcher"
)

const maxRebuildRetries = 3

// Vars so tests can shrink the schedule.
var (
	rebuildInitialDelay = 2000 * time.Millisecond
	rebuildRetryDelay   = 3000 * time.Millisecond
)

// RebuildSoon refreshes the snapshot in the background and then rebuilds
// the menu, retrying a few times while the daemon is transitional (right
// after start/stop/auth the status flaps for a couple of seconds, which
// the fetcher reports by exhausting its retry budget). Implements
// auth.UI. The goroutine stops when the app's base context is canceled.
func (a *App) RebuildSoon() {
	go func() {
		ctx := a.baseCtx
		if err := sleepCtx(ctx, rebuildInitialDelay); err != nil {
			return
		}

		for attempt := 0; ; attempt++ {
			_, err := a.Refresh(ctx)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}

			var limitErr *twingate.RetryLimitError
			switch {
			case errors.As(err, &limitErr), errors.Is(err, twingate.ErrAuthRequired):
				if attempt >= maxRebuildRetries {
					log.Printf("[app] gave up refreshing after %d rebuild attempts", attempt+1)
					break
				}
				if sleepCtx(ctx, rebuildRetryDelay) != nil {
					return
				}
				continue
			default:
				log.Printf("[app] refresh failed during rebuild: %v", err)
			}
			break
		}

		a.Rebuild()
	}()
}

// Startup performs the initial fetch and, when the daemon is waiting on
// authentication, starts the auth flow.
func (a *App) Startup(ctx context.Context) {
	network, err := a.Refresh(ctx)
	switch {
	case errors.Is(err, twingate.ErrAuthRequired):
		log.Printf("[app] authentication required at startup")
		go func() {
			if err := a.Flow.EnsureServiceAuth(ctx); err != nil {
				log.Printf("[app] startup auth flow: %v", err)
			}
		}()
	case err != nil:
		log.Printf("[app] startup fetch failed, showing disconnected menu: %v", err)
	case network == nil:
		log.Printf("[app] twingate service is not running")
	default:
		log.Printf("[app] connected as %s with %d resources", network.User.Email, len(network.Resources))
	}
}

// RunBackground drives the periodic refresh and the run-dir watcher
// until ctx is canceled. The ticker only refreshes when the snapshot has
// gone stale; watcher events refresh immediately.
func (a *App) RunBackground(ctx context.Context) {
	w, err := watcher.New(a.Settings.RunDir)
	if err != nil {
		log.Printf("[app] run-dir watcher unavailable: %v", err)
	} else {
		if err := w.Start(); err != nil {
			log.Printf("[app] run-dir watcher failed to start: %v", err)
		}
		defer w.Stop()
	}

	ticker := time.NewTicker(a.Settings.RefreshInterval())
	defer ticker.Stop()

	var events <-chan watcher.Event
	if w != nil {
		events = w.Events()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.State.ShouldRefresh(a.Settings.RefreshInterval()) {
				a.refreshAndRebuild(ctx)
			}
		case ev := <-events:
			log.Printf("[app] daemon run dir changed (%v), refreshing", ev.Type)
			a.refreshAndRebuild(ctx)
		}
	}
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

func (a *App) refreshAndRebuild(ctx context.Context) {
	if _, err := a.Refresh(ctx); err != nil {
		if errors.Is(err, twingate.ErrAuthRequired) {
			go func() {
				if err := a.Flow.EnsureServiceAuth(ctx); err != nil {
					log.Printf("[app] background auth flow: %v", err)
				}
			}()
		}
	}
	a.Rebuild()
}
