package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/models"
	"github.com/twintray/twintray/internal/notify"
	"github.com/twintray/twintray/internal/retry"
	"github.com/twintray/twintray/internal/twingate"
)

const appTestSnapshot = `{
	"resources": [{"id": "r-1", "name": "intranet", "address": "intranet.internal", "client_visibility": 1}],
	"user": {"id": "u-1", "email": "dev@example.com"}
}`

// scriptedRunner scripts command output by command name and records calls.
type scriptedRunner struct {
	mu      sync.Mutex
	calls   []string
	handler func(call string, n int) (twingate.Output, error)
}

func (s *scriptedRunner) Run(ctx context.Context, name string, args ...string) (twingate.Output, error) {
	call := strings.TrimSpace(name + " " + strings.Join(args, " "))
	s.mu.Lock()
	s.calls = append(s.calls, call)
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	s.mu.Unlock()
	return s.handler(call, n)
}

func (s *scriptedRunner) RunElevated(ctx context.Context, name string, args ...string) (twingate.Output, error) {
	return s.Run(ctx, "pkexec "+name, args...)
}

func (s *scriptedRunner) callCount(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// newTestApp builds an app around a scripted runner with a zero-retry
// fetch budget, so each Refresh makes exactly one status attempt.
func newTestApp(runner *scriptedRunner) *App {
	settings := models.NewSettings()
	settings.FetchMaxRetries = 0
	settings.Notifications = false

	policy := retry.Policy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxRetries: 0}
	return &App{
		Settings: settings,
		State:    appstate.New(),
		Client:   twingate.NewClient(runner, "twingate", "twingate-notifier", policy),
		Notifier: notify.New(false),
		baseCtx:  context.Background(),
	}
}

func shrinkRebuildDelays(t *testing.T) {
	t.Helper()
	initial, retryDelay := rebuildInitialDelay, rebuildRetryDelay
	rebuildInitialDelay = time.Millisecond
	rebuildRetryDelay = time.Millisecond
	t.Cleanup(func() {
		rebuildInitialDelay = initial
		rebuildRetryDelay = retryDelay
	})
}

func waitForRebuild(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("menu rebuild never happened")
	}
}

func TestRebuildSoonRetriesThroughTransitionalStates(t *testing.T) {
	shrinkRebuildDelays(t)

	// A zero-retry budget turns each transitional status into a
	// RetryLimitError, which the rebuild loop must treat as "try again".
	runner := &scriptedRunner{handler: func(call string, n int) (twingate.Output, error) {
		switch call {
		case "twingate status":
			if n <= 2 {
				return twingate.Output{Stdout: "starting"}, nil
			}
			return twingate.Output{Stdout: "online"}, nil
		case "twingate-notifier resources":
			return twingate.Output{Stdout: appTestSnapshot}, nil
		}
		return twingate.Output{}, nil
	}}

	a := newTestApp(runner)
	done := make(chan struct{})
	a.SetRebuildHook(func() { close(done) })

	a.RebuildSoon()
	waitForRebuild(t, done)

	if got := a.State.Status().Kind; got != appstate.StatusConnected {
		t.Errorf("status after rebuild = %v, want StatusConnected", got)
	}
	if got := runner.callCount("twingate status"); got != 3 {
		t.Errorf("status called %d times, want 3 (two transitional, one connected)", got)
	}
}

func TestRebuildSoonGivesUpAfterRetryCap(t *testing.T) {
	shrinkRebuildDelays(t)

	runner := &scriptedRunner{handler: func(call string, n int) (twingate.Output, error) {
		return twingate.Output{Stdout: "starting"}, nil
	}}

	a := newTestApp(runner)
	done := make(chan struct{})
	a.SetRebuildHook(func() { close(done) })

	a.RebuildSoon()
	waitForRebuild(t, done)

	// Initial refresh plus maxRebuildRetries more, then rebuild anyway.
	if got := runner.callCount("twingate status"); got != maxRebuildRetries+1 {
		t.Errorf("status called %d times, want %d", got, maxRebuildRetries+1)
	}
}

func TestRebuildSoonStopsWhenBaseContextCanceled(t *testing.T) {
	shrinkRebuildDelays(t)

	runner := &scriptedRunner{handler: func(call string, n int) (twingate.Output, error) {
		return twingate.Output{Stdout: "online"}, nil
	}}

	a := newTestApp(runner)
	ctx, cancel := context.WithCancel(context.Background())
	a.SetBaseContext(ctx)

	rebuilt := make(chan struct{}, 1)
	a.SetRebuildHook(func() { rebuilt <- struct{}{} })

	cancel()
	a.RebuildSoon()

	select {
	case <-rebuilt:
		t.Fatal("a canceled base context should stop the rebuild goroutine")
	case <-time.After(50 * time.Millisecond):
	}
	if got := runner.callCount("twingate status"); got != 0 {
		t.Errorf("status called %d times after cancellation, want 0", got)
	}
}
