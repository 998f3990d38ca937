package twingate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/twintray/twintray/internal/retry"
)

const testSnapshot = `{
	"admin_url": "https://admin.example.com",
	"full_tunnel_time_limit": 0,
	"internet_security": {"mode": 1, "status": 2},
	"resources": [
		{
			"id": "r-1",
			"name": "intranet",
			"address": "intranet.internal",
			"auth_expires_at": 86400000,
			"can_open_in_browser": true,
			"client_visibility": 1,
			"aliases": [{"address": "intranet", "open_url": "https://intranet.internal"}],
			"type": "network"
		}
	],
	"user": {"id": "u-1", "email": "dev@example.com", "first_name": "Dev", "last_name": "User", "avatar_url": "", "is_admin": false}
}`

// fakeRunner scripts command output by command name and records calls.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	handler func(call string, n int) (Output, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	call := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.mu.Lock()
	f.calls = append(f.calls, call)
	n := f.count(call)
	f.mu.Unlock()
	return f.handler(call, n)
}

func (f *fakeRunner) RunElevated(ctx context.Context, name string, args ...string) (Output, error) {
	out, err := f.Run(ctx, "pkexec "+name, args...)
	if err != nil {
		return Output{}, err
	}
	if !out.Success() {
		return Output{}, &CommandFailedError{Command: name, ExitCode: out.ExitCode, Stderr: out.Stderr}
	}
	return out, nil
}

// count returns how many times call has been made, including the one
// just recorded. Callers must hold mu.
func (f *fakeRunner) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRunner) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count(call)
}

func testClient(r Runner) *Client {
	policy := retry.Policy{BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, MaxRetries: 8}
	return NewClient(r, "twingate", "twingate-notifier", policy)
}

func TestFetchNetworkNotRunningShortCircuits(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		if call == "twingate status" {
			return Output{Stdout: "not-running"}, nil
		}
		t.Fatalf("unexpected command %q", call)
		return Output{}, nil
	}}

	network, err := testClient(runner).FetchNetwork(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchNetwork() error = %v", err)
	}
	if network != nil {
		t.Errorf("expected nil network for stopped service")
	}
	if got := runner.callCount("twingate status"); got != 1 {
		t.Errorf("status called %d times, want 1 (no retries)", got)
	}
}

func TestFetchNetworkAuthRequiredIsTerminal(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		return Output{Stdout: "User authentication is required."}, nil
	}}

	_, err := testClient(runner).FetchNetwork(context.Background(), 3)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("FetchNetwork() error = %v, want ErrAuthRequired", err)
	}
	if got := runner.callCount("twingate status"); got != 1 {
		t.Errorf("status called %d times, want 1 (terminal)", got)
	}
}

func TestFetchNetworkRetryExhaustion(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		return Output{Stdout: "starting"}, nil
	}}

	_, err := testClient(runner).FetchNetwork(context.Background(), 3)
	var limitErr *RetryLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("FetchNetwork() error = %v, want *RetryLimitError", err)
	}
	if limitErr.Attempts != 4 {
		t.Errorf("attempts = %d, want 4 (initial + 3 retries)", limitErr.Attempts)
	}
	if got := runner.callCount("twingate status"); got != 4 {
		t.Errorf("status called %d times, want 4", got)
	}
}

func TestFetchNetworkConnected(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{Stdout: "online"}, nil
		case "twingate-notifier resources":
			return Output{Stdout: testSnapshot}, nil
		}
		t.Fatalf("unexpected command %q", call)
		return Output{}, nil
	}}

	network, err := testClient(runner).FetchNetwork(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchNetwork() error = %v", err)
	}
	if network == nil {
		t.Fatal("expected a network snapshot")
	}
	if network.User.Email != "dev@example.com" {
		t.Errorf("user email = %q", network.User.Email)
	}
	if len(network.Resources) != 1 || network.Resources[0].ID != "r-1" {
		t.Errorf("unexpected resources: %+v", network.Resources)
	}
}

func TestFetchNetworkRetriesWhileNotifierWarmsUp(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{Stdout: "connected"}, nil
		case "twingate-notifier resources":
			// The daemon claims connected before the notifier can serve
			// the listing; first two bodies are transitional text.
			if n < 3 {
				return Output{Stdout: "still connecting, please wait"}, nil
			}
			return Output{Stdout: testSnapshot}, nil
		}
		t.Fatalf("unexpected command %q", call)
		return Output{}, nil
	}}

	network, err := testClient(runner).FetchNetwork(context.Background(), 5)
	if err != nil {
		t.Fatalf("FetchNetwork() error = %v", err)
	}
	if network == nil {
		t.Fatal("expected a network snapshot after warm-up")
	}
	if got := runner.callCount("twingate-notifier resources"); got != 3 {
		t.Errorf("resources called %d times, want 3", got)
	}
}

func TestFetchNetworkEmptyResourcesBodyRetries(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{Stdout: "connected"}, nil
		case "twingate-notifier resources":
			if n == 1 {
				return Output{Stdout: "   \n"}, nil
			}
			return Output{Stdout: testSnapshot}, nil
		}
		return Output{}, nil
	}}

	network, err := testClient(runner).FetchNetwork(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchNetwork() error = %v", err)
	}
	if network == nil {
		t.Fatal("expected a network snapshot")
	}
}

func TestFetchNetworkAuthMessageInResourcesBody(t *testing.T) {
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{Stdout: "connected"}, nil
		case "twingate-notifier resources":
			return Output{Stdout: "auth expired, sign in again"}, nil
		}
		return Output{}, nil
	}}

	_, err := testClient(runner).FetchNetwork(context.Background(), 3)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("FetchNetwork() error = %v, want ErrAuthRequired", err)
	}
}

func TestFetchNetworkFallsBackWhenStatusUnavailable(t *testing.T) {
	spawnErr := &CommandError{Command: "twingate", Err: errors.New("executable file not found")}
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{}, spawnErr
		case "twingate-notifier resources":
			return Output{Stdout: testSnapshot}, nil
		}
		return Output{}, nil
	}}

	network, err := testClient(runner).FetchNetwork(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchNetwork() error = %v", err)
	}
	if network == nil {
		t.Fatal("expected snapshot from the fallback path")
	}
}

func TestFetchNetworkPropagatesStatusErrorWhenFallbackFails(t *testing.T) {
	spawnErr := &CommandError{Command: "twingate", Err: errors.New("executable file not found")}
	runner := &fakeRunner{handler: func(call string, n int) (Output, error) {
		switch call {
		case "twingate status":
			return Output{}, spawnErr
		case "twingate-notifier resources":
			return Output{Stdout: "not json either"}, nil
		}
		return Output{}, nil
	}}

	_, err := testClient(runner).FetchNetwork(context.Background(), 3)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("FetchNetwork() error = %v, want *CommandError from status", err)
	}
	if got := runner.callCount("twingate status"); got != 1 {
		t.Errorf("status called %d times, want 1 (permanent failure)", got)
	}
}
