// Package twingate is the client side of the Twingate daemon's console
// protocol: it shells out to the daemon CLI and notifier, classifies
// their free-text status output, and parses the notifier's JSON resource
// listing.
package twingate

import (
	"context"

	"github.com/twintray/twintray/internal/retry"
)

// Client talks to the daemon and notifier binaries.
type Client struct {
	runner   Runner
	daemon   string
	notifier string
	policy   retry.Policy
}

// NewClient builds a client around the given runner and binary names.
func NewClient(runner Runner, daemon, notifier string, policy retry.Policy) *Client {
	return &Client{
		runner:   runner,
		daemon:   daemon,
		notifier: notifier,
		policy:   policy,
	}
}

// Status runs the daemon status command.
func (c *Client) Status(ctx context.Context) (Output, error) {
	return c.runner.Run(ctx, c.daemon, "status")
}

// ServiceState runs the status command and classifies its output.
func (c *Client) ServiceState(ctx context.Context) (ServiceState, string, error) {
	out, err := c.Status(ctx)
	if err != nil {
		return StateNotRunning, "", err
	}
	return Classify(out.Stdout), out.Stdout, nil
}

// Resources runs the notifier's resources command, which produces the
// JSON network snapshot once the service is ready.
func (c *Client) Resources(ctx context.Context) (Output, error) {
	return c.runner.Run(ctx, c.notifier, "resources")
}

// ResourcesList runs the daemon's own resource listing. Its output is
// free text and may carry an authentication URL.
func (c *Client) ResourcesList(ctx context.Context) (Output, error) {
	return c.runner.Run(ctx, c.daemon, "resources", "list")
}

// Auth runs the daemon auth command without elevation, used to coax an
// authentication URL out of the daemon.
func (c *Client) Auth(ctx context.Context) (Output, error) {
	return c.runner.Run(ctx, c.daemon, "auth")
}

// AuthResource runs the elevated auth command for a single resource.
func (c *Client) AuthResource(ctx context.Context, name string) (Output, error) {
	return c.runner.RunElevated(ctx, c.daemon, "auth", name)
}

// Start starts the service through the escalation helper.
func (c *Client) Start(ctx context.Context) (Output, error) {
	return c.runner.RunElevated(ctx, c.daemon, "start")
}

// Stop stops the service through the escalation helper.
func (c *Client) Stop(ctx context.Context) (Output, error) {
	return c.runner.RunElevated(ctx, c.daemon, "stop")
}

// Runner exposes the underlying runner for callers that need raw command
// access (the auth flow's URL detection).
func (c *Client) Runner() Runner { return c.runner }
