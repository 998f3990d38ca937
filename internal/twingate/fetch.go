package twingate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/twintray/twintray/internal/models"
	"github.com/twintray/twintray/internal/retry"
)

// FetchNetwork obtains the current network snapshot, retrying with
// exponential backoff while the service is in a transitional state.
//
// A nil network with a nil error means the service is not running, which
// is a valid terminal outcome, not a failure. ErrAuthRequired is terminal
// for this call; the caller decides whether to launch the auth flow.
// Exhausting the budget yields *RetryLimitError.
func (c *Client) FetchNetwork(ctx context.Context, maxRetries int) (*models.Network, error) {
	var network *models.Network
	attempts := 0

	op := func() error {
		attempts++
		n, err := c.fetchOnce(ctx)
		if err != nil {
			return err
		}
		network = n
		return nil
	}

	err := c.policy.WithRetries(maxRetries).Do(ctx, op)
	if err != nil {
		if errors.Is(err, ErrServiceConnecting) {
			log.Printf("[fetch] service still transitional after %d attempts", attempts)
			return nil, &RetryLimitError{Attempts: attempts}
		}
		return nil, err
	}
	return network, nil
}

// fetchOnce performs a single status+resources round trip. Transitional
// conditions come back as ErrServiceConnecting so the retry policy keeps
// going; terminal outcomes are marked permanent.
func (c *Client) fetchOnce(ctx context.Context) (*models.Network, error) {
	state, statusText, err := c.ServiceState(ctx)
	if err != nil {
		// Best effort: the status binary can be missing or broken while
		// the notifier still serves data. Propagate the status error only
		// when the fallback fails too.
		log.Printf("[fetch] status command failed (%v), falling back to resources", err)
		n, fallbackErr := c.fetchResources(ctx)
		if fallbackErr != nil {
			return nil, retry.Permanent(err)
		}
		return n, nil
	}

	switch state {
	case StateNotRunning:
		log.Printf("[fetch] service not running")
		return nil, nil
	case StateAuthRequired:
		log.Printf("[fetch] authentication required: %s", strings.TrimSpace(statusText))
		return nil, retry.Permanent(ErrAuthRequired)
	case StateConnected:
		return c.fetchResources(ctx)
	default:
		// Starting or Connecting: wait for the daemon to settle.
		log.Printf("[fetch] service %s, will retry", state)
		return nil, ErrServiceConnecting
	}
}

// fetchResources runs the notifier resources command and decodes the
// snapshot. JSON parse success is the success condition; a body that is
// not JSON and not an auth message is a warming-up daemon.
func (c *Client) fetchResources(ctx context.Context) (*models.Network, error) {
	out, err := c.Resources(ctx)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(out.Stdout)
	if body == "" {
		return nil, ErrServiceConnecting
	}

	var network models.Network
	if err := json.Unmarshal([]byte(body), &network); err != nil {
		if Classify(body) == StateAuthRequired {
			return nil, retry.Permanent(ErrAuthRequired)
		}
		// The daemon reports connected before the notifier is ready and
		// emits transitional text in the meantime. Retried, not an
		// inconsistency.
		log.Printf("[fetch] resources output not yet parseable: %v", &JSONError{Err: err})
		return nil, ErrServiceConnecting
	}
	if err := network.Validate(); err != nil {
		log.Printf("[fetch] resources output incomplete: %v", err)
		return nil, ErrServiceConnecting
	}
	return &network, nil
}
