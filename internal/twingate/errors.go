package twingate

import (
	"errors"
	"fmt"
)

// Sentinel errors for service conditions that drive retries and state
// machine transitions rather than user-facing failures.
var (
	// ErrServiceNotRunning means the daemon is stopped. Terminal, not a
	// fault: callers show the disconnected menu.
	ErrServiceNotRunning = errors.New("twingate service is not running")

	// ErrServiceConnecting means the daemon is up but not ready to serve
	// resource data yet. Transient: callers retry with backoff.
	ErrServiceConnecting = errors.New("twingate service is connecting")

	// ErrAuthRequired means the daemon is waiting for the user to
	// authenticate. Terminal for a fetch; the caller decides whether to
	// launch the authentication flow.
	ErrAuthRequired = errors.New("twingate authentication required")
)

// CommandError wraps a process spawn failure (missing binary, permission
// denied at exec time).
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to execute %q: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// CommandFailedError means the process started but exited non-zero.
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// InvalidUTF8Error means command output was not valid UTF-8. Status text
// drives state transitions, so malformed output is rejected rather than
// lossily converted.
type InvalidUTF8Error struct {
	Source string
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid UTF-8 in %s output", e.Source)
}

// JSONError wraps a failure to decode the notifier's resources payload.
type JSONError struct {
	Err error
}

func (e *JSONError) Error() string { return fmt.Sprintf("network data parsing failed: %v", e.Err) }

func (e *JSONError) Unwrap() error { return e.Err }

// RetryLimitError means a retry budget was exhausted while the service
// stayed in a transitional state.
type RetryLimitError struct {
	Attempts int
}

func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("retry limit exceeded after %d attempts", e.Attempts)
}

// AuthTimeoutError means the service did not reach a connected state
// within the authentication wait window.
type AuthTimeoutError struct {
	Seconds int
}

func (e *AuthTimeoutError) Error() string {
	return fmt.Sprintf("authentication flow timed out after %ds", e.Seconds)
}

// ResourceNotFoundError means a resource ID was not present in the
// current network snapshot.
type ResourceNotFoundError struct {
	ID string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.ID)
}

// InvalidResourceIDError means a menu event carried a malformed resource
// identifier.
type InvalidResourceIDError struct {
	ID string
}

func (e *InvalidResourceIDError) Error() string {
	return fmt.Sprintf("invalid resource id: %q", e.ID)
}
