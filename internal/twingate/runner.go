package twingate

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Output captures the result of one external command invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined, for URL scanning across both
// streams.
func (o Output) Combined() string {
	return o.Stdout + "\n" + o.Stderr
}

// Success reports whether the command exited zero.
func (o Output) Success() bool { return o.ExitCode == 0 }

// Runner executes external commands and maps process failures into typed
// errors. Each invocation is independent; a Runner is safe for concurrent
// use.
type Runner interface {
	// Run executes a command and captures its output. A non-zero exit is
	// not an error here: status commands routinely exit non-zero while
	// still printing usable text. Spawn failures return *CommandError.
	Run(ctx context.Context, name string, args ...string) (Output, error)

	// RunElevated executes a command through the privilege escalation
	// helper and requires a zero exit, returning *CommandFailedError
	// otherwise.
	RunElevated(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	// Elevate is the privilege escalation helper prepended by
	// RunElevated, e.g. "pkexec".
	Elevate string
}

// NewExecRunner returns a runner using the given escalation helper.
func NewExecRunner(elevate string) *ExecRunner {
	return &ExecRunner{Elevate: elevate}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	log.Printf("[exec] %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Output{}, &CommandError{Command: name, Err: err}
		}
	}

	out, err := decodeOutput(name, stdout.Bytes(), stderr.Bytes())
	if err != nil {
		return Output{}, err
	}
	out.ExitCode = exitCode

	log.Printf("[exec] %s exited %d", name, exitCode)
	return out, nil
}

// RunElevated implements Runner.
func (r *ExecRunner) RunElevated(ctx context.Context, name string, args ...string) (Output, error) {
	full := append([]string{name}, args...)
	out, err := r.Run(ctx, r.Elevate, full...)
	if err != nil {
		return Output{}, err
	}
	if !out.Success() {
		return Output{}, &CommandFailedError{
			Command:  name + " " + strings.Join(args, " "),
			ExitCode: out.ExitCode,
			Stderr:   out.Stderr,
		}
	}
	return out, nil
}

// decodeOutput validates both streams as UTF-8. Status text drives state
// transitions, so malformed output is rejected instead of substituted.
func decodeOutput(command string, stdout, stderr []byte) (Output, error) {
	if !utf8.Valid(stdout) {
		return Output{}, &InvalidUTF8Error{Source: command + " stdout"}
	}
	if !utf8.Valid(stderr) {
		return Output{}, &InvalidUTF8Error{Source: command + " stderr"}
	}
	return Output{Stdout: string(stdout), Stderr: string(stderr)}, nil
}
