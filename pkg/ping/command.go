package ping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrNotStarted wraps failures to spawn the native utility.
var ErrNotStarted = errors.New("native ping could not be started")

// CommandRunner executes the native ping utility. It returns the combined
// output and exit code; err is non-nil only when the process could not be
// started (wrapping ErrNotStarted) or ctx ended first (ctx.Err()).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (output []byte, exitCode int, err error)
}

type execRunner struct{}

// ExecRunner runs commands with os/exec.
func ExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return nil, -1, fmt.Errorf("%w: %v", ErrNotStarted, err)
	}

	err := cmd.Wait()
	if ctx.Err() != nil {
		return output.Bytes(), -1, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return output.Bytes(), -1, err
	}
	return output.Bytes(), 0, nil
}
