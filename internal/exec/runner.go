package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds one CLI invocation when no timeout is configured.
const DefaultTimeout = 5 * time.Minute

// SubprocessExecutor implements Executor using os/exec.
type SubprocessExecutor struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
	// Dir is the working directory for invocations, if non-empty.
	Dir string
}

// NewRunner creates a SubprocessExecutor with the given timeout.
func NewRunner(timeout time.Duration) *SubprocessExecutor {
	return &SubprocessExecutor{Timeout: timeout}
}

// Execute runs the binary and captures stdout/stderr separately.
// Timeouts and spawn failures surface as a failed Result with the
// error text in Stderr; callers treat them like any other tool failure.
func (e *SubprocessExecutor) Execute(ctx context.Context, name string, args ...string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if e.Dir != "" {
		cmd.Dir = e.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Success: err == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil && res.Stderr == "" {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Stderr = fmt.Sprintf("%s timed out after %s", name, timeout)
		} else {
			res.Stderr = err.Error()
		}
	}
	return res
}

// Verify SubprocessExecutor implements Executor at compile time.
var _ Executor = (*SubprocessExecutor)(nil)
