// Package exec provides the executor capability: running a CLI tool as
// a bounded subprocess and reporting its outcome.
package exec

import "context"

// Result is the outcome of one CLI invocation.
type Result struct {
	// Success is true when the process exited with status zero.
	Success bool
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error, or the invocation error
	// text when the process could not run or timed out.
	Stderr string
}

// Executor defines the interface for invoking a CLI tool.
// This abstraction allows faking tool invocation in tests.
type Executor interface {
	// Execute runs the named binary with the given arguments and
	// returns its outcome. Implementations must bound the call's
	// wall-clock time; a timeout is reported as a failed Result,
	// never as a hang.
	Execute(ctx context.Context, name string, args ...string) Result
}
