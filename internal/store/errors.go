package store

import "errors"

var (
	// ErrTaskNotFound is returned when a referenced task ID is absent.
	ErrTaskNotFound = errors.New("task not found")

	// ErrBadTransition is returned when a status update would move a
	// task backward or out of a terminal state.
	ErrBadTransition = errors.New("invalid status transition")

	// ErrStaleState is returned when the on-disk state changed between
	// load and store. Detection is best-effort: it narrows the race
	// window, it does not close it.
	ErrStaleState = errors.New("state changed since load")

	// ErrCorruptState is returned when the state file exists but cannot
	// be parsed. This is fatal by design: synthesizing defaults over a
	// present-but-corrupt file would silently discard data.
	ErrCorruptState = errors.New("state file is corrupt")

	// ErrNotResettable is returned when resetting a task that is not failed.
	ErrNotResettable = errors.New("only failed tasks can be reset")
)
