package models

import "time"

// TaskStatus represents the current state of a task on the board.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is waiting to be claimed.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates an agent has claimed the task.
	// The claim is advisory: nothing enforces it across processes.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task finished with a result.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task finished with an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from s.
// Failed tasks leave the terminal state only through an explicit reset,
// which is a separate operation rather than a transition.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether a task may move from s to next.
// Statuses move forward only, with one exception: an in-progress task
// may be released back to pending when its claim produced no output.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusInProgress || next == TaskStatusCompleted || next == TaskStatusFailed
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusFailed || next == TaskStatusPending
	default:
		return false
	}
}

// Priority represents how urgently a task should be claimed.
type Priority string

const (
	// PriorityLow is for tasks that can wait.
	PriorityLow Priority = "low"
	// PriorityMedium is the default priority.
	PriorityMedium Priority = "medium"
	// PriorityHigh is for tasks that should be claimed first.
	PriorityHigh Priority = "high"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Weight returns the priority as a comparable integer, higher first.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// AgentID identifies a CLI-tool agent permitted to claim tasks.
// It is deliberately unvalidated; unknown identities simply match
// no specialty and claim nothing.
type AgentID string

// Task represents one unit of work on the shared board.
type Task struct {
	// ID is the unique, immutable identifier for this task.
	ID string `json:"id"`
	// Type categorizes the task (e.g. code_generation, review, testing).
	Type string `json:"type"`
	// Description is the free-text work statement agents match against.
	Description string `json:"description"`
	// AssignedTo is the agent this task is reserved for, if any.
	AssignedTo AgentID `json:"assigned_to,omitempty"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// Result holds the output on completion or the error text on failure.
	Result string `json:"result,omitempty"`
	// Priority orders claims among pending tasks.
	Priority Priority `json:"priority"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the task last changed.
	UpdatedAt time.Time `json:"updated_at"`
	// UpdatedBy is the agent that performed the last change.
	UpdatedBy AgentID `json:"updated_by,omitempty"`
}

// Claimed returns true if the task is reserved for a specific agent.
func (t *Task) Claimed() bool {
	return t.AssignedTo != ""
}

// LogEntry is one append-only record in the collaboration history.
type LogEntry struct {
	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`
	// Agent is the identity that wrote the entry, if any.
	Agent AgentID `json:"agent,omitempty"`
	// Message is the human-readable event description.
	Message string `json:"message"`
}
