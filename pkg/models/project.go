package models

import (
	"sort"
	"time"
)

// ProjectStatus represents the lifecycle state of a whole project.
type ProjectStatus string

const (
	// ProjectActive indicates agents may claim work.
	ProjectActive ProjectStatus = "active"
	// ProjectPaused indicates the board is read-only for agents.
	ProjectPaused ProjectStatus = "paused"
	// ProjectArchived indicates the project is finished.
	ProjectArchived ProjectStatus = "archived"
)

// Valid returns true if the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectArchived:
		return true
	default:
		return false
	}
}

// ProjectState is the full shared state of one collaboration project.
// It is the single source of truth: every agent invocation loads it
// fresh, mutates it, and writes it back wholesale. No agent holds it
// across invocations.
type ProjectState struct {
	// Name is the human-readable project name.
	Name string `json:"project_name"`
	// Status is the project lifecycle state.
	Status ProjectStatus `json:"status"`
	// Version increments on every store; used to detect stale writers.
	Version int64 `json:"version"`
	// CreatedAt is when the project state was first synthesized.
	CreatedAt time.Time `json:"created_at"`
	// Tasks maps task ID to task.
	Tasks map[string]*Task `json:"tasks"`
	// CollaborationHistory is the append-only shared log.
	CollaborationHistory []LogEntry `json:"collaboration_history"`
}

// NewProjectState returns a fresh active project with the given name.
func NewProjectState(name string) *ProjectState {
	return &ProjectState{
		Name:                 name,
		Status:               ProjectActive,
		Version:              0,
		CreatedAt:            time.Now().UTC(),
		Tasks:                make(map[string]*Task),
		CollaborationHistory: nil,
	}
}

// SortTasks orders tasks deterministically: priority first (high to
// low), then creation time (oldest first), then ID. Map iteration
// order never leaks into results, so every process sees the same
// ordering for the same stored bytes.
func SortTasks(tasks []*Task) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority.Weight() != b.Priority.Weight() {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Task returns the task with the given ID, or nil if absent.
func (p *ProjectState) Task(id string) *Task {
	if p.Tasks == nil {
		return nil
	}
	return p.Tasks[id]
}

// TasksByStatus returns all tasks currently in the given status.
// Order is unspecified; callers needing determinism must sort.
func (p *ProjectState) TasksByStatus(status TaskStatus) []*Task {
	var out []*Task
	for _, t := range p.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
