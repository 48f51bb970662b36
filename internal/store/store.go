// Package store is the authoritative persistence layer for a project's
// shared state. Every mutating operation performs one full
// load-modify-store cycle: the state file is read fresh, changed in
// memory, and replaced wholesale with an atomic rename, then the derived
// views are regenerated. No state survives in memory between operations.
//
// Concurrent writers are detected, not excluded: the state document
// carries a version counter and a store whose loaded version no longer
// matches the file is rejected with ErrStaleState and retried once.
// Two writers racing inside the check-then-rename window still resolve
// last-writer-wins; the coordination model tolerates that.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stigmergy-dev/stigmergy/internal/views"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// StateFile is the fixed name of the machine-readable state document.
const StateFile = "PROJECT_SPEC.json"

// Recorder receives copies of board events for auxiliary storage.
// Recording is best-effort; failures never abort a board mutation.
type Recorder interface {
	RecordTransition(taskID string, from, to models.TaskStatus, agent models.AgentID, at time.Time)
	RecordLog(entry models.LogEntry)
}

// Store owns the state document of one project directory.
type Store struct {
	dir         string
	projectName string
	views       *views.Synchronizer
	recorder    Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithProjectName sets the name used when synthesizing a new project.
func WithProjectName(name string) Option {
	return func(s *Store) { s.projectName = name }
}

// WithRecorder attaches an auxiliary event recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// New returns a Store for the given project directory.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:         dir,
		projectName: "Collaboration Project",
		views:       views.NewSynchronizer(dir),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the project directory.
func (s *Store) Dir() string { return s.dir }

// StatePath returns the path of the state document.
func (s *Store) StatePath() string { return filepath.Join(s.dir, StateFile) }

// Load reads the current project state. A missing state file is not an
// error: a fresh default state is synthesized, persisted, and returned,
// so the first agent to arrive creates the board. A present-but-corrupt
// file is fatal (ErrCorruptState).
func (s *Store) Load() (*models.ProjectState, error) {
	state, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		return s.synthesize()
	}
	return state, err
}

// read parses the state file from disk. A missing file surfaces as
// os.ErrNotExist for Load to handle.
func (s *Store) read() (*models.ProjectState, error) {
	data, err := os.ReadFile(s.StatePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	state := &models.ProjectState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.StatePath(), err)
	}
	if state.Tasks == nil {
		state.Tasks = make(map[string]*models.Task)
	}
	return state, nil
}

// synthesize persists and returns a fresh default state. When two
// processes race on an empty directory the loser's write is rejected as
// stale; the winner's file is authoritative, so the loser reads it back
// instead of failing.
func (s *Store) synthesize() (*models.ProjectState, error) {
	state := models.NewProjectState(s.projectName)
	err := s.save(state)
	if errors.Is(err, ErrStaleState) {
		return s.read()
	}
	if err != nil {
		return nil, fmt.Errorf("synthesizing project state: %w", err)
	}
	return state, nil
}

// CreateTask inserts a new pending task and returns its ID. An empty
// priority defaults to medium. The ID is visible to any later load from
// any process once CreateTask returns.
func (s *Store) CreateTask(taskType, description string, assignedTo models.AgentID, priority models.Priority) (string, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return "", fmt.Errorf("unknown priority %q", priority)
	}

	id := fmt.Sprintf("%s_%s", taskType, uuid.New().String())
	err := s.mutate(func(state *models.ProjectState) error {
		now := time.Now().UTC()
		state.Tasks[id] = &models.Task{
			ID:          id,
			Type:        taskType,
			Description: description,
			AssignedTo:  assignedTo,
			Status:      models.TaskStatusPending,
			Priority:    priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateTaskStatus moves a task to the given status. The result text is
// stored only on transitions into completed or failed. A log entry is
// appended for every transition.
func (s *Store) UpdateTaskStatus(id string, status models.TaskStatus, result string, agent models.AgentID) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	var from models.TaskStatus
	err := s.mutate(func(state *models.ProjectState) error {
		task := state.Task(id)
		if task == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if !task.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s: %s -> %s", ErrBadTransition, id, task.Status, status)
		}

		from = task.Status
		now := time.Now().UTC()
		task.Status = status
		task.UpdatedAt = now
		if agent != "" {
			task.UpdatedBy = agent
		}
		if status.Terminal() {
			task.Result = result
		}

		appendLog(state, agent, fmt.Sprintf("task %s: %s -> %s", id, from, status))
		return nil
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordTransition(id, from, status, agent, time.Now().UTC())
	}
	return nil
}

// ResetTask moves a failed task back to pending, clearing its result.
// This is the only path out of failed; nothing performs it implicitly.
// The assign argument reassigns the task, or unassigns it when empty.
func (s *Store) ResetTask(id string, assign models.AgentID) error {
	err := s.mutate(func(state *models.ProjectState) error {
		task := state.Task(id)
		if task == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if task.Status != models.TaskStatusFailed {
			return fmt.Errorf("%w: %s is %s", ErrNotResettable, id, task.Status)
		}

		task.Status = models.TaskStatusPending
		task.Result = ""
		task.AssignedTo = assign
		task.UpdatedAt = time.Now().UTC()

		appendLog(state, "", fmt.Sprintf("task %s: reset to pending", id))
		return nil
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordTransition(id, models.TaskStatusFailed, models.TaskStatusPending, assign, time.Now().UTC())
	}
	return nil
}

// AddCollaborationLog appends an entry to the shared history.
func (s *Store) AddCollaborationLog(message string, agent models.AgentID) error {
	var entry models.LogEntry
	err := s.mutate(func(state *models.ProjectState) error {
		entry = appendLog(state, agent, message)
		return nil
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordLog(entry)
	}
	return nil
}

// ClaimTask assigns a pending task to the given agent and marks it
// in progress. The claim is advisory: a concurrent process may still
// claim the same task in the race window.
func (s *Store) ClaimTask(id string, agent models.AgentID) error {
	var from models.TaskStatus
	err := s.mutate(func(state *models.ProjectState) error {
		task := state.Task(id)
		if task == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if !task.Status.CanTransitionTo(models.TaskStatusInProgress) {
			return fmt.Errorf("%w: %s: %s -> %s", ErrBadTransition, id, task.Status, models.TaskStatusInProgress)
		}

		from = task.Status
		task.Status = models.TaskStatusInProgress
		task.AssignedTo = agent
		task.UpdatedBy = agent
		task.UpdatedAt = time.Now().UTC()

		appendLog(state, agent, fmt.Sprintf("claimed task %s", id))
		return nil
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordTransition(id, from, models.TaskStatusInProgress, agent, time.Now().UTC())
	}
	return nil
}

// SetProjectStatus changes the project lifecycle state. Paused and
// archived boards are read-only for agents: WorkOnContext becomes a
// no-op until the project is active again.
func (s *Store) SetProjectStatus(status models.ProjectStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown project status %q", status)
	}
	return s.mutate(func(state *models.ProjectState) error {
		if state.Status == status {
			return nil
		}
		appendLog(state, "", fmt.Sprintf("project status: %s -> %s", state.Status, status))
		state.Status = status
		return nil
	})
}

// ReleaseTask returns an in-progress task to pending and drops its
// assignment, making it claimable again by any capable agent. Used when
// a claim produced no usable output. No result is stored.
func (s *Store) ReleaseTask(id string, agent models.AgentID) error {
	err := s.mutate(func(state *models.ProjectState) error {
		task := state.Task(id)
		if task == nil {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		if !task.Status.CanTransitionTo(models.TaskStatusPending) {
			return fmt.Errorf("%w: %s: %s -> %s", ErrBadTransition, id, task.Status, models.TaskStatusPending)
		}

		task.Status = models.TaskStatusPending
		task.AssignedTo = ""
		task.UpdatedAt = time.Now().UTC()

		appendLog(state, agent, fmt.Sprintf("released task %s: tool produced no output", id))
		return nil
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordTransition(id, models.TaskStatusInProgress, models.TaskStatusPending, agent, time.Now().UTC())
	}
	return nil
}

// appendLog adds an entry to the collaboration history and returns it.
// The history is append-only; nothing removes or mutates entries.
func appendLog(state *models.ProjectState, agent models.AgentID, message string) models.LogEntry {
	entry := models.LogEntry{
		Timestamp: time.Now().UTC(),
		Agent:     agent,
		Message:   message,
	}
	state.CollaborationHistory = append(state.CollaborationHistory, entry)
	return entry
}

// mutate runs one load-modify-store cycle. A store rejected as stale is
// retried once against freshly loaded state.
func (s *Store) mutate(fn func(*models.ProjectState) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var state *models.ProjectState
		state, err = s.Load()
		if err != nil {
			return err
		}
		if err = fn(state); err != nil {
			return err
		}
		err = s.save(state)
		if !errors.Is(err, ErrStaleState) {
			return err
		}
	}
	return err
}

// save replaces the state document and regenerates the views. Before
// writing it re-reads the on-disk version: a mismatch with the loaded
// version means another process stored in between, and the write is
// rejected rather than silently dropping that process's changes.
func (s *Store) save(state *models.ProjectState) error {
	current, err := s.diskVersion()
	if err != nil {
		return err
	}
	if current != state.Version {
		return fmt.Errorf("%w: loaded version %d, on disk %d", ErrStaleState, state.Version, current)
	}
	state.Version++

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	if err := writeAtomic(s.StatePath(), data); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := s.views.Sync(state); err != nil {
		return err
	}
	return nil
}

// diskVersion reads just the version counter from the state file.
// A missing file reports version 0, matching a freshly synthesized state.
func (s *Store) diskVersion() (int64, error) {
	data, err := os.ReadFile(s.StatePath())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading state file: %w", err)
	}
	var v struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.StatePath(), err)
	}
	return v.Version, nil
}

// writeAtomic replaces path with data via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
