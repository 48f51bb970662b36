// Package views regenerates the human-readable projections of a project:
// a status-grouped task list and a chronological collaboration log.
//
// Both files are derived artifacts. The JSON state document is the sole
// source of truth; these views are wholesale-replaced after every
// mutation and are never read back by the system.
package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

const (
	// TasksFile is the fixed name of the task-list view.
	TasksFile = "TASKS.md"
	// LogFile is the fixed name of the collaboration-log view.
	LogFile = "COLLABORATION_LOG.md"
)

// statusSections fixes the rendering order of the task list.
var statusSections = []struct {
	status models.TaskStatus
	title  string
}{
	{models.TaskStatusInProgress, "In Progress"},
	{models.TaskStatusPending, "Pending"},
	{models.TaskStatusCompleted, "Completed"},
	{models.TaskStatusFailed, "Failed"},
}

// Synchronizer writes derived views into a project directory.
type Synchronizer struct {
	dir string
}

// NewSynchronizer returns a Synchronizer for the given project directory.
func NewSynchronizer(dir string) *Synchronizer {
	return &Synchronizer{dir: dir}
}

// Sync regenerates both views from the given state.
func (s *Synchronizer) Sync(state *models.ProjectState) error {
	if err := writeAtomic(filepath.Join(s.dir, TasksFile), []byte(RenderTasks(state))); err != nil {
		return fmt.Errorf("writing task view: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, LogFile), []byte(RenderLog(state))); err != nil {
		return fmt.Errorf("writing log view: %w", err)
	}
	return nil
}

// RenderTasks produces the status-grouped task list as markdown.
func RenderTasks(state *models.ProjectState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Tasks\n", state.Name)

	for _, section := range statusSections {
		tasks := state.TasksByStatus(section.status)
		if len(tasks) == 0 {
			continue
		}
		models.SortTasks(tasks)

		fmt.Fprintf(&b, "\n## %s\n\n", section.title)
		for _, t := range tasks {
			b.WriteString(renderTaskLine(t))
		}
	}
	return b.String()
}

func renderTaskLine(t *models.Task) string {
	box := " "
	if t.Status == models.TaskStatusCompleted {
		box = "x"
	}
	line := fmt.Sprintf("- [%s] `%s` (%s/%s) %s", box, t.ID, t.Type, t.Priority, t.Description)
	if t.AssignedTo != "" {
		line += fmt.Sprintf(" — assigned to %s", t.AssignedTo)
	}
	if t.Status.Terminal() && t.UpdatedBy != "" {
		line += fmt.Sprintf(" — finished by %s at %s", t.UpdatedBy, t.UpdatedAt.Format(time.RFC3339))
	}
	return line + "\n"
}

// RenderLog produces the chronological collaboration log as markdown.
// Entries keep their stored (append) order.
func RenderLog(state *models.ProjectState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Collaboration Log\n\n", state.Name)
	for _, e := range state.CollaborationHistory {
		agent := string(e.Agent)
		if agent == "" {
			agent = "system"
		}
		fmt.Fprintf(&b, "[%s] [%s] %s\n", e.Timestamp.Format(time.RFC3339), agent, e.Message)
	}
	return b.String()
}

// writeAtomic replaces path with data via a temp file and rename, so a
// reader never observes a half-written view.
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
