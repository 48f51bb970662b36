package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stigmergy-dev/stigmergy/internal/store"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_TransitionsRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	now := time.Now().UTC().Truncate(time.Second)

	a.RecordTransition("task_1", models.TaskStatusPending, models.TaskStatusInProgress, "claude", now)
	a.RecordTransition("task_1", models.TaskStatusInProgress, models.TaskStatusCompleted, "claude", now.Add(time.Minute))

	got, err := a.RecentTransitions(10)
	if err != nil {
		t.Fatalf("RecentTransitions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transitions, want 2", len(got))
	}
	// Newest first.
	if got[0].To != models.TaskStatusCompleted {
		t.Errorf("newest transition to = %q, want completed", got[0].To)
	}
	if got[1].From != models.TaskStatusPending || got[1].Agent != "claude" {
		t.Errorf("oldest transition = %+v", got[1])
	}
}

func TestArchive_LogsRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	now := time.Now().UTC().Truncate(time.Second)

	a.RecordLog(models.LogEntry{Timestamp: now, Agent: "gemini", Message: "translated the doc"})

	got, err := a.RecentLogs(5)
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Agent != "gemini" || got[0].Message != "translated the doc" {
		t.Errorf("entry = %+v", got[0])
	}
}

func TestArchive_LimitApplies(t *testing.T) {
	a := openTestArchive(t)
	for i := 0; i < 5; i++ {
		a.RecordTransition("t", models.TaskStatusPending, models.TaskStatusInProgress, "x", time.Now())
	}
	got, err := a.RecentTransitions(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d transitions, want 3", len(got))
	}
}

// The archive satisfies the store's Recorder interface.
var _ store.Recorder = (*Archive)(nil)
