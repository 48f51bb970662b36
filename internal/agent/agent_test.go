package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stigmergy-dev/stigmergy/internal/capability"
	"github.com/stigmergy-dev/stigmergy/internal/exec"
	"github.com/stigmergy-dev/stigmergy/internal/plan"
	"github.com/stigmergy-dev/stigmergy/internal/store"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// fakeExecutor returns canned results and records invocations.
type fakeExecutor struct {
	result exec.Result
	calls  [][]string
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) exec.Result {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result
}

func newTestAgent(t *testing.T, id models.AgentID, fake *fakeExecutor) (*Agent, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir(), store.WithProjectName("Agent Test"))
	return New(id, st, capability.DefaultRegistry(), plan.NewPlanner(0), fake), st
}

func TestWorkOnContext_NothingToDo(t *testing.T) {
	fake := &fakeExecutor{}
	a, _ := newTestAgent(t, "claude", fake)

	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatalf("WorkOnContext: %v", err)
	}
	if outcome != OutcomeNothing {
		t.Errorf("outcome = %v, want nothing to do", outcome)
	}
	if len(fake.calls) != 0 {
		t.Error("executor invoked with nothing to do")
	}
}

// Scenario: an unassigned analysis task is claimed by a capable agent,
// completed with the tool's output, and leaves a log trail.
func TestWorkOnContext_ClaimsAndCompletes(t *testing.T) {
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: "detailed findings"}}
	a, st := newTestAgent(t, "claude", fake)

	id, err := st.CreateTask("analysis", "analyze the quarterly data", "", "")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatalf("WorkOnContext: %v", err)
	}
	if !outcome.Worked() {
		t.Fatalf("outcome = %v, want completed", outcome)
	}

	state, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	task := state.Task(id)
	if task.Status != models.TaskStatusCompleted {
		t.Errorf("status = %q, want completed", task.Status)
	}
	if task.Result != "detailed findings" {
		t.Errorf("result = %q, want tool output", task.Result)
	}
	if task.AssignedTo != "claude" {
		t.Errorf("assigned_to = %q, want claude", task.AssignedTo)
	}
	if len(state.CollaborationHistory) == 0 {
		t.Error("no log entries after a completed task")
	}
}

// Scenario: a task assigned to another agent must not be claimed even
// when it is the only pending task.
func TestWorkOnContext_RespectsAssignment(t *testing.T) {
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: "output"}}
	a, st := newTestAgent(t, "claude", fake)

	id, err := st.CreateTask("translation", "translate this document", "gemini", "")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeNothing {
		t.Errorf("outcome = %v, claude must not touch a task assigned to gemini", outcome)
	}
	if len(fake.calls) != 0 {
		t.Error("executor invoked for a foreign task")
	}

	state, _ := st.Load()
	if got := state.Task(id).Status; got != models.TaskStatusPending {
		t.Errorf("foreign task status = %q, want pending", got)
	}
}

// Scenario: tool failure marks the task failed with the error text;
// only an explicit reset makes it claimable again.
func TestWorkOnContext_FailureIsRecorded(t *testing.T) {
	fake := &fakeExecutor{result: exec.Result{Success: false, Stderr: "model unavailable"}}
	a, st := newTestAgent(t, "claude", fake)

	id, err := st.CreateTask("analysis", "analyze the logs", "", "")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatalf("tool failure must not surface as an error: %v", err)
	}
	if outcome.Worked() {
		t.Error("Worked() = true for a failed task")
	}
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %v, want failed", outcome)
	}

	state, _ := st.Load()
	task := state.Task(id)
	if task.Status != models.TaskStatusFailed {
		t.Errorf("status = %q, want failed", task.Status)
	}
	if task.Result != "model unavailable" {
		t.Errorf("result = %q, want error text", task.Result)
	}

	// Failed is terminal: a capable agent finds nothing to do.
	if outcome, _ := a.WorkOnContext(context.Background()); outcome != OutcomeNothing {
		t.Errorf("failed task was re-claimed without a reset: %v", outcome)
	}

	// After an explicit reset the task is claimable again.
	if err := st.ResetTask(id, ""); err != nil {
		t.Fatal(err)
	}
	fake.result = exec.Result{Success: true, Stdout: "recovered"}
	if outcome, _ := a.WorkOnContext(context.Background()); !outcome.Worked() {
		t.Errorf("reset task was not re-claimed: %v", outcome)
	}
}

func TestWorkOnContext_EmptyOutputReleasesClaim(t *testing.T) {
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: "  \n"}}
	a, st := newTestAgent(t, "claude", fake)

	id, err := st.CreateTask("analysis", "analyze the report", "", "")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeReleased {
		t.Errorf("outcome = %v, want released", outcome)
	}

	state, _ := st.Load()
	task := state.Task(id)
	if task.Status != models.TaskStatusPending {
		t.Errorf("status = %q, want pending (retryable)", task.Status)
	}
	if task.AssignedTo != "" {
		t.Errorf("assigned_to = %q, want unassigned after release", task.AssignedTo)
	}
	if task.Result != "" {
		t.Errorf("result = %q, want empty", task.Result)
	}
}

// Scenario: a completed code-generation task whose result contains a
// fenced code block spawns exactly one unassigned testing task.
func TestWorkOnContext_SpawnsTestingFollowUp(t *testing.T) {
	out := "here:\n```go\nfunc Add(a, b int) int { return a + b }\n```\n"
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: out}}
	a, st := newTestAgent(t, "codebuddy", fake)

	if _, err := st.CreateTask("code_generation", "implement integer addition code", "", ""); err != nil {
		t.Fatal(err)
	}

	if outcome, err := a.WorkOnContext(context.Background()); err != nil || !outcome.Worked() {
		t.Fatalf("WorkOnContext = (%v, %v), want (completed, nil)", outcome, err)
	}

	state, _ := st.Load()
	var followUps []*models.Task
	for _, task := range state.Tasks {
		if task.Type == "testing" {
			followUps = append(followUps, task)
		}
	}
	if len(followUps) != 1 {
		t.Fatalf("got %d testing tasks, want exactly 1", len(followUps))
	}
	if followUps[0].AssignedTo != "" {
		t.Errorf("follow-up should be unassigned, got %q", followUps[0].AssignedTo)
	}
	if followUps[0].Status != models.TaskStatusPending {
		t.Errorf("follow-up status = %q, want pending", followUps[0].Status)
	}
}

// Scenario: two agent processes race for the same task. Losing the
// claim is normal operation, never an error; the loser rescans and
// reports nothing to do.
func TestWorkOnContext_LostClaimIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	stA := store.New(dir, store.WithProjectName("Race Test"))
	stB := store.New(dir, store.WithProjectName("Race Test"))
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: "output"}}
	a := New("claude", stA, capability.DefaultRegistry(), plan.NewPlanner(0), fake)

	id, err := stA.CreateTask("analysis", "analyze the shared data", "", "")
	if err != nil {
		t.Fatal(err)
	}

	// A loads the board, then B wins the claim before A acts on it.
	state, err := stA.Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := stB.ClaimTask(id, "gemini"); err != nil {
		t.Fatal(err)
	}

	if outcome, err := a.workOn(context.Background(), state); !errors.Is(err, errClaimLost) {
		t.Fatalf("workOn on a lost claim = (%v, %v), want errClaimLost", outcome, err)
	}
	if len(fake.calls) != 0 {
		t.Error("executor invoked despite losing the claim")
	}

	// The full cycle tolerates the loss end to end.
	outcome, err := a.WorkOnContext(context.Background())
	if err != nil {
		t.Fatalf("lost claim surfaced as an error: %v", err)
	}
	if outcome != OutcomeNothing {
		t.Errorf("outcome = %v, want nothing to do", outcome)
	}

	state, _ = stA.Load()
	if got := state.Task(id).AssignedTo; got != "gemini" {
		t.Errorf("assigned_to = %q, the winner's claim must stand", got)
	}
}

func TestWorkOnContext_PausedProjectIsReadOnly(t *testing.T) {
	fake := &fakeExecutor{result: exec.Result{Success: true, Stdout: "output"}}
	a, st := newTestAgent(t, "claude", fake)

	if _, err := st.CreateTask("analysis", "analyze something", "claude", ""); err != nil {
		t.Fatal(err)
	}
	if err := st.AddCollaborationLog("pausing for maintenance", ""); err != nil {
		t.Fatal(err)
	}
	if err := st.SetProjectStatus(models.ProjectPaused); err != nil {
		t.Fatal(err)
	}

	if outcome, err := a.WorkOnContext(context.Background()); outcome != OutcomeNothing || err != nil {
		t.Errorf("WorkOnContext on paused project = (%v, %v), want (nothing, nil)", outcome, err)
	}
}

func TestAgent_Invocation(t *testing.T) {
	a := New("claude", nil, capability.DefaultRegistry(), plan.NewPlanner(0), nil)

	tests := []struct {
		taskType string
		desc     string
		wantArg  string
	}{
		{"code_generation", "a parser", "Generate code: a parser"},
		{"review", "the parser", "Review and optimize: the parser"},
		{"documentation", "the API", "Write documentation: the API"},
		{"testing", "the parser", "Write tests: the parser"},
		{"analysis", "the data", "the data"},
	}
	for _, tt := range tests {
		t.Run(tt.taskType, func(t *testing.T) {
			name, args := a.invocation(&models.Task{Type: tt.taskType, Description: tt.desc})
			if name != "claude" {
				t.Errorf("binary = %q, want claude", name)
			}
			if len(args) != 1 || args[0] != tt.wantArg {
				t.Errorf("args = %v, want [%q]", args, tt.wantArg)
			}
		})
	}

	name, args := a.invocation(&models.Task{Type: "command_execution", Description: "--version --json"})
	if name != "claude" || len(args) != 2 || args[0] != "--version" {
		t.Errorf("command_execution invocation = %s %v", name, args)
	}
}

func TestNextAction_DeterministicAndIdempotent(t *testing.T) {
	reg := capability.DefaultRegistry()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	state := models.NewProjectState("test")
	state.Tasks["a"] = &models.Task{
		ID: "a", Description: "analyze dataset A", Status: models.TaskStatusPending,
		Priority: models.PriorityMedium, CreatedAt: now,
	}
	state.Tasks["b"] = &models.Task{
		ID: "b", Description: "analyze dataset B", Status: models.TaskStatusPending,
		Priority: models.PriorityHigh, CreatedAt: now.Add(time.Hour),
	}
	state.Tasks["c"] = &models.Task{
		ID: "c", Description: "analyze dataset C", Status: models.TaskStatusPending,
		Priority: models.PriorityHigh, CreatedAt: now.Add(2 * time.Hour),
	}

	// Higher priority wins despite later creation; among equal
	// priorities the older task wins.
	first := NextAction(state, "claude", reg)
	if first == nil || first.ID != "b" {
		t.Fatalf("NextAction = %v, want task b", first)
	}
	// Idempotent with no intervening mutation.
	for i := 0; i < 5; i++ {
		if got := NextAction(state, "claude", reg); got.ID != first.ID {
			t.Fatalf("NextAction changed answer: %s then %s", first.ID, got.ID)
		}
	}

	// Explicit assignment outranks capability matches.
	state.Tasks["d"] = &models.Task{
		ID: "d", Description: "water the plants", AssignedTo: "claude",
		Status: models.TaskStatusPending, Priority: models.PriorityLow, CreatedAt: now,
	}
	if got := NextAction(state, "claude", reg); got.ID != "d" {
		t.Errorf("NextAction = %s, want assigned task d", got.ID)
	}
}

func TestNextAction_CompletedNeverReturned(t *testing.T) {
	reg := capability.DefaultRegistry()
	state := models.NewProjectState("test")
	state.Tasks["a"] = &models.Task{
		ID: "a", Description: "analyze dataset", AssignedTo: "claude",
		Status: models.TaskStatusCompleted, Priority: models.PriorityHigh, CreatedAt: time.Now(),
	}

	if got := NextAction(state, "claude", reg); got != nil {
		t.Errorf("NextAction returned completed task %s", got.ID)
	}
}
