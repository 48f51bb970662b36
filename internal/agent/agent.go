// Package agent implements one invocation-scoped worker bound to a
// CLI-tool identity. An agent loads the shared board, claims at most one
// task, runs its tool once, records the outcome, and exits. All
// coordination with other agents happens through the board; there is no
// process-to-process channel.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stigmergy-dev/stigmergy/internal/capability"
	"github.com/stigmergy-dev/stigmergy/internal/exec"
	"github.com/stigmergy-dev/stigmergy/internal/plan"
	"github.com/stigmergy-dev/stigmergy/internal/store"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// Outcome summarizes one WorkOnContext cycle.
type Outcome int

const (
	// OutcomeNothing means no claimable task was found.
	OutcomeNothing Outcome = iota
	// OutcomeCompleted means a task was completed with a result.
	OutcomeCompleted
	// OutcomeReleased means the claimed task produced no output and was
	// returned to pending.
	OutcomeReleased
	// OutcomeFailed means the tool failed and the task was marked failed.
	OutcomeFailed
)

// Worked reports whether the cycle completed a task.
func (o Outcome) Worked() bool { return o == OutcomeCompleted }

// String returns a short human-readable outcome description.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeReleased:
		return "released"
	case OutcomeFailed:
		return "failed"
	default:
		return "nothing to do"
	}
}

// Agent is one per-invocation worker.
type Agent struct {
	id       models.AgentID
	store    *store.Store
	registry capability.Registry
	planner  *plan.Planner
	executor exec.Executor
}

// New returns an Agent bound to the given identity.
func New(id models.AgentID, st *store.Store, registry capability.Registry, planner *plan.Planner, executor exec.Executor) *Agent {
	return &Agent{
		id:       id,
		store:    st,
		registry: registry,
		planner:  planner,
		executor: executor,
	}
}

// ID returns the agent's identity.
func (a *Agent) ID() models.AgentID { return a.id }

// errClaimLost marks a claim that another process won between load and
// claim. WorkOnContext translates it into a rescan, never an error.
var errClaimLost = errors.New("task claimed elsewhere")

// WorkOnContext performs at most one unit of work. A tool failure is a
// normal, recorded outcome (OutcomeFailed), not an error; the error
// return is reserved for storage-level problems. Losing a claim race to
// another process is also normal: the board rescans once and reports
// OutcomeNothing if the second pass finds nothing either.
//
// The in-progress claim is advisory. If this process dies mid-task the
// task stays in_progress until someone resets it; the board does not
// lease or heartbeat claims.
func (a *Agent) WorkOnContext(ctx context.Context) (Outcome, error) {
	for attempt := 0; attempt < 2; attempt++ {
		state, err := a.store.Load()
		if err != nil {
			return OutcomeNothing, err
		}
		outcome, err := a.workOn(ctx, state)
		if errors.Is(err, errClaimLost) {
			continue
		}
		return outcome, err
	}
	return OutcomeNothing, nil
}

// workOn claims and executes the next suitable task from an
// already-loaded state. It returns errClaimLost when the chosen task was
// claimed or finished by another process in the meantime.
func (a *Agent) workOn(ctx context.Context, state *models.ProjectState) (Outcome, error) {
	if state.Status != models.ProjectActive {
		return OutcomeNothing, nil
	}

	task := NextAction(state, a.id, a.registry)
	if task == nil {
		return OutcomeNothing, nil
	}

	if err := a.store.ClaimTask(task.ID, a.id); err != nil {
		if errors.Is(err, store.ErrBadTransition) || errors.Is(err, store.ErrTaskNotFound) {
			return OutcomeNothing, errClaimLost
		}
		return OutcomeNothing, err
	}

	name, args := a.invocation(task)
	res := a.executor.Execute(ctx, name, args...)

	switch {
	case res.Success && strings.TrimSpace(res.Stdout) != "":
		if err := a.store.UpdateTaskStatus(task.ID, models.TaskStatusCompleted, res.Stdout, a.id); err != nil {
			return OutcomeNothing, err
		}
		if err := a.createFollowUps(task, res.Stdout); err != nil {
			return OutcomeNothing, err
		}
		return OutcomeCompleted, nil

	case res.Success:
		// The tool ran but produced nothing usable. Release the claim so
		// any capable agent, including this one, can retry later.
		if err := a.store.ReleaseTask(task.ID, a.id); err != nil {
			return OutcomeNothing, err
		}
		return OutcomeReleased, nil

	default:
		errText := res.Stderr
		if errText == "" {
			errText = "tool failed without error output"
		}
		if err := a.store.UpdateTaskStatus(task.ID, models.TaskStatusFailed, errText, a.id); err != nil {
			return OutcomeNothing, err
		}
		return OutcomeFailed, nil
	}
}

// createFollowUps plans and inserts follow-up tasks, logging each one.
func (a *Agent) createFollowUps(task *models.Task, result string) error {
	for _, spec := range a.planner.PlanFollowUps(task, result) {
		id, err := a.store.CreateTask(spec.Type, spec.Description, spec.AssignedTo, spec.Priority)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("created follow-up task %s from task %s", id, task.ID)
		if err := a.store.AddCollaborationLog(msg, a.id); err != nil {
			return err
		}
	}
	return nil
}

// invocation maps a task to the CLI binary and arguments for this agent.
// Typed tasks get a role prompt; command_execution tasks pass their
// description through as argv; anything else sends the description as a
// single prompt argument.
func (a *Agent) invocation(task *models.Task) (string, []string) {
	name := a.registry.Command(a.id)
	switch task.Type {
	case "command_execution":
		return name, strings.Fields(task.Description)
	case "code_generation":
		return name, []string{"Generate code: " + task.Description}
	case "review":
		return name, []string{"Review and optimize: " + task.Description}
	case "documentation":
		return name, []string{"Write documentation: " + task.Description}
	case "testing":
		return name, []string{"Write tests: " + task.Description}
	default:
		return name, []string{task.Description}
	}
}
