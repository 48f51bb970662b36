package agent

import (
	"github.com/stigmergy-dev/stigmergy/internal/capability"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// NextAction picks the task an agent should work on next, or nil when
// there is nothing to do. It is a pure read over loaded state — claiming
// is a separate mutation — so repeated calls against unchanged state
// return the same task.
//
// Selection order:
//  1. pending tasks explicitly assigned to the agent
//  2. unassigned pending tasks the agent's specialty can handle
//
// Ties break by priority (high first) then creation time (oldest first),
// independent of map iteration order, so every process scanning the same
// stored bytes reaches the same conclusion.
func NextAction(state *models.ProjectState, id models.AgentID, registry capability.Registry) *models.Task {
	pending := state.TasksByStatus(models.TaskStatusPending)
	models.SortTasks(pending)

	for _, t := range pending {
		if t.AssignedTo == id {
			return t
		}
	}
	for _, t := range pending {
		if !t.Claimed() && registry.CanHandle(t, id) {
			return t
		}
	}
	return nil
}
