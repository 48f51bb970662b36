package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/agent"
	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

var statusAgent string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of the shared board",
	Long: `Display the current state of the shared board: task counts per
status, the pending queue in claim order, and recent activity.

With --agent, also shows which task that agent would claim next.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAgent, "agent", "", "show the next task this agent would claim")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := st.Load()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%s", state.Name)
	fmt.Printf(" (%s, v%d)\n\n", state.Status, state.Version)

	for _, s := range []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
		models.TaskStatusFailed,
	} {
		fmt.Printf("  %s %d\n", statusColor(s), len(state.TasksByStatus(s)))
	}

	pending := state.TasksByStatus(models.TaskStatusPending)
	if len(pending) > 0 {
		models.SortTasks(pending)
		bold.Printf("\nPending queue:\n")
		for _, t := range pending {
			line := fmt.Sprintf("  %s  %s  %s", t.ID, t.Priority, t.Description)
			if t.AssignedTo != "" {
				line += fmt.Sprintf("  (reserved for %s)", t.AssignedTo)
			}
			fmt.Println(line)
		}
	}

	if statusAgent != "" {
		next := agent.NextAction(state, models.AgentID(statusAgent), cfg.Registry())
		if next == nil {
			fmt.Printf("\nagent %s: nothing to claim\n", statusAgent)
		} else {
			fmt.Printf("\nagent %s would claim: %s  %s\n", statusAgent, next.ID, next.Description)
		}
	}

	if n := len(state.CollaborationHistory); n > 0 {
		last := state.CollaborationHistory[n-1]
		fmt.Printf("\nlast activity: %s (%d log entries)\n", last.Message, n)
	}
	return nil
}
