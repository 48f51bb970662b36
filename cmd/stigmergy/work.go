package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/agent"
	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/internal/exec"
	"github.com/stigmergy-dev/stigmergy/internal/plan"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

var workCmd = &cobra.Command{
	Use:   "work <agent>",
	Short: "Perform one unit of work as the given agent",
	Long: `Load the shared board, claim at most one suitable task, run the
agent's CLI tool on it, and record the outcome.

Exit status is 0 both when a task was worked and when there was nothing
to do; an attempted-and-recorded tool failure is a normal outcome.
Non-zero exits are reserved for unrecoverable setup errors such as an
unreadable project directory.

Examples:
  stigmergy work claude
  stigmergy work gemini --project ./shared-board`,
	Args: cobra.ExactArgs(1),
	RunE: runWork,
}

func runWork(cmd *cobra.Command, args []string) error {
	agentID := models.AgentID(args[0])

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := exec.NewRunner(cfg.Executor.Timeout)
	runner.Dir = projectDir

	worker := agent.New(
		agentID,
		st,
		cfg.Registry(),
		plan.NewPlanner(cfg.Planner.MaxFollowUps),
		runner,
	)

	outcome, err := worker.WorkOnContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("working board in %s: %w", projectDir, err)
	}

	// Every outcome below exits 0: an attempted-and-recorded failure is
	// a normal result of working the board.
	switch outcome {
	case agent.OutcomeCompleted:
		color.Green("agent %s completed a task", agentID)
	case agent.OutcomeFailed:
		color.Red("agent %s: task failed, recorded on the board", agentID)
	case agent.OutcomeReleased:
		color.Yellow("agent %s: tool produced no output, task released", agentID)
	default:
		fmt.Printf("agent %s: nothing to do\n", agentID)
	}
	return nil
}
