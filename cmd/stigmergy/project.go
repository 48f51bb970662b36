package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

var projectCmd = &cobra.Command{
	Use:   "project <pause|resume|archive>",
	Short: "Change the project lifecycle state",
	Long: `Change the project lifecycle state. Agents only claim work from an
active project; pausing makes the board read-only for them without
touching any task.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"pause", "resume", "archive"},
	RunE:      runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	var status models.ProjectStatus
	switch args[0] {
	case "pause":
		status = models.ProjectPaused
	case "resume":
		status = models.ProjectActive
	case "archive":
		status = models.ProjectArchived
	default:
		return fmt.Errorf("unknown action %q (want pause, resume, or archive)", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.SetProjectStatus(status); err != nil {
		return err
	}
	fmt.Printf("project is now %s\n", status)
	return nil
}
