package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

var (
	taskAssign   string
	taskPriority string
	listStatus   string
	resetAssign  string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, list, and reset tasks on the board",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <type> <description...>",
	Short: "Create a new pending task",
	Long: `Create a new pending task on the shared board.

The type categorizes the task (analysis, code_generation, review,
documentation, testing, command_execution, ...). Everything after the
type becomes the description that agents match their specialties against.

Examples:
  stigmergy task create analysis "analyze last week's error logs"
  stigmergy task create code_generation "implement a rate limiter" --priority high
  stigmergy task create translation "translate the README" --assign gemini`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTaskCreate,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by status",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Move a failed task back to pending",
	Long: `Move a failed task back to pending so a capable agent can retry it.

Failed tasks are terminal until reset; nothing re-claims them
automatically. The reset clears the stored error text and, unless
--assign is given, drops the assignment so any capable agent may claim.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskReset,
}

func init() {
	taskCreateCmd.Flags().StringVar(&taskAssign, "assign", "", "reserve the task for a specific agent")
	taskCreateCmd.Flags().StringVar(&taskPriority, "priority", "", "low, medium, or high (default medium)")
	taskListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (pending, in_progress, completed, failed)")
	taskResetCmd.Flags().StringVar(&resetAssign, "assign", "", "reassign the task to a specific agent")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskResetCmd)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	taskType := args[0]
	description := strings.Join(args[1:], " ")

	id, err := st.CreateTask(taskType, description, models.AgentID(taskAssign), models.Priority(taskPriority))
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	fmt.Println(id)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
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

	var tasks []*models.Task
	if listStatus != "" {
		status := models.TaskStatus(listStatus)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", listStatus)
		}
		tasks = state.TasksByStatus(status)
	} else {
		for _, t := range state.Tasks {
			tasks = append(tasks, t)
		}
	}
	models.SortTasks(tasks)

	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	for _, t := range tasks {
		fmt.Printf("%s  %s  %s  %s\n", statusColor(t.Status), t.ID, t.Priority, t.Description)
	}
	return nil
}

func runTaskReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.ResetTask(args[0], models.AgentID(resetAssign)); err != nil {
		return fmt.Errorf("resetting task: %w", err)
	}
	color.Green("task %s reset to pending", args[0])
	return nil
}

// statusColor renders a status as a fixed-width colored tag.
func statusColor(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusPending:
		return color.YellowString("%-11s", s)
	case models.TaskStatusInProgress:
		return color.CyanString("%-11s", s)
	case models.TaskStatusCompleted:
		return color.GreenString("%-11s", s)
	case models.TaskStatusFailed:
		return color.RedString("%-11s", s)
	default:
		return fmt.Sprintf("%-11s", s)
	}
}
