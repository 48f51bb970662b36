package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read or append to the collaboration log",
}

var logAddCmd = &cobra.Command{
	Use:   "add <agent> <message...>",
	Short: "Append an entry to the collaboration log",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLogAdd,
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent collaboration log entries",
	Args:  cobra.NoArgs,
	RunE:  runLogShow,
}

func init() {
	logShowCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of entries to show (0 for all)")
	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logShowCmd)
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	message := strings.Join(args[1:], " ")
	if err := st.AddCollaborationLog(message, models.AgentID(args[0])); err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

func runLogShow(cmd *cobra.Command, args []string) error {
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

	entries := state.CollaborationHistory
	if logLimit > 0 && len(entries) > logLimit {
		entries = entries[len(entries)-logLimit:]
	}
	for _, e := range entries {
		agent := string(e.Agent)
		if agent == "" {
			agent = "system"
		}
		fmt.Printf("[%s] [%s] %s\n", e.Timestamp.Format(time.RFC3339), agent, e.Message)
	}
	return nil
}
