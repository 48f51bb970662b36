package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/archive"
	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/internal/store"
)

var projectDir string

var rootCmd = &cobra.Command{
	Use:   "stigmergy",
	Short: "Shared task board for independent CLI agents",
	Long: `stigmergy coordinates independent CLI AI agents through a shared
project directory instead of direct messages.

Each agent invocation reads the board, works at most one task, writes the
outcome back, and exits. The board lives in three fixed files any process
can discover:

  PROJECT_SPEC.json      machine-readable state (source of truth)
  TASKS.md               status-grouped task list (derived view)
  COLLABORATION_LOG.md   chronological log (derived view)

Typical flow:
  stigmergy task create analysis "analyze the quarterly data"
  stigmergy work claude       # one claim-execute-record cycle
  stigmergy status`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "project directory holding the shared board")

	rootCmd.AddCommand(workCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore builds the store for the selected project directory,
// attaching the sqlite archive when configured. The returned cleanup
// must be called before exit.
func openStore(cfg *config.Config) (*store.Store, func(), error) {
	opts := []store.Option{store.WithProjectName(cfg.Project.Name)}
	cleanup := func() {}

	if cfg.Archive.Enabled {
		dir := filepath.Join(projectDir, ".stigmergy")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating archive directory: %w", err)
		}
		arch, err := archive.Open(filepath.Join(dir, archive.FileName))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, store.WithRecorder(arch))
		cleanup = func() { arch.Close() }
	}

	return store.New(projectDir, opts...), cleanup, nil
}
