package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/archive"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show archived task transitions",
	Long: `Print recent task status transitions from the sqlite audit archive.

The archive records every transition as it happens, so churn that the
state file overwrites (claims, releases, resets) stays queryable.
Requires archive.enabled: true in the configuration; boards mutated
without it have no archive to read.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of transitions to show")
}

func runAudit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(projectDir, ".stigmergy", archive.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("no archive found; set archive.enabled: true and mutate the board first")
		return nil
	}

	arch, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer arch.Close()

	transitions, err := arch.RecentTransitions(auditLimit)
	if err != nil {
		return err
	}
	if len(transitions) == 0 {
		fmt.Println("archive is empty")
		return nil
	}
	for _, tr := range transitions {
		agent := string(tr.Agent)
		if agent == "" {
			agent = "system"
		}
		fmt.Printf("[%s] %s  %s -> %s  (%s)\n",
			tr.At.Format(time.RFC3339), tr.TaskID, tr.From, tr.To, agent)
	}
	return nil
}
