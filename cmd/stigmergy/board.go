package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open a live TUI view of the board",
	Long: `Open a full-screen terminal view of the shared board. The view
reloads the state file periodically, so work done by other agent
processes appears as it lands.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// Synthesize the board up front so the TUI never watches a void.
	if _, err := st.Load(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewBoard(st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board view: %w", err)
	}
	return nil
}
