package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/stigmergy-dev/stigmergy/internal/config"
	"github.com/stigmergy-dev/stigmergy/internal/store"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// debounceDelay is how long the watcher waits for a burst of rename
// events to settle before reloading.
const debounceDelay = 50 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow board changes live",
	Long: `Watch the project directory and print a one-line board summary
every time another process updates the shared state. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// First load synthesizes the board if needed, so there is always a
	// state file to watch.
	state, err := st.Load()
	if err != nil {
		return err
	}
	printSummary(state)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic renames replace the
	// inode, so a file watch would go stale after the first update.
	if err := watcher.Add(st.Dir()); err != nil {
		return fmt.Errorf("watching %s: %w", st.Dir(), err)
	}

	return followEvents(cmd.Context(), watcher.Events, watcher.Errors, func() {
		state, err := st.Load()
		if err != nil {
			fmt.Printf("reload failed: %v\n", err)
			return
		}
		printSummary(state)
	})
}

// followEvents reloads after state-file events settle for debounceDelay.
// The timer re-arms on every event in a burst, so the trailing save of
// two rapid writes is still rendered.
func followEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, reload func()) error {
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != store.StateFile {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// Renames fire several events per store; wait out the burst.
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			reload()
		case <-errs:
			// Keep watching.
		}
	}
}

func printSummary(state *models.ProjectState) {
	fmt.Printf("[%s] v%d  pending=%d in_progress=%d completed=%d failed=%d\n",
		time.Now().Format("15:04:05"),
		state.Version,
		len(state.TasksByStatus(models.TaskStatusPending)),
		len(state.TasksByStatus(models.TaskStatusInProgress)),
		len(state.TasksByStatus(models.TaskStatusCompleted)),
		len(state.TasksByStatus(models.TaskStatusFailed)),
	)
}
