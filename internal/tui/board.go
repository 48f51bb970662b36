// Package tui provides the live task-board terminal interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stigmergy-dev/stigmergy/internal/views"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// refreshInterval is how often the board reloads the state file.
const refreshInterval = 2 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	completedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Loader reloads the board state; satisfied by *store.Store.
type Loader interface {
	Load() (*models.ProjectState, error)
}

// reloadMsg carries a fresh state (or a load failure) into Update.
type reloadMsg struct {
	state *models.ProjectState
	err   error
}

// Board is the bubbletea model for the live task board.
type Board struct {
	loader Loader
	state  *models.ProjectState
	err    error

	log    viewport.Model
	width  int
	height int
	ready  bool
}

// NewBoard creates a Board reading from the given loader.
func NewBoard(loader Loader) *Board {
	return &Board{loader: loader}
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tea.Batch(b.reload, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return reloadMsg{}
	})
}

// reload loads the state synchronously as a tea command.
func (b *Board) reload() tea.Msg {
	state, err := b.loader.Load()
	return reloadMsg{state: state, err: err}
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		}
		var cmd tea.Cmd
		b.log, cmd = b.log.Update(msg)
		return b, cmd

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		logHeight := msg.Height / 3
		if logHeight < 4 {
			logHeight = 4
		}
		if !b.ready {
			b.log = viewport.New(msg.Width, logHeight)
			b.ready = true
		} else {
			b.log.Width = msg.Width
			b.log.Height = logHeight
		}
		b.syncLog()
		return b, nil

	case reloadMsg:
		if msg.state == nil && msg.err == nil {
			// Timer tick: kick off a reload and re-arm the timer.
			return b, tea.Batch(b.reload, tick())
		}
		b.state = msg.state
		b.err = msg.err
		b.syncLog()
		return b, nil
	}
	return b, nil
}

// syncLog refreshes the log viewport content, pinned to the bottom.
func (b *Board) syncLog() {
	if !b.ready || b.state == nil {
		return
	}
	b.log.SetContent(views.RenderLog(b.state))
	b.log.GotoBottom()
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.err != nil {
		return fmt.Sprintf("cannot read board: %v\n\npress q to quit\n", b.err)
	}
	if b.state == nil || !b.ready {
		return "loading board..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s — %s (v%d)", b.state.Name, b.state.Status, b.state.Version)))
	sb.WriteString("\n\n")

	sections := []struct {
		status models.TaskStatus
		title  string
		style  lipgloss.Style
	}{
		{models.TaskStatusInProgress, "In Progress", inProgressStyle},
		{models.TaskStatusPending, "Pending", pendingStyle},
		{models.TaskStatusCompleted, "Completed", completedStyle},
		{models.TaskStatusFailed, "Failed", failedStyle},
	}
	for _, sec := range sections {
		tasks := b.state.TasksByStatus(sec.status)
		if len(tasks) == 0 {
			continue
		}
		models.SortTasks(tasks)
		sb.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", sec.title, len(tasks))))
		sb.WriteString("\n")
		for _, t := range tasks {
			line := fmt.Sprintf("  %s  %s  %s", t.ID, t.Priority, truncate(t.Description, b.width-30))
			if t.AssignedTo != "" {
				line += fmt.Sprintf("  [%s]", t.AssignedTo)
			}
			sb.WriteString(sec.style.Render(line))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(sectionStyle.Render("Log"))
	sb.WriteString("\n")
	sb.WriteString(b.log.View())
	sb.WriteString("\n")
	sb.WriteString(footerStyle.Render("q quit · arrows scroll log · refreshes every 2s"))
	return sb.String()
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
