package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitpkg/pkg/backend"
	"github.com/matzehuels/gitpkg/pkg/orchestrator"
	"github.com/matzehuels/gitpkg/pkg/registry"
)

// uiCommand creates the interactive package manager command.
func (c *CLI) uiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Manage packages interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the alternate screen.
			logPath := filepath.Join(os.TempDir(), appName+"-ui.log")
			logFile, err := os.Create(logPath)
			if err != nil {
				return err
			}
			defer logFile.Close()
			ctx := withLogger(cmd.Context(), newLogger(logFile, c.Logger.GetLevel()))

			// The view renders list progress itself.
			s, err := c.openSession(ctx, nil)
			if err != nil {
				return err
			}
			defer s.close()

			s.orch.RequestRefresh(ctx)
			m := newPackagesModel(ctx, s.orch, s.cfg.TickInterval)
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return err
			}
			printDetail("Log written to %s", logPath)
			return nil
		},
	}
}

// =============================================================================
// PackagesModel - Interactive package manager
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// tickMsg drives the orchestrator from the bubbletea event loop.
type tickMsg time.Time

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// PackagesModel is the bubbletea model for the interactive package manager.
// All orchestrator calls happen on the bubbletea update goroutine.
type PackagesModel struct {
	ctx      context.Context
	orch     *orchestrator.Orchestrator
	interval time.Duration

	input   textinput.Model
	spinner spinner.Model
	focus   focusArea
	cursor  int
	status  string
	height  int
}

func newPackagesModel(ctx context.Context, orch *orchestrator.Orchestrator, interval time.Duration) PackagesModel {
	input := textinput.New()
	input.Placeholder = "https://github.com/owner/package.git"
	input.Prompt = "URL › "
	input.CharLimit = 512
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner

	return PackagesModel{
		ctx:      ctx,
		orch:     orch,
		interval: interval,
		input:    input,
		spinner:  sp,
		height:   15,
	}
}

func (m PackagesModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tickEvery(m.interval))
}

func (m PackagesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.orch.Tick(m.ctx)
		m.clampCursor()
		return m, tickEvery(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.height = msg.Height - 12
		if m.height < 5 {
			m.height = 5
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PackagesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == focusInput {
			m.focus = focusList
			m.input.Blur()
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()
	case "ctrl+r":
		if m.ready() {
			m.orch.RequestRefresh(m.ctx)
			m.status = "Refreshing"
		}
		return m, nil
	case "ctrl+u":
		if m.ready() {
			n := len(m.orch.Records())
			m.orch.QueueReinstallAll(m.ctx)
			m.status = fmt.Sprintf("Updating %d package(s)", n)
		}
		return m, nil
	}

	if m.focus == focusInput {
		if msg.Type == tea.KeyEnter {
			if m.ready() && m.orch.Enqueue(m.ctx, m.input.Value()) {
				m.status = "Queued " + strings.TrimSpace(m.input.Value())
				m.input.Reset()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	recs := m.orch.Records()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(recs)-1 {
			m.cursor++
		}
	case "enter":
		if rec, ok := m.selected(recs); ok && m.ready() {
			m.orch.QueueReinstall(m.ctx, rec)
			m.status = "Reinstalling " + rec.Name
		}
	case "d", "delete":
		if rec, ok := m.selected(recs); ok {
			if err := m.orch.RemovePackage(m.ctx, rec); err != nil {
				m.status = err.Error()
			} else {
				m.status = "Removing " + rec.Name
			}
		}
	}
	return m, nil
}

// ready reports whether user actions are enabled.
func (m PackagesModel) ready() bool {
	return !m.orch.Busy()
}

func (m PackagesModel) selected(recs []registry.Record) (registry.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(recs) {
		return registry.Record{}, false
	}
	return recs[m.cursor], true
}

func (m *PackagesModel) clampCursor() {
	n := len(m.orch.Records())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m PackagesModel) View() string {
	var b strings.Builder
	snap := m.orch.Snapshot()

	b.WriteString(StyleTitle.Render("Git Packages"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(m.statusLine(snap))
	b.WriteString("\n")

	if len(snap.Pending) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("Pending"))
		b.WriteString("\n")
		for _, url := range snap.Pending {
			b.WriteString("  " + listDimStyle.Render(iconPending) + " " + StyleLink.Render(url) + "\n")
		}
	}

	b.WriteString("\n")
	if len(snap.Records) == 0 {
		b.WriteString(listDimStyle.Render("  No packages installed"))
	} else {
		cursor := -2
		if m.focus == focusList {
			cursor = m.cursor
		}
		b.WriteString(packageTable(visible(snap.Records, m.cursor, m.height), visibleCursor(cursor, m.cursor, m.height)).Render())
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(snap.Records))))
	}

	b.WriteString("\n\n")
	help := "enter add  tab packages  ctrl+r refresh  ctrl+u update all  ctrl+c quit"
	if m.focus == focusList {
		help = "↑/↓ navigate  enter reinstall  d remove  tab url  ctrl+r refresh  ctrl+u update all  q quit"
	}
	b.WriteString(listDimStyle.Render(help))

	return b.String()
}

func (m PackagesModel) statusLine(snap orchestrator.Snapshot) string {
	switch snap.State {
	case orchestrator.StateIdle:
		if m.status == "" {
			return StyleSuccess.Render(iconSuccess) + " " + listDimStyle.Render("Ready")
		}
		return StyleSuccess.Render(iconSuccess) + " " + listDimStyle.Render(m.status)
	case orchestrator.StateListing:
		return m.spinner.View() + " " + listDimStyle.Render("Fetching package info")
	default:
		what := snap.State.String()
		if snap.Op == backend.OpAdd {
			what = "Installing " + snap.Target
		} else if snap.Op == backend.OpRemove {
			what = "Removing " + snap.Target
		}
		return m.spinner.View() + " " + listDimStyle.Render(what)
	}
}

// visible returns the window of records around cursor that fits height.
func visible(recs []registry.Record, cursor, height int) []registry.Record {
	if len(recs) <= height {
		return recs
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	return recs[start : start+height]
}

// visibleCursor maps a cursor index into the window returned by visible.
func visibleCursor(highlight, cursor, height int) int {
	if highlight < 0 {
		return highlight
	}
	if cursor >= height {
		return highlight - (cursor - height + 1)
	}
	return highlight
}
