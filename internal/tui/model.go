package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
)

// View represents the current view.
type View int

const (
	ViewList View = iota
	ViewDetail
)

// TreeInfo holds one tree's state for display.
type TreeInfo struct {
	Tree     tree.Tree
	Snapshot git.Snapshot
	Error    error
}

// Status summarises the tree in one word.
func (i TreeInfo) Status() string {
	switch {
	case i.Error != nil:
		return StatusNameError
	case i.Snapshot.Detached:
		return StatusNameDetached
	case i.Snapshot.Dirty():
		return StatusNameDirty
	case i.Snapshot.Ahead > 0 && i.Snapshot.Behind > 0:
		return StatusNameDiverged
	default:
		return StatusNameClean
	}
}

// Sync renders the ahead/behind counts against the upstream.
func (i TreeInfo) Sync() string {
	if i.Snapshot.Upstream == "" {
		return "-"
	}
	return fmt.Sprintf("↑%d ↓%d", i.Snapshot.Ahead, i.Snapshot.Behind)
}

// LockChecker reports whether another gigit command holds the pair lock.
type LockChecker interface {
	IsLocked(key string) (bool, int, error)
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx           context.Context
	cancel        context.CancelFunc
	runner        git.Runner
	pair          tree.Pair
	locks         LockChecker
	lockKey       string
	lockedBy      int
	trees         []TreeInfo
	table         table.Model
	currentView   View
	selectedIndex int
	width         int
	height        int
	refreshTicker time.Duration
	lastRefresh   time.Time
	err           error
	quitting      bool
}

// KeyMap defines the keybindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Messages
type tickMsg time.Time
type refreshMsg struct {
	trees    []TreeInfo
	lockedBy int
}
type errMsg struct{ err error }

// NewModel creates a new dashboard model for pair.
func NewModel(ctx context.Context, runner git.Runner, pair tree.Pair, refreshInterval time.Duration) Model {
	ctx, cancel := context.WithCancel(ctx)

	columns := []table.Column{
		{Title: "TREE", Width: 10},
		{Title: "BRANCH", Width: 20},
		{Title: "UPSTREAM", Width: 24},
		{Title: "SYNC", Width: 10},
		{Title: "STATUS", Width: 12},
		{Title: "CHANGES", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(5),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("15")).
		Background(ColorPrimary).
		Bold(false)
	t.SetStyles(s)

	return Model{
		ctx:           ctx,
		cancel:        cancel,
		runner:        runner,
		pair:          pair,
		table:         t,
		currentView:   ViewList,
		refreshTicker: refreshInterval,
	}
}

// WithLock makes the dashboard show when another gigit command holds key.
func (m Model) WithLock(locks LockChecker, key string) Model {
	m.locks = locks
	m.lockKey = key
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTrees(),
		m.tick(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Refresh):
			return m, m.loadTrees()

		case key.Matches(msg, keys.Enter):
			if m.currentView == ViewList && len(m.trees) > 0 {
				m.selectedIndex = m.table.Cursor()
				m.currentView = ViewDetail
			}
			return m, nil

		case key.Matches(msg, keys.Back):
			if m.currentView == ViewDetail {
				m.currentView = ViewList
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 4)

	case tickMsg:
		return m, tea.Batch(m.loadTrees(), m.tick())

	case refreshMsg:
		m.trees = msg.trees
		m.lockedBy = msg.lockedBy
		m.lastRefresh = time.Now()
		m.err = nil
		m.updateTable()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	if m.currentView == ViewList {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.currentView {
	case ViewDetail:
		return m.detailView()
	default:
		return m.listView()
	}
}

func (m *Model) listView() string {
	var s string

	s += TitleStyle.Render("gigit dashboard") + "\n\n"

	s += m.table.View() + "\n"

	switch {
	case m.lockedBy > 0:
		s += "\n" + StatusDirty.Render(fmt.Sprintf("⚠ trees are locked by gigit (PID %d)", m.lockedBy)) + "\n"
	case m.lockedBy < 0:
		s += "\n" + StatusDirty.Render("⚠ trees are locked by another gigit command") + "\n"
	}

	lastRefresh := m.lastRefresh.Format("15:04:05")
	footer := HelpStyle.Render(fmt.Sprintf(
		"[↑↓] Navigate  [Enter] Details  [r] Refresh  [q] Quit  |  Last refresh: %s",
		lastRefresh,
	))
	s += footer

	return s
}

func (m *Model) detailView() string {
	if m.selectedIndex >= len(m.trees) {
		return "No tree selected"
	}

	info := m.trees[m.selectedIndex]
	snap := info.Snapshot

	var s string

	s += GetLabelStyle(info.Tree.Label).Render(info.Tree.Label.String()) + "\n\n"

	s += LabelStyle.Render("Path:") + ValueStyle.Render(info.Tree.Path) + "\n"
	status := info.Status()
	s += LabelStyle.Render("Status:") + GetStatusStyle(status).Render(GetStatusIcon(status)+" "+status) + "\n"

	if info.Error != nil {
		s += LabelStyle.Render("Error:") + ErrorStyle.Render(info.Error.Error()) + "\n"
	} else {
		branch := snap.Branch
		if snap.Detached {
			branch = "(detached HEAD)"
		}
		s += LabelStyle.Render("Branch:") + ValueStyle.Render(branch) + "\n"
		upstream := snap.Upstream
		if upstream == "" {
			upstream = "-"
		}
		s += LabelStyle.Render("Upstream:") + ValueStyle.Render(upstream) + "\n"
		s += LabelStyle.Render("Sync:") + ValueStyle.Render(info.Sync()) + "\n"
	}
	s += "\n"

	if len(snap.Modified) > 0 {
		s += LabelStyle.Render("Modified:") + "\n"
		for _, p := range snap.Modified {
			s += "  " + StatusDirty.Render("M") + " " + ValueStyle.Render(p) + "\n"
		}
		s += "\n"
	}

	if len(snap.Untracked) > 0 {
		s += LabelStyle.Render("Untracked:") + "\n"
		for _, p := range snap.Untracked {
			s += "  " + StatusInactive.Render("?") + " " + ValueStyle.Render(p) + "\n"
		}
		s += "\n"
	}

	s += HelpStyle.Render("[Esc] Back  [r] Refresh  [q] Quit")

	return s
}

func (m *Model) updateTable() {
	rows := make([]table.Row, len(m.trees))
	for i, info := range m.trees {
		branch := info.Snapshot.Branch
		switch {
		case info.Error != nil:
			branch = "-"
		case info.Snapshot.Detached:
			branch = "(detached)"
		}

		upstream := info.Snapshot.Upstream
		if upstream == "" {
			upstream = "-"
		}

		status := info.Status()

		rows[i] = table.Row{
			info.Tree.Label.String(),
			branch,
			upstream,
			info.Sync(),
			GetStatusIcon(status) + " " + status,
			fmt.Sprintf("%d", info.Snapshot.Changes()),
		}
	}
	m.table.SetRows(rows)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshTicker, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadTrees() tea.Cmd {
	return func() tea.Msg {
		ctx := m.ctx

		trees := m.pair.Trees()
		infos := make([]TreeInfo, len(trees))
		for i, t := range trees {
			snap, res := git.Inspect(ctx, m.runner, t.Path)
			info := TreeInfo{Tree: t, Snapshot: snap}
			if !res.Success {
				info.Error = inspectError(res)
			}
			infos[i] = info
		}

		if err := ctx.Err(); err != nil {
			return errMsg{err}
		}

		msg := refreshMsg{trees: infos}
		if m.locks != nil {
			locked, pid, err := m.locks.IsLocked(m.lockKey)
			if err != nil {
				return errMsg{err}
			}
			if locked {
				msg.lockedBy = pid
				if pid == 0 {
					// holder unknown
					msg.lockedBy = -1
				}
			}
		}

		return msg
	}
}

func inspectError(res git.Result) error {
	if res.Err != nil && strings.TrimSpace(res.Stderr) == "" {
		return res.Err
	}
	return errors.New(strings.TrimSpace(res.Stderr))
}
