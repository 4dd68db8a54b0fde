// Package tui renders the coordinator's persisted snapshot, either as a
// one-shot text report (pipewatch status) or a live-refreshing Bubble
// Tea dashboard (pipewatch watch). Both read state.json/pipewatch.db
// straight off disk rather than talking to a running process, the same
// disconnected-reader approach as the teacher's render.Context, which
// parses .codemap/state.json directly instead of querying a live daemon.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipewatch/internal/persist"
)

var (
	pink    = lipgloss.Color("212")
	purple  = lipgloss.Color("99")
	cyan    = lipgloss.Color("86")
	green   = lipgloss.Color("78")
	yellow  = lipgloss.Color("220")
	gray    = lipgloss.Color("245")
	darkGray = lipgloss.Color("238")
	white   = lipgloss.Color("255")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(pink).MarginBottom(1)

	headerBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 2).
			MarginBottom(1)

	sectionTitle = lipgloss.NewStyle().Bold(true).Foreground(cyan).MarginTop(1)

	statLabel = lipgloss.NewStyle().Foreground(gray)
	statValue = lipgloss.NewStyle().Bold(true).Foreground(white)

	pipeStyle = lipgloss.NewStyle().Foreground(purple)
	dimStyle  = lipgloss.NewStyle().Foreground(darkGray)
	okStyle   = lipgloss.NewStyle().Foreground(green)
	waitStyle = lipgloss.NewStyle().Foreground(yellow)
)

// Render produces a one-shot text report of snap, for "pipewatch status".
func Render(projectName string, snap *persist.Snapshot) string {
	var b strings.Builder

	header := titleStyle.Render(projectName)
	b.WriteString(headerBox.Render(header))
	b.WriteString("\n")

	if snap == nil {
		b.WriteString(dimStyle.Render("no persisted state yet") + "\n")
		return b.String()
	}

	statsLine := statLabel.Render("paths ") + statValue.Render(fmt.Sprintf("%d", len(snap.Paths))) +
		statLabel.Render("  ·  pipes ") + statValue.Render(fmt.Sprintf("%d", len(snap.Pipes)))
	b.WriteString(statsLine + "\n")

	if len(snap.Pipes) > 0 {
		b.WriteString(sectionTitle.Render("◆ Pipes") + "\n")
		pipes := append([]persist.PipeEntry(nil), snap.Pipes...)
		sort.Slice(pipes, func(i, j int) bool { return pipes[i].PathOut < pipes[j].PathOut })
		max := 10
		for i, p := range pipes {
			if i >= max {
				fmt.Fprintf(&b, dimStyle.Render("  ... +%d more")+"\n", len(pipes)-max)
				break
			}
			fmt.Fprintf(&b, "  %s %s %s %s\n",
				pipeStyle.Render(p.Tool), dimStyle.Render(p.PathIn), "->", pipeStyle.Render(p.PathOut))
		}
	}

	if len(snap.Paths) > 0 {
		b.WriteString(sectionTitle.Render("◆ Monitored Paths") + "\n")
		paths := append([]persist.PathEntry(nil), snap.Paths...)
		sort.Slice(paths, func(i, j int) bool { return paths[i].Path < paths[j].Path })
		max := 10
		for i, p := range paths {
			if i >= max {
				fmt.Fprintf(&b, dimStyle.Render("  ... +%d more")+"\n", len(paths)-max)
				break
			}
			t := time.UnixMilli(p.Changed)
			fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(p.Path), dimStyle.Render(t.Format("2006-01-02 15:04:05")))
		}
	}

	return b.String()
}

// Loader returns the current snapshot, or nil if nothing has been
// persisted yet.
type Loader func() (*persist.Snapshot, error)

// Model is the Bubble Tea dashboard for "pipewatch watch": it polls
// Loader on a fixed tick and redraws the whole frame, the same
// poll-and-redraw shape as the teacher's CloneAnimation.Render, scaled
// up from a single progress line to a full-screen report.
type Model struct {
	project  string
	load     Loader
	interval time.Duration

	snap *persist.Snapshot
	err  error
}

// NewModel builds a watch dashboard that polls load every interval.
func NewModel(project string, load Loader, interval time.Duration) Model {
	return Model{project: project, load: load, interval: interval}
}

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tick())
}

type snapMsg struct {
	snap *persist.Snapshot
	err  error
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.load()
		return snapMsg{snap: snap, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), m.tick())
	case snapMsg:
		m.snap = msg.snap
		m.err = msg.err
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return okStyle.Render("pipewatch watch") + "\n" + waitStyle.Render(m.err.Error()) + "\n" + dimStyle.Render("press q to quit")
	}
	return Render(m.project, m.snap) + "\n" + dimStyle.Render("press q to quit")
}
