package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// keyMap holds the inspector's bindings.
type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Up    key.Binding
	Down  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Up, k.Down},
		{k.Help, k.Quit},
	}
}

var inspectorKeys = keyMap{
	Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Next:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
	Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the column inspector: it steps through the state after every column.
type Model struct {
	snapshots []Snapshot
	result    *Result
	cursor    int
	width     int
	height    int
	precision int
	threshold float64

	viewport viewport.Model
	help     help.Model
	keys     keyMap
}

// newInspector builds an inspector over the snapshots of a finished run.
func newInspector(snapshots []Snapshot, result *Result, precision int, threshold float64) Model {
	m := Model{
		snapshots: snapshots,
		result:    result,
		cursor:    max(len(snapshots)-1, 0),
		precision: precision,
		threshold: threshold,
		viewport:  viewport.New(minStateW, 10),
		help:      help.New(),
		keys:      inspectorKeys,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = max(msg.Width-gateListW-8, minStateW)
		m.viewport.Height = max(msg.Height-8, 4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			if m.cursor < len(m.snapshots)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.First):
			m.cursor = 0
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Last):
			m.cursor = max(len(m.snapshots)-1, 0)
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// current returns the result as it stood after the selected column.
func (m Model) current() *Result {
	if len(m.snapshots) == 0 {
		return m.result
	}
	s := m.snapshots[m.cursor]
	return &Result{
		Registers: m.result.Registers,
		Mixed:     s.Mixed,
		State:     s.State,
		Columns:   s.Column + 1,
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(RenderTable(m.current(), m.precision, m.threshold))
	m.viewport.GotoTop()
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var left strings.Builder
	if len(m.snapshots) == 0 {
		left.WriteString(titleStyle.Render(padCenter("no columns", gateListW)))
	} else {
		s := m.snapshots[m.cursor]
		left.WriteString(titleStyle.Render(padCenter(fmt.Sprintf("Column %d/%d", s.Column+1, len(m.snapshots)), gateListW)))
		left.WriteString("\n\n")
		left.WriteString(renderColumn(s.Gates, m.result.Registers))
		left.WriteString("\n\n")
		for _, g := range s.Gates {
			if g.Kind == KindIdentity {
				continue
			}
			label := activeGateStyle.Render(g.String())
			if g.Kind == KindKraus {
				label += dimStyle.Render(fmt.Sprintf(" (%d kraus)", len(g.Matrices)))
			}
			left.WriteString(label + "\n")
		}
	}

	paneH := max(m.height-4, 6)
	columnPane := columnPaneStyle.Width(gateListW).Height(paneH).Render(left.String())
	statePane := statePaneStyle.Height(paneH).Render(m.viewport.View())
	helpPane := helpPaneStyle.Width(max(m.width-4, 10)).Render(m.help.View(m.keys))

	top := lipgloss.JoinHorizontal(lipgloss.Top, columnPane, statePane)
	return lipgloss.JoinVertical(lipgloss.Left, top, helpPane)
}
