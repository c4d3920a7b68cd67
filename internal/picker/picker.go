// Package picker provides the interactive agent selection shown when init
// or upgrade is run without --ai on a terminal.
package picker

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/speclite/speclite/internal/corpus"
)

// ErrCancelled is returned when the user aborts the selection.
var ErrCancelled = errors.New("agent selection cancelled")

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c", "q"),
		key.WithHelp("esc", "cancel"),
	),
}

type model struct {
	profiles  []corpus.Profile
	selected  map[int]bool
	cursor    int
	confirmed bool
	cancelled bool

	titleStyle  lipgloss.Style
	cursorStyle lipgloss.Style
	checkStyle  lipgloss.Style
	dimStyle    lipgloss.Style
	helpStyle   lipgloss.Style
}

func newModel(profiles []corpus.Profile) model {
	return model{
		profiles:    profiles,
		selected:    make(map[int]bool),
		titleStyle:  lipgloss.NewStyle().Bold(true),
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		checkStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		dimStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		helpStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.profiles)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, keys.Confirm):
		// Confirming an empty selection is a no-op, not a cancel.
		if len(m.chosen()) > 0 {
			m.confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.titleStyle.Render("Which AI assistants should this project support?"))
	b.WriteString("\n\n")

	for i, p := range m.profiles {
		cursor := "  "
		if i == m.cursor {
			cursor = m.cursorStyle.Render("> ")
		}

		check := "[ ]"
		if m.selected[i] {
			check = m.checkStyle.Render("[x]")
		}

		b.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursor, check, p.Name, m.dimStyle.Render("("+p.ID+")")))
	}

	b.WriteString(m.helpStyle.Render("space toggle · enter confirm · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// chosen returns the selected profile IDs in display order.
func (m model) chosen() []string {
	var ids []string
	for i, p := range m.profiles {
		if m.selected[i] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Run presents the multi-select and returns the chosen agent IDs.
// At least one agent must be selected to confirm.
func Run(profiles []corpus.Profile) ([]string, error) {
	sorted := make([]corpus.Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	final, err := tea.NewProgram(newModel(sorted)).Run()
	if err != nil {
		return nil, fmt.Errorf("running agent picker: %w", err)
	}

	m, ok := final.(model)
	if !ok || !m.confirmed {
		return nil, ErrCancelled
	}
	return m.chosen(), nil
}
