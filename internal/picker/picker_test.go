package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speclite/speclite/internal/corpus"
)

func testProfiles() []corpus.Profile {
	return []corpus.Profile{
		{ID: "claude", Name: "Claude Code"},
		{ID: "codex", Name: "Codex CLI"},
		{ID: "gemini", Name: "Gemini CLI"},
	}
}

func press(t *testing.T, m model, k string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}

	next, _ := m.Update(msg)
	out, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func TestToggleAndConfirm(t *testing.T) {
	m := newModel(testProfiles())

	m = press(t, m, " ")     // select claude
	m = press(t, m, "down")  // move to codex
	m = press(t, m, "down")  // move to gemini
	m = press(t, m, " ")     // select gemini
	m = press(t, m, "enter") // confirm

	if !m.confirmed {
		t.Fatal("enter with a non-empty selection should confirm")
	}
	ids := m.chosen()
	if len(ids) != 2 || ids[0] != "claude" || ids[1] != "gemini" {
		t.Errorf("chosen = %v", ids)
	}
}

func TestToggleTwiceDeselects(t *testing.T) {
	m := newModel(testProfiles())
	m = press(t, m, " ")
	m = press(t, m, " ")
	if len(m.chosen()) != 0 {
		t.Errorf("chosen = %v, want empty", m.chosen())
	}
}

func TestEmptyConfirmIsNoOp(t *testing.T) {
	m := newModel(testProfiles())
	m = press(t, m, "enter")
	if m.confirmed {
		t.Error("enter with nothing selected should not confirm")
	}
}

func TestEscCancels(t *testing.T) {
	m := newModel(testProfiles())
	m = press(t, m, " ")
	m = press(t, m, "esc")
	if !m.cancelled {
		t.Error("esc should cancel")
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	m := newModel(testProfiles())

	m = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}

	for range 10 {
		m = press(t, m, "down")
	}
	if m.cursor != len(testProfiles())-1 {
		t.Errorf("cursor = %d after overshooting down", m.cursor)
	}
}

func TestViewListsProfiles(t *testing.T) {
	m := newModel(testProfiles())
	m = press(t, m, " ")

	view := m.View()
	for _, want := range []string{"Claude Code", "Codex CLI", "Gemini CLI", "[x]", "[ ]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
