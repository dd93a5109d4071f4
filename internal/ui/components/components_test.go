package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestMenuNavigationSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
		{Label: "d"},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}

	m, used := m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if !used || m.Selected != 3 {
		t.Errorf("down: selected = %d (used %v), want 3", m.Selected, used)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: 'k', Text: "k"})
	if m.Selected != 1 {
		t.Errorf("k: selected = %d, want 1", m.Selected)
	}
	if _, used := m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); used {
		t.Error("unrelated key should not be consumed")
	}
}

func TestMenuViewScrolls(t *testing.T) {
	items := make([]MenuItem, 10)
	for i := range items {
		items[i] = MenuItem{Label: string(rune('a' + i))}
	}
	m := NewMenu(items)
	m.Selected = 7

	view := m.View(3)
	lines := strings.Split(view, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[2], "h") {
		t.Errorf("selected row should be the last visible line, got %q", lines[2])
	}
}

func TestMenuSetItemsClamps(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	m.Selected = 2
	m.SetItems([]MenuItem{{Label: "a"}})
	if m.Selected != 0 {
		t.Errorf("selected = %d, want 0", m.Selected)
	}
	m.SetItems(nil)
	if m.Selected != 0 {
		t.Errorf("selected = %d, want 0", m.Selected)
	}
}

func TestProgressBarFraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{1, 4, 0.25},
		{5, 4, 1},
		{-1, 4, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.done, tt.total, 40)
		if got := p.Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
	if v := NewProgressBar("solved", 1, 4, 40).View(); !strings.Contains(v, "1/4 (25%)") {
		t.Errorf("view missing counts: %q", v)
	}
}

func TestTextInputMasked(t *testing.T) {
	ti := NewTextInput("Password", "", true, 32)
	ti.Focus()
	ti, _ = ti.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	ti, _ = ti.Update(tea.KeyPressMsg{Code: 'e', Text: "e"})
	if ti.Value() != "se" {
		t.Fatalf("value = %q, want se", ti.Value())
	}
	if strings.Contains(ti.View(), "se") {
		t.Error("masked input must not echo its value")
	}
}
