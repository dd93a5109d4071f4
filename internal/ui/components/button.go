package components

import (
	"strings"

	"github.com/abhisek/quantiz/internal/ui/theme"
)

// Button is a styled, focusable button label.
type Button struct {
	Label   string
	Focused bool
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render(b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// ButtonRow renders buttons side by side with the one at focus highlighted.
func ButtonRow(labels []string, focus int) string {
	views := make([]string, len(labels))
	for i, l := range labels {
		views[i] = Button{Label: l, Focused: i == focus}.View()
	}
	return strings.Join(views, "  ")
}
