package confirm

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/router"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/ui/components"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

const (
	choiceNo = iota
	choiceYes
)

// ConfirmScreen asks a yes/no question. Confirming pops the screen and then
// runs the action; declining only pops. No is focused initially.
type ConfirmScreen struct {
	title  string
	prompt string
	action func() tea.Cmd
	focus  int
}

var _ screen.Screen = (*ConfirmScreen)(nil)
var _ screen.KeyHintProvider = (*ConfirmScreen)(nil)

// New creates a ConfirmScreen. action builds the command to run after the
// user confirms.
func New(title, prompt string, action func() tea.Cmd) *ConfirmScreen {
	return &ConfirmScreen{title: title, prompt: prompt, action: action, focus: choiceNo}
}

func (s *ConfirmScreen) Init() tea.Cmd { return nil }

func (s *ConfirmScreen) Title() string { return s.title }

func (s *ConfirmScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Y", Description: "Yes"},
		{Key: "N", Description: "No"},
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
	}
}

func (s *ConfirmScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "right", "tab", "h", "l":
		s.focus = 1 - s.focus
	case "y", "Y":
		return s, s.accept()
	case "n", "N":
		return s, pop
	case "enter":
		if s.focus == choiceYes {
			return s, s.accept()
		}
		return s, pop
	}
	return s, nil
}

func (s *ConfirmScreen) accept() tea.Cmd {
	if s.action == nil {
		return pop
	}
	return tea.Sequence(pop, s.action())
}

func pop() tea.Msg { return router.PopScreenMsg{} }

func (s *ConfirmScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Render(s.prompt))
	b.WriteString("\n\n")
	b.WriteString(components.ButtonRow([]string{"No", "Yes"}, s.focus))

	card := theme.Card.Width(min(width-4, 60)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
