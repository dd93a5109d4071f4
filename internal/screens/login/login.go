package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/ui/components"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

// authDoneMsg reports the outcome of a login or register attempt.
type authDoneMsg struct {
	Username string
	Err      error
}

const (
	fieldUsername = iota
	fieldPassword
)

// LoginScreen collects credentials and signs in, or registers and then
// signs in.
type LoginScreen struct {
	env      *screen.Env
	username components.TextInput
	password components.TextInput
	focus    int
	register bool
	busy     bool
	errMsg   string
	reason   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)
var _ screen.InputCapturer = (*LoginScreen)(nil)

// New creates a LoginScreen. reason, when set, explains why the user was
// sent here (for example an expired session).
func New(env *screen.Env, reason string) *LoginScreen {
	return &LoginScreen{
		env:      env,
		username: components.NewTextInput("Username", "username", false, 64),
		password: components.NewTextInput("Password", "password", true, 128),
		reason:   reason,
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.username.Focus()
}

func (s *LoginScreen) Title() string {
	if s.register {
		return "Register"
	}
	return "Sign in"
}

func (s *LoginScreen) CapturingInput() bool { return true }

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	mode := "Register instead"
	if s.register {
		mode = "Sign in instead"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: mode},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
			s.password.SetValue("")
			return s, nil
		}
		return s, func() tea.Msg { return screen.LoggedInMsg{Username: msg.Username} }

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, s.forward(msg)
}

func (s *LoginScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		return s, s.switchField()
	case "ctrl+r":
		s.register = !s.register
		s.errMsg = ""
		return s, nil
	case "enter":
		if s.focus == fieldUsername && s.password.Value() == "" {
			return s, s.switchField()
		}
		return s, s.submit()
	}
	return s, s.forward(msg)
}

func (s *LoginScreen) switchField() tea.Cmd {
	if s.focus == fieldUsername {
		s.focus = fieldPassword
		s.username.Blur()
		return s.password.Focus()
	}
	s.focus = fieldUsername
	s.password.Blur()
	return s.username.Focus()
}

func (s *LoginScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if s.focus == fieldUsername {
		s.username, cmd = s.username.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return cmd
}

func (s *LoginScreen) submit() tea.Cmd {
	username := strings.TrimSpace(s.username.Value())
	password := s.password.Value()
	if username == "" || password == "" {
		s.errMsg = "username and password are required"
		return nil
	}

	s.busy = true
	s.errMsg = ""
	svc := s.env.Service
	register := s.register
	return func() tea.Msg {
		ctx := context.Background()
		if register {
			if _, err := svc.Register(ctx, username, password); err != nil {
				return authDoneMsg{Err: err}
			}
		}
		if err := svc.Login(ctx, username, password); err != nil {
			return authDoneMsg{Err: err}
		}
		return authDoneMsg{Username: username}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder

	heading := "Sign in to your trainer account"
	if s.register {
		heading = "Create a trainer account"
	}
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")

	if s.reason != "" {
		b.WriteString(theme.Warning.Render(s.reason))
		b.WriteString("\n\n")
	}

	b.WriteString(s.username.View())
	b.WriteString("\n")
	b.WriteString(s.password.View())
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("contacting server..."))
	case s.errMsg != "":
		b.WriteString(theme.Banner.Render(s.errMsg))
	}

	card := theme.Card.Width(min(width-4, 60)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
