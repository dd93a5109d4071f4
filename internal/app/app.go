package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quantiz/internal/router"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/screens/catalog"
	"github.com/abhisek/quantiz/internal/screens/login"
	"github.com/abhisek/quantiz/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Env *screen.Env

	// Username is the signed-in user. Empty starts on the login screen.
	Username string

	// LoginReason is shown on the login screen when starting there.
	LoginReason string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env      *screen.Env
	router   *router.Router
	username string
	width    int
	height   int
}

// newAppModel creates a new AppModel on the catalog when signed in, else
// on the login screen.
func newAppModel(opts Options) AppModel {
	var first screen.Screen
	if opts.Username != "" {
		first = catalog.New(opts.Env)
	} else {
		first = login.New(opts.Env, opts.LoginReason)
	}
	return AppModel{
		env:      opts.Env,
		router:   router.New(first),
		username: opts.Username,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.env.Trainer.Close()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 && !capturing(m.router.Active()) {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case screen.LoggedInMsg:
		m.username = msg.Username
		m.env.Logger.Info("signed in", "username", msg.Username)
		return m, m.router.Reset(catalog.New(m.env))

	case screen.LogoutMsg:
		m.logout(msg.Reason)
		return m, m.router.Reset(login.New(m.env, msg.Reason))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// logout ends training, drops every cached server snapshot and forgets the
// credential.
func (m *AppModel) logout(reason string) {
	m.env.Trainer.Stop()
	m.env.Detail.Close()
	m.env.Catalog.Invalidate()
	if err := m.env.Service.Logout(context.Background()); err != nil {
		m.env.Logger.Warn("logout failed", "error", err)
	}
	m.env.Logger.Info("signed out", "username", m.username, "reason", reason)
	m.username = ""
}

func capturing(s screen.Screen) bool {
	c, ok := s.(screen.InputCapturer)
	return ok && c.CapturingInput()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(m.router.Titles(), m.status(), m.width)

	var hints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, layout.BodyHeight(header, footer, m.height))
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// status is the header's right-hand side: user and solved count.
func (m AppModel) status() string {
	if m.username == "" {
		return "signed out"
	}
	if st := m.env.Catalog.Stats(); st != nil {
		return fmt.Sprintf("%s  ✓ %d/%d", m.username, st.SolvedQuestions, st.TotalQuestions)
	}
	return m.username
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	opts.Env.Trainer.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
