package screen

import (
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/progress"
	"github.com/abhisek/quantiz/internal/session"
	"github.com/abhisek/quantiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is an optional interface for screens that are currently
// reading free text. The app does not treat Esc as navigation while
// it returns true.
type InputCapturer interface {
	CapturingInput() bool
}

// Closer is an optional interface for screens that hold resources. The
// router calls Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// ResumedMsg is delivered to a screen when it becomes active again after
// the screen above it was popped.
type ResumedMsg struct{}

// Env carries the shared core objects every screen works against.
type Env struct {
	Service  api.Service
	Catalog  *catalog.Store
	Mediator *progress.Mediator
	Trainer  *session.Trainer
	Detail   *session.Detail
	Logger   *slog.Logger
}

// LoggedInMsg reports a successful login.
type LoggedInMsg struct {
	Username string
}

// LogoutMsg asks the app to drop the session and return to the login
// screen. Reason, when set, is shown there.
type LogoutMsg struct {
	Reason string
}

// Logout returns a command emitting a LogoutMsg.
func Logout(reason string) tea.Cmd {
	return func() tea.Msg { return LogoutMsg{Reason: reason} }
}

// OnAuthError returns a forced-logout command when err is an
// authentication failure, and nil otherwise.
func OnAuthError(err error) tea.Cmd {
	if !api.IsAuth(err) {
		return nil
	}
	return Logout(api.Message(err))
}
