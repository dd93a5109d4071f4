package training

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/screens/detail"
	"github.com/abhisek/quantiz/internal/session"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

// startedMsg reports the outcome of Trainer.Start.
type startedMsg struct {
	Err error
}

// markedMsg reports the outcome of Trainer.Mark.
type markedMsg struct {
	Err error
}

// tickMsg carries one tick read from the trainer's channel.
type tickMsg struct {
	ch <-chan time.Time
	at time.Time
}

// tickStoppedMsg reports that a tick channel was closed.
type tickStoppedMsg struct {
	ch <-chan time.Time
}

// TrainingScreen runs a randomized timed training session.
type TrainingScreen struct {
	env *screen.Env

	// listening is the tick channel a waitTick command is blocked on.
	listening <-chan time.Time
	scroll    int
}

var _ screen.Screen = (*TrainingScreen)(nil)
var _ screen.KeyHintProvider = (*TrainingScreen)(nil)
var _ screen.Closer = (*TrainingScreen)(nil)

// New creates a TrainingScreen. The session starts in Init.
func New(env *screen.Env) *TrainingScreen {
	return &TrainingScreen{env: env}
}

func (s *TrainingScreen) Init() tea.Cmd {
	return s.start()
}

func (s *TrainingScreen) Title() string { return "Training" }

// Close stops the session when the screen is left.
func (s *TrainingScreen) Close() {
	s.env.Trainer.Stop()
}

func (s *TrainingScreen) KeyHints() []layout.KeyHint {
	snap := s.env.Trainer.Snapshot()
	if snap.State != session.StateRunning {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start again"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "h/o/a", Description: "Hint/Solution/Answer"},
		{Key: "m", Description: "Solved, next"},
		{Key: "f", Description: "Attempted, next"},
		{Key: "Esc", Description: "Stop"},
	}
}

func (s *TrainingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if cmd := screen.OnAuthError(msg.Err); cmd != nil {
			return s, cmd
		}
		s.scroll = 0
		return s, s.listen()

	case markedMsg:
		if cmd := screen.OnAuthError(msg.Err); cmd != nil {
			return s, cmd
		}
		s.scroll = 0
		return s, s.listen()

	case tickMsg:
		s.env.Trainer.Tick(msg.at)
		if msg.ch != s.listening {
			return s, nil
		}
		return s, waitTick(msg.ch)

	case tickStoppedMsg:
		if msg.ch == s.listening {
			s.listening = nil
		}
		return s, s.listen()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *TrainingScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	t := s.env.Trainer
	snap := t.Snapshot()

	if snap.State != session.StateRunning {
		if msg.String() == "enter" || msg.String() == "n" {
			return s, s.start()
		}
		return s, nil
	}

	switch msg.String() {
	case "h":
		t.Toggle(session.RevealHint)
	case "o":
		t.Toggle(session.RevealSolution)
	case "a":
		t.Toggle(session.RevealAnswer)
	case "m":
		return s, s.mark(true)
	case "f":
		return s, s.mark(false)
	case "down", "j":
		s.scroll++
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	}
	return s, nil
}

func (s *TrainingScreen) start() tea.Cmd {
	t := s.env.Trainer
	return func() tea.Msg {
		return startedMsg{Err: t.Start(context.Background())}
	}
}

func (s *TrainingScreen) mark(solved bool) tea.Cmd {
	t := s.env.Trainer
	return func() tea.Msg {
		return markedMsg{Err: t.Mark(context.Background(), solved)}
	}
}

// listen arms a tick listener on the trainer's current channel unless one
// is already waiting on it.
func (s *TrainingScreen) listen() tea.Cmd {
	ch := s.env.Trainer.Ticks()
	if ch == nil || ch == s.listening {
		return nil
	}
	s.listening = ch
	return waitTick(ch)
}

// waitTick blocks on ch for the next tick. A closed channel ends the chain.
func waitTick(ch <-chan time.Time) tea.Cmd {
	return func() tea.Msg {
		at, ok := <-ch
		if !ok {
			return tickStoppedMsg{ch: ch}
		}
		return tickMsg{ch: ch, at: at}
	}
}

func (s *TrainingScreen) View(width, height int) string {
	snap := s.env.Trainer.Snapshot()
	inner := max(width-4, 20)

	var top strings.Builder
	counters := fmt.Sprintf("served %d  ·  solved %d", snap.Served, snap.SolvedInSession)
	if snap.SessionID != "" {
		counters += "  ·  session " + shortID(snap.SessionID)
	}
	top.WriteString(theme.Subtitle.Render(counters))
	top.WriteString("\n")

	switch snap.State {
	case session.StateIdle:
		top.WriteString(theme.Hint.Render("not running"))
		if line := detail.NoticeLine(snap.Notice); line != "" {
			top.WriteString("\n")
			top.WriteString(line)
		}
		return lipgloss.NewStyle().Padding(0, 2).Render(top.String())

	case session.StateExhausted:
		top.WriteString(theme.Title.Render("Nothing left to train"))
		if line := detail.NoticeLine(snap.Notice); line != "" {
			top.WriteString("\n")
			top.WriteString(line)
		}
		top.WriteString("\n\n")
		top.WriteString(theme.Hint.Render("Press Enter to start again."))
		return lipgloss.NewStyle().Padding(0, 2).Render(top.String())
	}

	q := *snap.Current
	top.WriteString(theme.Title.Render(q.Title))
	top.WriteString("\n")
	top.WriteString(detail.Meta(q))
	top.WriteString("\n")
	clock := theme.Label.Render(layout.FormatClock(snap.Elapsed))
	if snap.Submitting {
		clock += theme.Hint.Render("  saving...")
	}
	top.WriteString(clock)
	if line := detail.NoticeLine(snap.Notice); line != "" {
		top.WriteString("  ")
		top.WriteString(line)
	}
	header := top.String()

	lines := strings.Split(detail.Body(q, snap.Reveal, inner), "\n")
	gap := "\n\n"
	if layout.IsCompactHeight(height) {
		gap = "\n"
	}
	avail := max(height-lipgloss.Height(header)-len(gap), 1)
	s.scroll = min(s.scroll, max(len(lines)-avail, 0))
	end := min(s.scroll+avail, len(lines))

	return lipgloss.NewStyle().Padding(0, 2).Render(
		header + gap + strings.Join(lines[s.scroll:end], "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
