package detail

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/session"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

// clockTickMsg redraws the attempt clock. id ties it to one screen
// instance so a stale tick chain dies out.
type clockTickMsg struct {
	id int64
}

// markDoneMsg reports the outcome of a mark.
type markDoneMsg struct {
	Err error
}

var nextID atomic.Int64

// DetailScreen shows one question with reveal toggles and mark actions.
type DetailScreen struct {
	env    *screen.Env
	id     int64
	scroll int
}

var _ screen.Screen = (*DetailScreen)(nil)
var _ screen.KeyHintProvider = (*DetailScreen)(nil)

// New opens q in the detail flow and returns its screen.
func New(env *screen.Env, q api.Question) *DetailScreen {
	env.Detail.Open(q)
	return &DetailScreen{env: env, id: nextID.Add(1)}
}

func (s *DetailScreen) Init() tea.Cmd {
	return s.tick()
}

func (s *DetailScreen) Title() string {
	if snap := s.env.Detail.Snapshot(); snap.Current != nil {
		return fmt.Sprintf("Question #%d", snap.Current.ID)
	}
	return "Question"
}

func (s *DetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "h/o/a", Description: "Hint/Solution/Answer"},
		{Key: "m", Description: "Solved"},
		{Key: "f", Description: "Attempted"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case clockTickMsg:
		if msg.id != s.id {
			return s, nil
		}
		return s, s.tick()

	case markDoneMsg:
		return s, screen.OnAuthError(msg.Err)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "h":
			s.env.Detail.Toggle(session.RevealHint)
		case "o":
			s.env.Detail.Toggle(session.RevealSolution)
		case "a":
			s.env.Detail.Toggle(session.RevealAnswer)
		case "m":
			return s, s.mark(true)
		case "f":
			return s, s.mark(false)
		case "down", "j":
			s.scroll++
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		}
	}
	return s, nil
}

func (s *DetailScreen) tick() tea.Cmd {
	id := s.id
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return clockTickMsg{id: id} })
}

func (s *DetailScreen) mark(solved bool) tea.Cmd {
	d := s.env.Detail
	return func() tea.Msg {
		return markDoneMsg{Err: d.Mark(context.Background(), solved)}
	}
}

func (s *DetailScreen) View(width, height int) string {
	snap := s.env.Detail.Snapshot()
	if snap.Current == nil {
		return theme.Hint.Render("  no question open")
	}
	q := *snap.Current
	inner := max(width-4, 20)

	var top strings.Builder
	top.WriteString(theme.Title.Render(q.Title))
	top.WriteString("\n")
	top.WriteString(Meta(q))
	top.WriteString("\n")
	status := "attempt " + layout.FormatClock(snap.Elapsed)
	if snap.Submitting {
		status += "  saving..."
	}
	top.WriteString(theme.Info.Render(status))
	if line := NoticeLine(snap.Notice); line != "" {
		top.WriteString("  ")
		top.WriteString(line)
	}
	header := top.String()

	body := Body(q, snap.Reveal, inner)
	lines := strings.Split(body, "\n")
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

// Meta renders the one-line summary under a question title.
func Meta(q api.Question) string {
	parts := []string{theme.Difficulty(q.Difficulty).Render(orDash(q.Difficulty))}
	if q.Topic != "" {
		parts = append(parts, q.Topic)
	}
	if len(q.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(q.Tags, " #"))
	}
	if len(q.Companies) > 0 {
		parts = append(parts, strings.Join(q.Companies, ", "))
	}
	progress := fmt.Sprintf("%d attempts", q.Attempts)
	if q.IsSolved {
		progress = theme.Solved.Render("solved") + ", " + progress
	}
	if q.AvgTimeSeconds != nil {
		progress += ", avg " + layout.FormatClock(int(*q.AvgTimeSeconds))
	}
	parts = append(parts, progress)
	return theme.Subtitle.Render(strings.Join(parts, "  ·  "))
}

// Body renders the task text and whichever of hint, solution and answer
// are revealed, wrapped to width. Markup is shown as-is.
func Body(q api.Question, r session.Reveal, width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	text := q.PlainBody()
	if text == "" {
		text = q.Body()
	}
	if text == "" {
		text = theme.Hint.Render("(no task text)")
	}

	var b strings.Builder
	b.WriteString(wrap.Render(text))
	section := func(label, content string) {
		b.WriteString("\n\n")
		b.WriteString(theme.Label.Render(label))
		b.WriteString("\n")
		if content == "" {
			content = theme.Hint.Render("(none)")
		}
		b.WriteString(wrap.Render(content))
	}
	if r.Hint {
		section("Hint", q.Hint)
	}
	if r.Solution {
		section("Solution", q.Solution)
	}
	if r.Answer {
		section("Answer", q.Answer)
	}
	return b.String()
}

// NoticeLine styles a session notice by kind. Empty notices render as "".
func NoticeLine(n session.Notice) string {
	if n.Empty() {
		return ""
	}
	switch n.Kind {
	case session.NoticeError:
		return theme.Banner.Render(n.Text)
	case session.NoticeWarning:
		return theme.Warning.Render(n.Text)
	default:
		return theme.Info.Render(n.Text)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
