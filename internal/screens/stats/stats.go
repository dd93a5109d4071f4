package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/ui/components"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

// dailyWindow is how many trailing days of the solved series are shown.
const dailyWindow = 14

// refreshedMsg reports the outcome of a stats refresh.
type refreshedMsg struct {
	Err error
}

// StatsScreen shows the aggregate progress snapshot.
type StatsScreen struct {
	env     *screen.Env
	loading bool
	errMsg  string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen. Stats are refreshed on Init.
func New(env *screen.Env) *StatsScreen {
	return &StatsScreen{env: env}
}

func (s *StatsScreen) Init() tea.Cmd {
	return s.refresh()
}

func (s *StatsScreen) Title() string { return "Stats" }

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		s.loading = false
		s.errMsg = ""
		if msg.Err != nil {
			if cmd := screen.OnAuthError(msg.Err); cmd != nil {
				return s, cmd
			}
			s.errMsg = api.Message(msg.Err)
		}
		return s, nil

	case tea.KeyPressMsg:
		if msg.String() == "r" && !s.loading {
			return s, s.refresh()
		}
	}
	return s, nil
}

func (s *StatsScreen) refresh() tea.Cmd {
	s.loading = true
	store := s.env.Catalog
	return func() tea.Msg {
		return refreshedMsg{Err: store.RefreshStats(context.Background())}
	}
}

func (s *StatsScreen) View(width, height int) string {
	var b strings.Builder
	switch {
	case s.errMsg != "":
		b.WriteString(theme.Banner.Render(s.errMsg))
		b.WriteString("\n\n")
	case s.loading:
		b.WriteString(theme.Hint.Render("refreshing..."))
		b.WriteString("\n\n")
	}

	st := s.env.Catalog.Stats()
	if st == nil {
		b.WriteString(theme.Hint.Render("no stats yet"))
		return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
	}
	b.WriteString(Render(st, max(width-4, 30)))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

// Render lays out a stats snapshot at the given width.
func Render(st *api.Stats, width int) string {
	var b strings.Builder

	b.WriteString(components.NewProgressBar("Solved", st.SolvedQuestions, st.TotalQuestions, min(width, 70)).View())
	b.WriteString("\n")
	avg := "-"
	if st.AvgTimeSeconds != nil {
		avg = layout.FormatClock(int(*st.AvgTimeSeconds + 0.5))
	}
	b.WriteString(theme.Subtitle.Render("Average time per solved question: " + avg))
	b.WriteString("\n")

	cols := []string{
		breakdown("By difficulty", st.SolvedByDifficulty),
		breakdown("By topic", st.SolvedByTopic),
		breakdown("By company", st.SolvedByCompany),
	}
	if !layout.IsCompactWidth(width) {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pad(cols[0]), pad(cols[1]), cols[2]))
	} else {
		for _, c := range cols {
			b.WriteString("\n")
			b.WriteString(c)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(daily(st.DailySolved))
	return b.String()
}

func pad(s string) string {
	return lipgloss.NewStyle().PaddingRight(4).Render(s)
}

// breakdown renders a solved-count map sorted by count, then key.
func breakdown(title string, m map[string]int) string {
	var b strings.Builder
	b.WriteString(theme.Label.Render(title))
	if len(m) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("none yet"))
		return b.String()
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-16s %3d", layout.Truncate(k, 16), m[k]))
	}
	return b.String()
}

// daily renders the trailing days of the solved series as bars.
func daily(series []api.DailySolved) string {
	var b strings.Builder
	b.WriteString(theme.Label.Render("Solved per day"))
	if len(series) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("none yet"))
		return b.String()
	}
	if len(series) > dailyWindow {
		series = series[len(series)-dailyWindow:]
	}
	peak := 1
	for _, d := range series {
		peak = max(peak, d.Solved)
	}
	for _, d := range series {
		bar := strings.Repeat("█", d.Solved*30/peak)
		if d.Solved > 0 && bar == "" {
			bar = "▏"
		}
		b.WriteString("\n")
		b.WriteString(d.Date + " ")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(bar))
		b.WriteString(fmt.Sprintf(" %d", d.Solved))
	}
	return b.String()
}
