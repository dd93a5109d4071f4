package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/api"
	cat "github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/router"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/screens/confirm"
	"github.com/abhisek/quantiz/internal/screens/detail"
	"github.com/abhisek/quantiz/internal/screens/stats"
	"github.com/abhisek/quantiz/internal/screens/training"
	"github.com/abhisek/quantiz/internal/ui/components"
	"github.com/abhisek/quantiz/internal/ui/layout"
	"github.com/abhisek/quantiz/internal/ui/theme"
)

// refreshedMsg reports the outcome of a catalog refresh.
type refreshedMsg struct {
	Err error
}

// resetDoneMsg reports the outcome of a progress reset.
type resetDoneMsg struct {
	Err error
}

// CatalogScreen lists the filtered catalog and drives every other flow.
type CatalogScreen struct {
	env      *screen.Env
	criteria cat.Criteria
	list     []api.Question
	menu     components.Menu
	version  uint64
	synced   bool

	searching bool
	search    components.TextInput

	loading bool
	banner  string // last fetch or reset error, shown above prior data
	notice  string
	width   int
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)
var _ screen.InputCapturer = (*CatalogScreen)(nil)

// New creates a CatalogScreen. The catalog is fetched on Init unless the
// store already holds one.
func New(env *screen.Env) *CatalogScreen {
	return &CatalogScreen{
		env:    env,
		search: components.NewTextInput("/", "search title and text", false, 64),
	}
}

func (s *CatalogScreen) Init() tea.Cmd {
	s.sync()
	if s.env.Catalog.Loaded() {
		return nil
	}
	return s.refresh()
}

func (s *CatalogScreen) Title() string { return "Questions" }

func (s *CatalogScreen) CapturingInput() bool { return s.searching }

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{
			{Key: "Enter/Esc", Description: "Done"},
			{Key: "Ctrl+U", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "/", Description: "Search"},
		{Key: "d/c/t/o/g/u", Description: "Filter"},
		{Key: "x", Description: "Clear"},
		{Key: "Enter", Description: "Open"},
		{Key: "T", Description: "Train"},
		{Key: "s", Description: "Stats"},
		{Key: "r", Description: "Refresh"},
		{Key: "R", Description: "Reset"},
		{Key: "L", Description: "Logout"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		s.loading = false
		s.banner = ""
		if msg.Err != nil {
			if cmd := screen.OnAuthError(msg.Err); cmd != nil {
				return s, cmd
			}
			s.banner = api.Message(msg.Err)
		}
		s.sync()
		return s, nil

	case resetDoneMsg:
		s.loading = false
		if msg.Err != nil {
			if cmd := screen.OnAuthError(msg.Err); cmd != nil {
				return s, cmd
			}
			s.banner = api.Message(msg.Err)
		} else {
			s.banner = ""
			s.notice = "progress reset"
		}
		s.sync()
		return s, nil

	case screen.ResumedMsg:
		s.sync()
		return s, nil

	case tea.KeyPressMsg:
		s.sync()
		if s.searching {
			return s.handleSearchKey(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *CatalogScreen) handleSearchKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		s.searching = false
		s.search.Blur()
		return s, nil
	case "ctrl+u":
		s.search.SetValue("")
	default:
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		s.setCriteria(withSearch(s.criteria, s.search.Value()))
		return s, cmd
	}
	s.setCriteria(withSearch(s.criteria, s.search.Value()))
	return s, nil
}

func (s *CatalogScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if m, used := s.menu.Update(msg); used {
		s.menu = m
		return s, nil
	}

	facets := s.env.Catalog.Facets()
	current, hasCurrent := s.current()

	switch msg.String() {
	case "/":
		s.searching = true
		return s, s.search.Focus()
	case "d":
		c := s.criteria
		c.Difficulty = cycle(facets.Difficulties, c.Difficulty)
		s.setCriteria(c)
	case "c":
		c := s.criteria
		c.Company = cycle(facets.Companies, c.Company)
		s.setCriteria(c)
	case "t":
		if hasCurrent && current.Topic != "" {
			s.setCriteria(s.criteria.ToggleTopic(current.Topic))
		}
	case "o":
		s.setCriteria(addTopic(s.criteria, facets.Topics))
	case "g":
		if hasCurrent {
			s.setCriteria(toggleTags(s.criteria, current.Tags))
		}
	case "u":
		c := s.criteria
		c.OnlyUnsolved = !c.OnlyUnsolved
		s.setCriteria(c)
	case "x":
		s.search.SetValue("")
		s.setCriteria(cat.Criteria{})
	case "r":
		if !s.loading {
			return s, s.refresh()
		}
	case "enter":
		if hasCurrent {
			return s, push(detail.New(s.env, current))
		}
	case "T":
		return s, push(training.New(s.env))
	case "s":
		return s, push(stats.New(s.env))
	case "R":
		return s, push(confirm.New("Reset progress",
			"Erase every attempt and solved mark on the server? This cannot be undone.",
			s.resetAction))
	case "L":
		return s, screen.Logout("")
	}
	return s, nil
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *CatalogScreen) refresh() tea.Cmd {
	s.loading = true
	store := s.env.Catalog
	return func() tea.Msg {
		return refreshedMsg{Err: store.Refresh(context.Background())}
	}
}

func (s *CatalogScreen) resetAction() tea.Cmd {
	s.loading = true
	s.notice = ""
	m := s.env.Mediator
	return func() tea.Msg {
		return resetDoneMsg{Err: m.ResetAll(context.Background(), true)}
	}
}

// sync re-reads the filtered list when the catalog changed underneath.
func (s *CatalogScreen) sync() {
	if v := s.env.Catalog.Version(); s.synced && v == s.version {
		return
	}
	s.rebuild()
}

func (s *CatalogScreen) setCriteria(c cat.Criteria) {
	s.criteria = c
	s.notice = ""
	s.rebuild()
}

func (s *CatalogScreen) rebuild() {
	var selectedID int
	if q, ok := s.current(); ok {
		selectedID = q.ID
	}

	s.version = s.env.Catalog.Version()
	s.synced = true
	s.list = s.env.Catalog.Filtered(s.criteria)

	compact := layout.IsCompactWidth(s.width)
	items := make([]components.MenuItem, len(s.list))
	sel := 0
	for i, q := range s.list {
		items[i] = components.MenuItem{Label: row(q, compact)}
		if q.ID == selectedID {
			sel = i
		}
	}
	s.menu.SetItems(items)
	s.menu.Selected = sel
}

func (s *CatalogScreen) current() (api.Question, bool) {
	if s.menu.Selected < 0 || s.menu.Selected >= len(s.list) {
		return api.Question{}, false
	}
	return s.list[s.menu.Selected], true
}

// Criteria returns the active filter.
func (s *CatalogScreen) Criteria() cat.Criteria { return s.criteria }

// Visible returns the questions currently listed.
func (s *CatalogScreen) Visible() []api.Question { return s.list }

func (s *CatalogScreen) View(width, height int) string {
	if layout.IsCompactWidth(width) != layout.IsCompactWidth(s.width) {
		s.width = width
		s.rebuild()
	}
	s.width = width

	var top strings.Builder
	top.WriteString(s.facetBar(width - 4))
	top.WriteString("\n")
	if s.searching || s.criteria.Search != "" {
		top.WriteString(s.search.View())
		top.WriteString("\n")
	}

	total := len(s.env.Catalog.Questions())
	status := fmt.Sprintf("%d of %d questions", len(s.list), total)
	if s.loading {
		status += "  ·  loading..."
	}
	top.WriteString(theme.Subtitle.Render(status))
	if s.notice != "" {
		top.WriteString("  ")
		top.WriteString(theme.Info.Render(s.notice))
	}
	if s.banner != "" {
		top.WriteString("\n")
		top.WriteString(theme.Banner.Render("! " + s.banner))
	}
	header := top.String()

	var body string
	switch {
	case len(s.list) > 0:
		body = s.menu.View(max(height-lipgloss.Height(header)-1, 1))
	case total == 0 && s.loading:
		body = theme.Hint.Render("fetching catalog...")
	case total == 0:
		body = theme.Hint.Render("no questions on the server")
	default:
		body = theme.Hint.Render("no questions match; press x to clear filters")
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(header + "\n" + body)
}

func (s *CatalogScreen) facetBar(width int) string {
	c := s.criteria
	chip := func(label string, on bool) string {
		if on {
			return theme.FacetOn.Render(label)
		}
		return theme.FacetOff.Render(label)
	}
	parts := []string{
		chip("difficulty: "+orAny(c.Difficulty), c.Difficulty != ""),
		chip("company: "+orAny(c.Company), c.Company != ""),
		chip("topics: "+orAny(strings.Join(c.Topics, "|")), len(c.Topics) > 0),
		chip("tags: "+orAny(strings.Join(c.Tags, "+")), len(c.Tags) > 0),
		chip("unsolved only", c.OnlyUnsolved),
	}
	return layout.Truncate(strings.Join(parts, " "), max(width, 10))
}

// row renders one list entry. Compact rows drop the topic column.
func row(q api.Question, compact bool) string {
	mark := "  "
	if q.IsSolved {
		mark = theme.Solved.Render("✓ ")
	}
	diff := theme.Difficulty(q.Difficulty).Render(fmt.Sprintf("%-6s", layout.Truncate(q.Difficulty, 6)))
	title := q.Title
	if title == "" {
		title = fmt.Sprintf("Question #%d", q.ID)
	}
	if compact {
		return fmt.Sprintf("%s%s  %s", mark, diff, layout.Truncate(title, 56))
	}
	return fmt.Sprintf("%s%s  %-44s  %s", mark, diff, layout.Truncate(title, 44),
		theme.Subtitle.Render(layout.Truncate(q.Topic, 20)))
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func withSearch(c cat.Criteria, search string) cat.Criteria {
	c.Search = search
	return c
}

// cycle steps through "" then each value in order, wrapping back to "".
func cycle(values []string, cur string) string {
	if cur == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == cur && i+1 < len(values) {
			return values[i+1]
		}
	}
	return ""
}

// toggleTags adds the first of tags not yet selected. When all are
// selected it removes them all.
func toggleTags(c cat.Criteria, tags []string) cat.Criteria {
	for _, t := range tags {
		if !c.HasTag(t) {
			return c.ToggleTag(t)
		}
	}
	for _, t := range tags {
		c = c.ToggleTag(t)
	}
	return c
}

// addTopic selects the first catalog topic not yet selected, widening the
// filter. Once every topic is selected it clears the topic filter.
func addTopic(c cat.Criteria, topics []string) cat.Criteria {
	for _, t := range topics {
		if !c.HasTopic(t) {
			return c.ToggleTopic(t)
		}
	}
	c.Topics = nil
	return c
}
