package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quantiz/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactWidth returns true if the terminal width is in compact range.
func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

// IsCompactHeight returns true if the terminal height is in compact range.
func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// FormatClock renders whole seconds as m:ss, or h:mm:ss past an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, sec := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// RenderMinSizeMessage asks for a larger terminal.
func RenderMinSizeMessage(width, height int) string {
	body := theme.Title.Render("quantiz needs more room") + "\n\n" +
		theme.Subtitle.Render(fmt.Sprintf("%d x %d or larger, currently %d x %d",
			MinWidth, MinHeight, width, height))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// RenderHeader renders the one-line status bar: app name and the screen
// trail on the left, status on the right.
func RenderHeader(trail []string, status string, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("quantiz")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	room := width - 2 - lipgloss.Width(name) - lipgloss.Width(right) - 4
	crumbs := Truncate(strings.Join(trail, " › "), max(room, 0))
	left := name
	if crumbs != "" {
		left += theme.Subtitle.Render("  " + crumbs)
	}

	gap := max(width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := " " + left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(theme.Border).
		Render(bar)
}

// RenderFooter renders as many hints as fit on one line. The last hint is
// always kept; dropped hints are marked with an ellipsis.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	render := func(h KeyHint) string { return key.Render(h.Key) + " " + desc.Render(h.Description) }

	var parts []string
	var last string
	if n := len(hints); n > 0 {
		last = render(hints[n-1])
		hints = hints[:n-1]
	}
	used := lipgloss.Width(last) + 2
	for _, h := range hints {
		part := render(h)
		w := lipgloss.Width(part) + 2
		if used+w > width-2 {
			parts = append(parts, desc.Render("…"))
			break
		}
		parts = append(parts, part)
		used += w
	}
	if last != "" {
		parts = append(parts, last)
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(theme.Border).
		Render(" " + strings.Join(parts, "  "))
}

// BodyHeight is the room left for the active screen between header and
// footer.
func BodyHeight(header, footer string, height int) int {
	return max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

// RenderFrame stacks header, body and footer, clipping or padding the body
// to the height in between.
func RenderFrame(header, body, footer string, width, height int) string {
	h := BodyHeight(header, footer, height)
	body = lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
