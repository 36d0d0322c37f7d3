// Package layout draws the frame shared by every screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// Below this size the reader cannot show a passage and its question
// panel together.
const (
	MinWidth  = 72
	MinHeight = 20
)

// KeyHint is one footer entry.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(msg)
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader puts the app name left, the screen title centered and the
// status right. Long titles, such as text names, are cut with an
// ellipsis so the header stays one line.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Lasi")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	room := inner - lipgloss.Width(left) - lipgloss.Width(right) - 2
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(ansi.Truncate(title, max(room, 0), "…"))

	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	line := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return bar.Width(width).Render(line)
}

// RenderFooter lists key hints in order, dropping those that no longer
// fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	room := width - 6
	line := " "
	for _, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		sep := "   "
		if line == " " {
			sep = " "
		}
		if lipgloss.Width(line+sep+part) > room {
			break
		}
		line += sep + part
	}
	return bar.Width(width).Render(line)
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	rest := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rest).Render(content)
	return header + "\n" + body + "\n" + footer
}
