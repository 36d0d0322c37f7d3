package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// ContentWidth returns the inner width shared by stacked cards so that
// they align, given the width of the surrounding frame.
func ContentWidth(frameWidth, maxWidth int) int {
	w := frameWidth - 6 // frame border and padding
	if w > maxWidth {
		w = maxWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border box at the given width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}
