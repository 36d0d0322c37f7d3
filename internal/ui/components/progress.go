package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// Segment is a run of gauge cells drawn in one style.
type Segment struct {
	Count int
	Style lipgloss.Style
}

// Gauge draws segments proportionally across width cells. Rounding
// leftovers go to the largest segments first so the cells always add up.
func Gauge(width int, segs ...Segment) string {
	if width < 1 {
		return ""
	}
	total := 0
	for _, s := range segs {
		total += max(s.Count, 0)
	}
	if total == 0 {
		return theme.ProgressEmpty.Render(strings.Repeat(" ", width))
	}

	cells := make([]int, len(segs))
	used := 0
	for i, s := range segs {
		cells[i] = max(s.Count, 0) * width / total
		used += cells[i]
	}
	for used < width {
		best := -1
		for i, s := range segs {
			if s.Count <= 0 {
				continue
			}
			if best < 0 || s.Count*width-cells[i]*total > segs[best].Count*width-cells[best]*total {
				best = i
			}
		}
		cells[best]++
		used++
	}

	var b strings.Builder
	for i, s := range segs {
		if cells[i] > 0 {
			b.WriteString(s.Style.Render(strings.Repeat(" ", cells[i])))
		}
	}
	return b.String()
}

var (
	correctCell   = lipgloss.NewStyle().Background(theme.Success)
	incorrectCell = lipgloss.NewStyle().Background(theme.Error)
)

// ScoreBar shows correct and incorrect answers out of the total, with
// the accuracy over answered questions at the end.
func ScoreBar(correct, incorrect, remaining, width int) string {
	pct := " —"
	if answered := correct + incorrect; answered > 0 {
		pct = fmt.Sprintf("%3d%%", correct*100/answered)
	}
	suffix := lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + pct)
	return Gauge(max(width-lipgloss.Width(suffix), 4),
		Segment{correct, correctCell},
		Segment{incorrect, incorrectCell},
		Segment{remaining, theme.ProgressEmpty},
	) + suffix
}

// StepBar shows how far through a question set the reader is.
func StepBar(label string, done, total, width int) string {
	head := lipgloss.NewStyle().Foreground(theme.TextDim).Render(label) + "  "
	return head + Gauge(max(width-lipgloss.Width(head), 4),
		Segment{done, theme.ProgressFilled},
		Segment{total - done, theme.ProgressEmpty},
	)
}
