package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/components"
	"github.com/abhisek/lasi/internal/ui/layout"
	"github.com/abhisek/lasi/internal/ui/theme"
)

// StartOverMsg asks the reader below to restart the text from part one.
type StartOverMsg struct{}

// SummaryScreen shows the score of a finished text.
type SummaryScreen struct {
	summary *session.Summary
	buttons components.ButtonRow
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{
		summary: summary,
		buttons: components.NewButtonRow(
			components.NewButton("Start over", false, func() tea.Cmd {
				return tea.Sequence(
					func() tea.Msg { return router.PopScreenMsg{} },
					func() tea.Msg { return StartOverMsg{} },
				)
			}),
			components.NewButton("Choose another text", false, func() tea.Cmd {
				return func() tea.Msg { return router.PopToRootMsg{} }
			}),
		),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Confirm"},
		{Key: "Esc", Description: "Back to text"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.buttons, cmd = s.buttons.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	cw := components.ContentWidth(width, 64)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder

	b.WriteString(center(theme.Title.Render("Well done!")))
	b.WriteString("\n")
	b.WriteString(center(theme.Subtitle.Render(sum.TextName)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("%s   %s   Accuracy: %.0f%%",
		theme.Correct.Render(fmt.Sprintf("✓ %d correct", sum.Correct)),
		theme.Incorrect.Render(fmt.Sprintf("✗ %d incorrect", sum.Incorrect)),
		sum.Accuracy*100)
	b.WriteString(center(stats))
	b.WriteString("\n\n")
	b.WriteString(center(components.ScoreBar(sum.Correct, sum.Incorrect, 0, cw)))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Parts")))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))))
	b.WriteString("\n")

	for _, p := range sum.Parts {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if p.Correct+p.Incorrect == 0 {
			style = style.Foreground(theme.TextDim)
		}
		name := lipgloss.NewStyle().Width(cw - 20).Render(p.Part)
		line := fmt.Sprintf("%s  ✓ %-3d ✗ %-3d", name, p.Correct, p.Incorrect)
		b.WriteString(center(style.Render(line)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(s.buttons.View()))

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}
