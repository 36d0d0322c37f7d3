package reader

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/lasi/internal/highlight"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/components"
	"github.com/abhisek/lasi/internal/ui/theme"
)

const maxTextWidth = 96

func (r *ReaderScreen) View(width, height int) string {
	st := r.orch.Snapshot()
	cw := components.ContentWidth(width, maxTextWidth)

	if len(st.Parts) == 0 {
		msg := lipgloss.JoinVertical(lipgloss.Center,
			theme.Title.Render("Nothing to read"),
			"",
			theme.Hint.Render("This text has no parts. Press Esc to choose another."),
		)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	tabs := r.renderTabs(st, cw)
	info := r.renderInfo(st)
	panel := r.renderPanel(st, cw)
	status := r.renderStatus()

	used := lipgloss.Height(tabs) + lipgloss.Height(info) + lipgloss.Height(panel) + 2
	if status != "" {
		used += lipgloss.Height(status)
	}
	textHeight := max(height-used-2, 3) // card border

	text := r.renderText(st, cw-4, textHeight)

	sections := []string{tabs, info, components.Card(text, cw)}
	if panel != "" {
		sections = append(sections, panel)
	}
	if status != "" {
		sections = append(sections, status)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func (r *ReaderScreen) renderTabs(st *session.State, cw int) string {
	tabs := make([]string, 0, len(st.Parts))
	for i, p := range st.Parts {
		label := p.Name
		if st.HasQuestions(i) {
			label += " ✓"
		}
		if i == st.PartIndex {
			tabs = append(tabs, theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, theme.TabInactive.Render(label))
		}
	}
	row := strings.Join(tabs, " ")
	if lipgloss.Width(row) > cw {
		return ansi.Wordwrap(row, cw, "")
	}
	return row
}

func (r *ReaderScreen) renderInfo(st *session.State) string {
	mode := "original"
	if st.Mode == session.ModeSimplified {
		mode = "simplified (" + string(st.Level) + ")"
	}
	line := theme.Hint.Render(fmt.Sprintf("%s · questions %s · strictness %d · part %d/%d",
		mode, st.Difficulty, st.Strictness, st.PartIndex+1, len(st.Parts)))
	if len(r.pending) > 0 {
		line += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render(spinnerFrames[r.spin%len(spinnerFrames)]+" working")
	}
	if r.audio != nil {
		state := "▶ listening"
		if r.audio.paused {
			state = "⏸ paused"
		}
		line += "  " + lipgloss.NewStyle().Foreground(theme.Secondary).Render(state)
	}
	return line
}

// renderText lays out the current part inside a window of height lines and
// records how many wrapped lines the whole part takes.
func (r *ReaderScreen) renderText(st *session.State, width, height int) string {
	text := st.CurrentText()
	if r.uppercase {
		text = lang.Upper(st.Language, text)
	}

	switch {
	case r.word >= 0:
		text = highlight.MarkWord(text, r.word, func(s string) string { return theme.SpokenWord.Render(s) })
	case st.Evaluation != nil && st.Evaluation.CorrectSnippet != "":
		text = highlight.Apply(text, st.Evaluation.CorrectSnippet, func(s string) string { return theme.Snippet.Render(s) })
	}

	gutter := 0
	if r.ruler {
		gutter = 2
	}
	lines := strings.Split(ansi.Wordwrap(text, max(width-gutter, 10), ""), "\n")
	r.textLines = len(lines)

	visible := max(height/r.spacing, 1)
	if r.ruler {
		r.rulerLine = clamp(r.rulerLine, 0, len(lines)-1)
		if r.rulerLine < r.scroll {
			r.scroll = r.rulerLine
		}
		if r.rulerLine >= r.scroll+visible {
			r.scroll = r.rulerLine - visible + 1
		}
	}
	r.scroll = clamp(r.scroll, 0, max(len(lines)-visible, 0))

	end := min(r.scroll+visible, len(lines))
	out := make([]string, 0, end-r.scroll)
	for i := r.scroll; i < end; i++ {
		line := theme.Body.Render(lines[i])
		if r.ruler {
			if i == r.rulerLine {
				line = lipgloss.NewStyle().Foreground(theme.Accent).Render("▶ ") +
					theme.RulerLine.Width(width-gutter).Render(lines[i])
			} else {
				line = "  " + line
			}
		}
		out = append(out, line)
	}
	body := strings.Join(out, strings.Repeat("\n", r.spacing))

	if r.scroll > 0 || end < len(lines) {
		body += "\n" + theme.Hint.Render(fmt.Sprintf("lines %d-%d of %d", r.scroll+1, end, len(lines)))
	}
	return body
}

func (r *ReaderScreen) renderPanel(st *session.State, cw int) string {
	var b strings.Builder

	switch st.Phase {
	case session.PhaseFragmentLoaded:
		return theme.Hint.Render("Press q for questions about this part, or b for every part.")
	case session.PhaseQuestionsLoaded, session.PhaseAnswerSubmitted:
	default:
		return ""
	}

	q, ok := st.CurrentQuestion()
	if !ok {
		return ""
	}
	done := st.QuestionIndex
	if st.Phase == session.PhaseAnswerSubmitted && st.Outcome != session.OutcomeRateLimited {
		done++
	}
	label := fmt.Sprintf("Question %d/%d", st.QuestionIndex+1, len(st.Questions))
	b.WriteString(components.StepBar(label, done, len(st.Questions), cw-4))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Width(cw - 4).Render(q))

	if r.answering || r.input.Submitted() {
		b.WriteString("\n\n")
		b.WriteString(r.input.View())
	}

	if st.Phase == session.PhaseAnswerSubmitted && st.Evaluation != nil {
		b.WriteString("\n\n")
		switch st.Outcome {
		case session.OutcomeCorrect:
			b.WriteString(theme.Correct.Render("Correct!"))
		case session.OutcomeIncorrect:
			b.WriteString(theme.Incorrect.Render("Not quite."))
		case session.OutcomeRateLimited:
			b.WriteString(theme.Warning.Render(lang.Text(st.Language, lang.MsgRateLimited)))
		}
		if fb := st.Evaluation.Feedback; fb != "" && st.Outcome != session.OutcomeRateLimited {
			b.WriteString(" ")
			b.WriteString(theme.Body.Render(fb))
		}
		if sn := st.Evaluation.CorrectSnippet; sn != "" {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("“" + sn + "”"))
		}
		if st.Outcome != session.OutcomeRateLimited {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("Press n for the next question."))
		}
	}

	return components.Card(b.String(), cw)
}

func (r *ReaderScreen) renderStatus() string {
	if r.errMsg != "" {
		return theme.Incorrect.Render(r.errMsg)
	}
	if r.notice != "" {
		return theme.Hint.Render(r.notice)
	}
	return ""
}
