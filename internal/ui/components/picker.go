package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// Picker cycles through a fixed list of options on one line.
type Picker struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewPicker selects the option equal to current, else the first one.
func NewPicker(label string, options []string, current string) Picker {
	p := Picker{Label: label, Options: options}
	for i, o := range options {
		if o == current {
			p.Selected = i
			break
		}
	}
	return p
}

// Value returns the selected option.
func (p Picker) Value() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected]
}

// Update handles left/right while focused.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	if !p.Focused || len(p.Options) == 0 {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch kmsg.String() {
	case "left", "h":
		p.Selected = (p.Selected - 1 + len(p.Options)) % len(p.Options)
	case "right", "l", "space":
		p.Selected = (p.Selected + 1) % len(p.Options)
	}
	return p, nil
}

// View renders "Label  ‹ a  [b]  c ›".
func (p Picker) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(14)
	if p.Focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}

	opts := make([]string, len(p.Options))
	for i, o := range p.Options {
		switch {
		case i == p.Selected && p.Focused:
			opts[i] = theme.TabActive.Render(o)
		case i == p.Selected:
			opts[i] = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Padding(0, 1).Render(o)
		default:
			opts[i] = theme.TabInactive.Render(o)
		}
	}
	return labelStyle.Render(p.Label) + strings.Join(opts, " ")
}
