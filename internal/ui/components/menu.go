package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// MenuItem is one selectable row.
type MenuItem struct {
	Label    string
	Detail   string // dim text after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list driven by up/down and enter. With Height set,
// only a window of rows around the selection is drawn.
type Menu struct {
	Items    []MenuItem
	Selected int
	Height   int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.step(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

func (m Menu) Init() tea.Cmd { return nil }

// step finds the next enabled index from i in direction dir, or -1.
func (m Menu) step(i, dir int) int {
	for i += dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "k":
		if i := m.step(m.Selected, -1); i >= 0 {
			m.Selected = i
		}
	case "down", "j":
		if i := m.step(m.Selected, 1); i >= 0 {
			m.Selected = i
		}
	case "home", "g":
		if i := m.step(-1, 1); i >= 0 {
			m.Selected = i
		}
	case "end", "G":
		if i := m.step(len(m.Items), -1); i >= 0 {
			m.Selected = i
		}
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if item := m.Items[m.Selected]; !item.Disabled && item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

// window returns the half-open row range to draw.
func (m Menu) window() (int, int) {
	n := len(m.Items)
	if m.Height <= 0 || n <= m.Height {
		return 0, n
	}
	from := m.Selected - m.Height/2
	from = max(0, min(from, n-m.Height))
	return from, from + m.Height
}

func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	from, to := m.window()

	var b strings.Builder
	if from > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("    ↑ %d more", from)) + "\n")
	}
	for i := from; i < to; i++ {
		item := m.Items[i]
		var row string
		switch {
		case item.Disabled:
			row = dim.Render("    " + item.Label)
		case i == m.Selected:
			row = theme.Selected.Render("  ▸ " + item.Label)
		default:
			row = theme.Unselected.Render("    " + item.Label)
		}
		if item.Detail != "" {
			row += "  " + dim.Render(item.Detail)
		}
		b.WriteString(row + "\n")
	}
	if rest := len(m.Items) - to; rest > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("    ↓ %d more", rest)) + "\n")
	}
	return b.String()
}
