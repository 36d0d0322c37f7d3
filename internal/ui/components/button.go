package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lasi/internal/ui/theme"
)

// Button is a styled button component.
type Button struct {
	Label   string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Active:  active,
		OnPress: onPress,
	}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Active {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" && b.OnPress != nil {
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// ButtonRow is a horizontal group of buttons with one focused.
type ButtonRow struct {
	Buttons []Button
	focus   int
}

// NewButtonRow focuses the first button.
func NewButtonRow(buttons ...Button) ButtonRow {
	r := ButtonRow{Buttons: buttons}
	r.setFocus(0)
	return r
}

func (r *ButtonRow) setFocus(i int) {
	if i < 0 || i >= len(r.Buttons) {
		return
	}
	r.focus = i
	for j := range r.Buttons {
		r.Buttons[j].Active = j == i
	}
}

// Focused returns the index of the focused button.
func (r ButtonRow) Focused() int {
	return r.focus
}

// Update moves focus with left/right/tab and presses on enter.
func (r ButtonRow) Update(msg tea.Msg) (ButtonRow, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(r.Buttons) == 0 {
		return r, nil
	}
	switch kmsg.String() {
	case "left", "h", "shift+tab":
		r.setFocus(r.focus - 1)
		return r, nil
	case "right", "l", "tab":
		r.setFocus(r.focus + 1)
		return r, nil
	}
	var cmd tea.Cmd
	r.Buttons[r.focus], cmd = r.Buttons[r.focus].Update(msg)
	return r, cmd
}

// View renders the buttons side by side.
func (r ButtonRow) View() string {
	views := make([]string, len(r.Buttons))
	for i, b := range r.Buttons {
		views[i] = b.View()
	}
	return strings.Join(views, "  ")
}
