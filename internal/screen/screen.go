package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lasi/internal/ui/layout"
)

// Screen is one page of the reader UI.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status line on the
// right side of the header, such as the language and score.
type StatusProvider interface {
	Status() string
}

// EscapeInterceptor is implemented by screens that use Esc themselves,
// for example to leave an input field, before it means "back".
type EscapeInterceptor interface {
	InterceptEscape() bool
}

// Closer is implemented by screens holding resources, such as a running
// audio player, that must be released when they leave the stack.
type Closer interface {
	Close()
}

// Resumer is implemented by screens that refresh themselves when the
// screens above them leave the stack.
type Resumer interface {
	Resume() tea.Cmd
}
