// Package app is the root Bubble Tea model of the terminal reader.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/screens/home"
	"github.com/abhisek/lasi/internal/screens/reader"
	"github.com/abhisek/lasi/internal/screens/welcome"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/layout"
)

// Deps holds the services the screens need.
type Deps struct {
	Texts        home.TextLister
	Orchestrator *session.Orchestrator
	Reader       reader.Options
	Tagline      string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel starts on the welcome screen, which hands over to home.
func newAppModel(deps Deps) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(deps.Texts, deps.Orchestrator, deps.Reader)
	}
	return AppModel{
		router: router.New(welcome.New(homeFactory, deps.Tagline)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.PopToRoot()
			return m, tea.Quit
		case "esc":
			if ei, ok := m.router.Active().(screen.EscapeInterceptor); ok && ei.InterceptEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints := kp.KeyHints()
		ei, ok := active.(screen.EscapeInterceptor)
		if m.router.Depth() > 1 && !(ok && ei.InterceptEscape()) {
			hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
		}
		return hints
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(newAppModel(deps), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
