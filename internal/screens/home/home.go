// Package home lists the texts available in the current language.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/screens/reader"
	"github.com/abhisek/lasi/internal/screens/settings"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/components"
	"github.com/abhisek/lasi/internal/ui/layout"
	"github.com/abhisek/lasi/internal/ui/theme"
)

// TextLister lists the texts of one language. *apiclient.Client
// implements it.
type TextLister interface {
	ListTexts(ctx context.Context, l lang.Language) ([]api.Text, error)
}

type textsLoadedMsg struct {
	gen   int
	texts []api.Text
	err   error
}

type textOpenedMsg struct {
	name string
	err  error
}

// HomeScreen is the text picker.
type HomeScreen struct {
	lister TextLister
	orch   *session.Orchestrator
	opts   reader.Options

	texts   []api.Text
	menu    components.Menu
	shown   lang.Language // language of the last load
	gen     int
	loading bool
	opening string
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen. Texts are fetched on Init.
func New(lister TextLister, orch *session.Orchestrator, opts reader.Options) *HomeScreen {
	h := &HomeScreen{lister: lister, orch: orch, opts: opts}
	h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Texts"
}

func (h *HomeScreen) Status() string {
	return string(h.orch.Snapshot().Language)
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Read"},
		{Key: "l", Description: "Language"},
		{Key: "s", Description: "Settings"},
		{Key: "ctrl+c", Description: "Quit"},
	}
}

// load fetches texts for the current language. Replies to an older load
// are dropped.
func (h *HomeScreen) load() tea.Cmd {
	h.gen++
	h.loading = true
	h.errMsg = ""
	gen, l := h.gen, h.orch.Snapshot().Language
	h.shown = l
	return func() tea.Msg {
		texts, err := h.lister.ListTexts(context.Background(), l)
		return textsLoadedMsg{gen: gen, texts: texts, err: err}
	}
}

// reloadIfStale reloads when the language changed since the last load,
// for example from the reader or the settings screen.
func (h *HomeScreen) reloadIfStale() tea.Cmd {
	if h.orch.Snapshot().Language == h.shown {
		return nil
	}
	return h.load()
}

func (h *HomeScreen) Resume() tea.Cmd {
	return h.reloadIfStale()
}

func (h *HomeScreen) open(name string) tea.Cmd {
	if h.opening != "" {
		return nil
	}
	h.opening = name
	h.errMsg = ""
	return func() tea.Msg {
		return textOpenedMsg{name: name, err: h.orch.SelectText(context.Background(), name)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case textsLoadedMsg:
		if msg.gen != h.gen {
			return h, nil
		}
		h.loading = false
		if msg.err != nil {
			h.errMsg = session.Message(h.orch.Snapshot().Language, msg.err)
			h.texts = nil
		} else {
			h.texts = msg.texts
		}
		h.buildMenu()
		return h, nil

	case textOpenedMsg:
		h.opening = ""
		if msg.err != nil {
			h.errMsg = session.Message(h.orch.Snapshot().Language, msg.err)
			return h, nil
		}
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: reader.New(h.orch, h.opts)}
		}

	case settings.SavedMsg:
		if msg.LanguageChanged {
			return h, h.reloadIfStale()
		}
		return h, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "l", "tab":
			h.orch.SetLanguage(h.orch.Snapshot().Language.Next())
			return h, h.load()
		case "r":
			return h, h.load()
		case "s":
			return h, openSettings(h.orch)
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func openSettings(orch *session.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: settings.New(orch)}
	}
}

func (h *HomeScreen) buildMenu() {
	items := make([]components.MenuItem, 0, len(h.texts)+2)
	for _, t := range h.texts {
		name := t.Name
		detail := fmt.Sprintf("%d parts", len(t.Parts))
		if len(t.Parts) == 1 {
			detail = "1 part"
		}
		if t.Source == api.SourceUpload {
			detail += " · uploaded"
		}
		items = append(items, components.MenuItem{
			Label:  name,
			Detail: detail,
			Action: func() tea.Cmd { return h.open(name) },
		})
	}
	items = append(items,
		components.MenuItem{Label: "Settings", Action: func() tea.Cmd { return openSettings(h.orch) }},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(h.texts) {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width, 64)
	l := h.orch.Snapshot().Language

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render("Choose a text"))
	sections = append(sections, theme.Subtitle.Width(cw).Render("Language: "+string(l)+"  (press l to change)"))

	var body strings.Builder
	switch {
	case h.loading:
		body.WriteString(theme.Hint.Render("Loading texts...") + "\n\n")
	case h.errMsg != "":
		body.WriteString(theme.Incorrect.Render(h.errMsg) + "\n\n")
	case len(h.texts) == 0:
		body.WriteString(theme.Hint.Render("No texts in this language yet. Upload one with `lasi texts upload`.") + "\n\n")
	}
	if h.opening != "" {
		body.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("Opening "+h.opening+"...") + "\n\n")
	}
	// Title, subtitle, card border and status lines take about ten rows.
	h.menu.Height = max(height-10, 3)
	body.WriteString(h.menu.View())
	sections = append(sections, components.Card(strings.TrimRight(body.String(), "\n"), cw))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
