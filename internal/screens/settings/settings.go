// Package settings lets the reader pick language, question difficulty,
// simplification level and answer strictness.
package settings

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/session"
	"github.com/abhisek/lasi/internal/ui/components"
	"github.com/abhisek/lasi/internal/ui/layout"
	"github.com/abhisek/lasi/internal/ui/theme"
)

// SavedMsg is delivered to the screen below after settings are applied.
type SavedMsg struct {
	LanguageChanged bool
}

// Orchestrator is the part of *session.Orchestrator settings changes.
type Orchestrator interface {
	Snapshot() *session.State
	SetLanguage(l lang.Language)
	SetDifficulty(d gateway.Difficulty)
	SetLevel(level gateway.Level)
	SetStrictness(n gateway.Strictness)
}

const (
	rowLanguage = iota
	rowDifficulty
	rowLevel
	rowStrictness
)

// SettingsScreen edits reading preferences.
type SettingsScreen struct {
	orch    Orchestrator
	pickers []components.Picker
	focus   int
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen showing the orchestrator's current values.
func New(orch Orchestrator) *SettingsScreen {
	st := orch.Snapshot()

	langs := make([]string, len(lang.All))
	for i, l := range lang.All {
		langs[i] = string(l)
	}
	s := &SettingsScreen{
		orch: orch,
		pickers: []components.Picker{
			rowLanguage: components.NewPicker("Language", langs, string(st.Language)),
			rowDifficulty: components.NewPicker("Questions", []string{
				string(gateway.DifficultyEasy), string(gateway.DifficultyStandard), string(gateway.DifficultyChallenge),
			}, string(st.Difficulty)),
			rowLevel: components.NewPicker("Simplify", []string{
				string(gateway.LevelGentle), string(gateway.LevelDefault), string(gateway.LevelDeep),
			}, string(st.Level)),
			rowStrictness: components.NewPicker("Strictness", []string{"1", "2", "3"},
				strconv.Itoa(int(st.Strictness))),
		},
	}
	s.setFocus(0)
	return s
}

func (s *SettingsScreen) setFocus(i int) {
	if i < 0 || i >= len(s.pickers) {
		return
	}
	s.focus = i
	for j := range s.pickers {
		s.pickers[j].Focused = j == i
	}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Setting"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		s.setFocus(s.focus - 1)
		return s, nil
	case "down", "j", "tab":
		s.setFocus(s.focus + 1)
		return s, nil
	case "enter":
		saved := s.apply()
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return saved },
		)
	}

	var cmd tea.Cmd
	s.pickers[s.focus], cmd = s.pickers[s.focus].Update(msg)
	return s, cmd
}

// apply copies every picker into the orchestrator.
func (s *SettingsScreen) apply() SavedMsg {
	before := s.orch.Snapshot().Language
	l := lang.Normalize(s.pickers[rowLanguage].Value())

	s.orch.SetLanguage(l)
	s.orch.SetDifficulty(gateway.ParseDifficulty(s.pickers[rowDifficulty].Value()))
	s.orch.SetLevel(gateway.ParseLevel(s.pickers[rowLevel].Value()))
	n, _ := strconv.Atoi(s.pickers[rowStrictness].Value())
	s.orch.SetStrictness(gateway.ParseStrictness(n))

	return SavedMsg{LanguageChanged: l != before}
}

func (s *SettingsScreen) View(width, height int) string {
	cw := components.ContentWidth(width, 70)

	rows := make([]string, len(s.pickers))
	for i, p := range s.pickers {
		rows[i] = p.View()
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Reading settings"))
	b.WriteString("\n\n")
	b.WriteString(components.Card(strings.Join(rows, "\n\n"), cw))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(
		"Changing the language returns to the text list. Strictness 1 is gentle, 3 is strict."))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
