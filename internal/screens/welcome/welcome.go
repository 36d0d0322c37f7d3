package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screen"
	"github.com/abhisek/lasi/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const bookArt = `   __________   __________
  /          \ /          \
 |  ~~~~~~~~  |  ~~~~~~~~  |
 |  ~~~~~~~   |  ~~~~~~~   |
 |  ~~~~~~~~  |  ~~~~~~~~  |
 |  ~~~~~     |  ~~~~~~    |
  \__________/ \__________/`

// pageFrames flicker beside the book while it opens.
var pageFrames = []string{"✦", "·"}

type tickMsg time.Time

// WelcomeScreen shows a short splash before the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	tagline      string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen made by
// homeFactory on the first key press.
func New(homeFactory func() screen.Screen, tagline string) *WelcomeScreen {
	if tagline == "" {
		tagline = "Read. Understand. Answer."
	}
	return &WelcomeScreen{
		homeFactory: homeFactory,
		tagline:     tagline,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Secondary).Render(bookArt)

	if w.elapsed >= phase1End {
		mark := pageFrames[w.tickCount%len(pageFrames)]
		accent := lipgloss.NewStyle().Foreground(theme.Accent).Render(mark)
		lines := strings.Split(rendered, "\n")
		for _, i := range []int{1, 4} {
			if i < len(lines) {
				lines[i] = accent + "  " + lines[i] + "  " + accent
			}
		}
		rendered = strings.Join(lines, "\n")
	}
	sections = append(sections, rendered)

	if w.elapsed >= phase2End {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(w.tagline),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
