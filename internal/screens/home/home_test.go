package home

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/router"
	"github.com/abhisek/lasi/internal/screens/reader"
	"github.com/abhisek/lasi/internal/screens/settings"
	"github.com/abhisek/lasi/internal/session"
)

type fakeLibrary struct {
	texts map[lang.Language][]api.Text
	err   error
	asked []lang.Language
}

func (f *fakeLibrary) ListTexts(_ context.Context, l lang.Language) ([]api.Text, error) {
	f.asked = append(f.asked, l)
	return f.texts[l], f.err
}

func (f *fakeLibrary) Parts(_ context.Context, name string, l lang.Language) (api.Parts, error) {
	for _, t := range f.texts[l] {
		if t.Name == name {
			return t.Parts, nil
		}
	}
	return nil, &apiclient.NotFound{Message: name}
}

func (f *fakeLibrary) Simplify(context.Context, api.SimplifyRequest) (string, error) { return "", nil }
func (f *fakeLibrary) Format(context.Context, api.FormatRequest) (string, error)     { return "", nil }
func (f *fakeLibrary) Questions(context.Context, api.QuestionsRequest) ([]string, error) {
	return nil, nil
}
func (f *fakeLibrary) QuestionsBatch(context.Context, api.BatchQuestionsRequest) (map[int][]string, *api.BatchQuestionsResponse, error) {
	return nil, nil, nil
}
func (f *fakeLibrary) Evaluate(context.Context, api.EvaluateRequest) (*api.EvaluateResponse, error) {
	return nil, nil
}
func (f *fakeLibrary) Audio(context.Context, api.AudioRequest) (*apiclient.Audio, error) {
	return nil, nil
}

func newHome(lib *fakeLibrary) (*HomeScreen, *session.Orchestrator) {
	st := session.NewState(lang.English, gateway.DifficultyStandard, gateway.LevelDefault, gateway.StrictnessBalanced)
	orch := session.NewOrchestrator(lib, st, "tester", nil)
	return New(lib, orch, reader.Options{}), orch
}

func library() *fakeLibrary {
	return &fakeLibrary{texts: map[lang.Language][]api.Text{
		lang.English: {
			{Name: "Cats", Parts: api.Parts{{Name: "1", Text: "A cat."}, {Name: "2", Text: "Another cat."}}},
			{Name: "Mine", Source: api.SourceUpload, Parts: api.Parts{{Name: "1", Text: "My text."}}},
		},
		lang.Latvian: {
			{Name: "Kaķi", Parts: api.Parts{{Name: "1", Text: "Kaķis."}}},
		},
	}}
}

func send(h *HomeScreen, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := h.Update(cmd())
	return next
}

func TestListsTextsOnInit(t *testing.T) {
	h, _ := newHome(library())
	assert.Contains(t, h.View(100, 30), "Loading texts")

	send(h, h.Init())

	view := h.View(100, 30)
	assert.Contains(t, view, "Cats")
	assert.Contains(t, view, "2 parts")
	assert.Contains(t, view, "1 part · uploaded")
	assert.Len(t, h.menu.Items, 4)
}

func TestLanguageSwitchReloads(t *testing.T) {
	lib := library()
	h, orch := newHome(lib)
	send(h, h.Init())

	_, cmd := h.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	send(h, cmd)

	assert.Equal(t, lang.Latvian, orch.Snapshot().Language)
	assert.Equal(t, []lang.Language{lang.English, lang.Latvian}, lib.asked)
	assert.Contains(t, h.View(100, 30), "Kaķi")
}

func TestStaleListIgnored(t *testing.T) {
	h, _ := newHome(library())
	_ = h.Init()
	send(h, h.load())

	_, _ = h.Update(textsLoadedMsg{gen: 1, err: errors.New("late")})
	assert.Len(t, h.texts, 2)
	assert.Empty(t, h.errMsg)
}

func TestOpenTextPushesReader(t *testing.T) {
	h, orch := newHome(library())
	send(h, h.Init())

	cmd := send(h, func() tea.Msg { return tea.KeyPressMsg{Code: tea.KeyEnter} })
	require.NotNil(t, cmd)
	assert.Contains(t, h.View(100, 30), "Opening Cats")

	push := send(h, cmd)
	require.NotNil(t, push)
	msg, ok := push().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Cats", msg.Screen.Title())
	assert.Equal(t, "Cats", orch.Snapshot().TextName)
}

func TestListErrorShown(t *testing.T) {
	lib := library()
	lib.err = &apiclient.NetworkError{Err: errors.New("refused")}
	h, _ := newHome(lib)
	send(h, h.Init())

	assert.Contains(t, h.View(100, 30), "connect")
	assert.Len(t, h.menu.Items, 2, "settings and quit remain")
}

func TestSettingsSavedReloadsOnLanguageChange(t *testing.T) {
	lib := library()
	h, orch := newHome(lib)
	send(h, h.Init())

	_, cmd := h.Update(settings.SavedMsg{})
	assert.Nil(t, cmd)

	orch.SetLanguage(lang.Latvian)
	_, cmd = h.Update(settings.SavedMsg{LanguageChanged: true})
	require.NotNil(t, cmd)
	send(h, cmd)
	assert.Equal(t, []lang.Language{lang.English, lang.Latvian}, lib.asked)
	assert.Equal(t, "Kaķi", h.texts[0].Name)
}

func TestResumeReloadsOnlyWhenLanguageChanged(t *testing.T) {
	lib := library()
	h, orch := newHome(lib)
	send(h, h.Init())

	assert.Nil(t, h.Resume(), "same language keeps the list")

	orch.SetLanguage(lang.Latvian)
	cmd := h.Resume()
	require.NotNil(t, cmd)
	send(h, cmd)
	assert.Equal(t, []lang.Language{lang.English, lang.Latvian}, lib.asked)

	// Settings saved after the resume finds the list already current.
	_, cmd = h.Update(settings.SavedMsg{LanguageChanged: true})
	assert.Nil(t, cmd)
}
