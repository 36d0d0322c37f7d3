package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/lang"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, api.ErrorEnvelope{Error: api.APIError{Message: msg, Code: code}})
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "http://x:1", New("http://x:1/").BaseURL())
}

func TestListTextsAndParts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/texts":
			assert.Equal(t, "Latvian", r.URL.Query().Get("lang"))
			writeJSON(w, 200, []api.Text{{Name: "A", Language: "Latvian", Parts: api.Parts{{Name: "Part 1", Text: "x"}}}})
		case "/texts/Two Words/parts":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"Part 2":"b","Part 1":"a"}`)
		default:
			writeErr(w, 404, "not_found", "no such text")
		}
	})
	ctx := context.Background()

	texts, err := c.ListTexts(ctx, lang.Latvian)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "A", texts[0].Name)

	parts, err := c.Parts(ctx, "Two Words", lang.English)
	require.NoError(t, err)
	assert.Equal(t, []string{"Part 2", "Part 1"}, parts.Names())

	_, err = c.Parts(ctx, "missing", lang.English)
	var nf *NotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no such text", nf.Message)
}

func TestUploadAndPreview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/texts":
			var req api.UploadTextRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeJSON(w, 201, api.UploadTextResponse{OK: true, Item: api.Text{Name: req.Name, Language: req.Language}})
		case "/texts/preview":
			var req api.PreviewRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 50, req.TargetTokens)
			writeJSON(w, 200, api.PreviewResponse{Fragments: []string{"a", "b"}})
		}
	})
	ctx := context.Background()

	item, err := c.Upload(ctx, api.UploadTextRequest{Name: "N", Language: "Spanish", Text: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "N", item.Name)

	frags, err := c.Preview(ctx, "a b", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, frags)
}

func TestQuestionsBatch_Indexes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, api.BatchQuestionsResponse{
			QuestionsByFragment: map[string][]string{"0": {"a?"}, "2": {"c?"}},
			TotalFragments:      3,
			TotalAPICalls:       2,
		})
	})

	byIndex, raw, err := c.QuestionsBatch(context.Background(), api.BatchQuestionsRequest{Fragments: []string{"x", "y", "z"}})
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{0: {"a?"}, 2: {"c?"}}, byIndex)
	assert.Equal(t, 2, raw.TotalAPICalls)
}

func TestEvaluate_RateLimitedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, api.EvaluateResponse{Feedback: "wait", RateLimited: true, WaitTime: 6.5})
	})

	got, err := c.Evaluate(context.Background(), api.EvaluateRequest{Fragment: "f", Question: "q"})
	require.NoError(t, err)
	assert.True(t, got.RateLimited)
	assert.Equal(t, 6.5, got.WaitTime)
}

func TestAudio_Decodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, api.AudioResponse{Audio: "bXAz", MIME: "audio/mpeg", Words: []api.WordTiming{{Word: "hi", Start: 0, End: 0.3}}})
	})

	a, err := c.Audio(context.Background(), api.AudioRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), a.Data)
	assert.Len(t, a.Words, 1)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"bad request", 400, func(t *testing.T, err error) {
			var e *InvalidRequest
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "boom", e.Message)
		}},
		{"not found", 404, func(t *testing.T, err error) {
			var e *NotFound
			require.ErrorAs(t, err, &e)
		}},
		{"throttled", 429, func(t *testing.T, err error) {
			var e *RateLimited
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 60*time.Second, e.RetryAfter)
		}},
		{"bad gateway", 502, func(t *testing.T, err error) {
			var e *UpstreamError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 502, e.Status)
		}},
		{"internal", 500, func(t *testing.T, err error) {
			var e *UpstreamError
			require.ErrorAs(t, err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeErr(w, tt.status, "x", "boom")
			})
			_, err := c.Simplify(context.Background(), api.SimplifyRequest{Text: "t"})
			tt.check(t, err)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Format(context.Background(), api.FormatRequest{Text: "x"})
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "POST /qa/format", ne.Op)
	assert.Equal(t, lang.Text(lang.Spanish, lang.MsgNetwork), Message(lang.Spanish, err))
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})
	_, err := c.Questions(context.Background(), api.QuestionsRequest{Fragment: "x"})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
}

func TestCheckServer(t *testing.T) {
	version := "v1.2.0"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		writeJSON(w, 200, api.Health{Status: "ok", Version: version})
	})
	ctx := context.Background()

	h, err := c.CheckServer(ctx, "v1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)

	_, err = c.CheckServer(ctx, "v1.3.0")
	assert.True(t, errors.Is(err, ErrIncompatibleServer))

	version = "(devel)"
	_, err = c.CheckServer(ctx, "v9.0.0")
	assert.NoError(t, err)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, lang.Text(lang.Latvian, lang.MsgNotFound), Message(lang.Latvian, &NotFound{}))
	assert.Equal(t, lang.Text(lang.English, lang.MsgRateLimited), Message(lang.English, &RateLimited{}))
	assert.Equal(t, lang.Text(lang.English, lang.MsgUpstream), Message(lang.English, errors.New("x")))
}
