// Package apiclient is a typed client for the lasi HTTP API. Transport
// failures and error statuses are mapped to the error types in errors.go.
package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/lang"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to one lasi server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for baseURL, falling back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health fetches the server status.
func (c *Client) Health(ctx context.Context) (*api.Health, error) {
	var out api.Health
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrIncompatibleServer is returned by CheckServer when the server is
// older than the required version.
var ErrIncompatibleServer = errors.New("incompatible server version")

// CheckServer verifies the server is up and, when both versions are valid
// semver, that its version is at least minVersion. Development builds
// are always accepted.
func (c *Client) CheckServer(ctx context.Context, minVersion string) (*api.Health, error) {
	h, err := c.Health(ctx)
	if err != nil {
		return nil, err
	}
	if !semver.IsValid(minVersion) || !semver.IsValid(h.Version) {
		return h, nil
	}
	if semver.Compare(h.Version, minVersion) < 0 {
		return h, fmt.Errorf("%w: server %s, need %s or newer", ErrIncompatibleServer, h.Version, minVersion)
	}
	return h, nil
}

// ListTexts returns the texts available in l.
func (c *Client) ListTexts(ctx context.Context, l lang.Language) ([]api.Text, error) {
	var out []api.Text
	path := "/texts?" + url.Values{"lang": {string(l)}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Parts returns the ordered parts of one text.
func (c *Client) Parts(ctx context.Context, name string, l lang.Language) (api.Parts, error) {
	var out api.Parts
	path := "/texts/" + url.PathEscape(name) + "/parts?" + url.Values{"lang": {string(l)}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload stores a text on the server.
func (c *Client) Upload(ctx context.Context, req api.UploadTextRequest) (*api.Text, error) {
	var out api.UploadTextResponse
	if err := c.do(ctx, http.MethodPost, "/texts", req, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// DeleteText removes an uploaded text.
func (c *Client) DeleteText(ctx context.Context, name string, l lang.Language) error {
	path := "/texts/" + url.PathEscape(name) + "?" + url.Values{"lang": {string(l)}}.Encode()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Preview splits text on the server without storing it.
func (c *Client) Preview(ctx context.Context, text string, targetTokens int) ([]string, error) {
	var out api.PreviewResponse
	err := c.do(ctx, http.MethodPost, "/texts/preview", api.PreviewRequest{Text: text, TargetTokens: targetTokens}, &out)
	if err != nil {
		return nil, err
	}
	return out.Fragments, nil
}

func (c *Client) Simplify(ctx context.Context, req api.SimplifyRequest) (string, error) {
	var out api.TextResponse
	if err := c.do(ctx, http.MethodPost, "/qa/simplify", req, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) Format(ctx context.Context, req api.FormatRequest) (string, error) {
	var out api.TextResponse
	if err := c.do(ctx, http.MethodPost, "/qa/format", req, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) Questions(ctx context.Context, req api.QuestionsRequest) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodPost, "/qa/questions", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QuestionsBatch returns questions keyed by fragment index.
func (c *Client) QuestionsBatch(ctx context.Context, req api.BatchQuestionsRequest) (map[int][]string, *api.BatchQuestionsResponse, error) {
	var out api.BatchQuestionsResponse
	if err := c.do(ctx, http.MethodPost, "/qa/questions/batch", req, &out); err != nil {
		return nil, nil, err
	}
	byIndex := make(map[int][]string, len(out.QuestionsByFragment))
	for k, qs := range out.QuestionsByFragment {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, nil, &UpstreamError{Status: http.StatusOK, Message: fmt.Sprintf("bad fragment index %q", k)}
		}
		byIndex[i] = qs
	}
	return byIndex, &out, nil
}

func (c *Client) Evaluate(ctx context.Context, req api.EvaluateRequest) (*api.EvaluateResponse, error) {
	var out api.EvaluateResponse
	if err := c.do(ctx, http.MethodPost, "/qa/evaluate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Audio is decoded narration with word timings.
type Audio struct {
	Data  []byte
	MIME  string
	Words []api.WordTiming
}

func (c *Client) Audio(ctx context.Context, req api.AudioRequest) (*Audio, error) {
	var out api.AudioResponse
	if err := c.do(ctx, http.MethodPost, "/qa/audio", req, &out); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(out.Audio)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusOK, Message: "audio is not valid base64"}
	}
	return &Audio{Data: data, MIME: out.MIME, Words: out.Words}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + strings.SplitN(path, "?", 2)[0]

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode >= 400 {
		return statusError(resp, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := http.StatusText(resp.StatusCode)
	var env api.ErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		msg = env.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &InvalidRequest{Message: msg}
	case http.StatusNotFound:
		return &NotFound{Message: msg}
	case http.StatusTooManyRequests:
		var wait time.Duration
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			wait = time.Duration(s) * time.Second
		}
		return &RateLimited{RetryAfter: wait, Message: msg}
	}
	return &UpstreamError{Status: resp.StatusCode, Message: msg}
}
