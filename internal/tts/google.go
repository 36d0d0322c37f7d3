package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/abhisek/lasi/internal/lang"
)

const defaultGoogleBaseURL = "https://texttospeech.googleapis.com"

// googleVoices pins a locale per language; the API picks the default voice
// for the locale.
var googleVoices = map[lang.Language]string{
	lang.English: "en-US",
	lang.Latvian: "lv-LV",
	lang.Spanish: "es-ES",
	lang.Russian: "ru-RU",
}

// GoogleSynthesizer calls the Cloud Text-to-Speech REST API with an API key.
type GoogleSynthesizer struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewGoogleSynthesizer creates a Google Cloud TTS synthesizer.
func NewGoogleSynthesizer(cfg GoogleConfig, client *http.Client) (*GoogleSynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google TTS API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultGoogleBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleSynthesizer{apiKey: cfg.APIKey, baseURL: base, http: client}, nil
}

func (s *GoogleSynthesizer) Name() string { return "google" }

type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error) {
	locale, ok := googleVoices[l]
	if !ok {
		locale = googleVoices[lang.English]
	}

	var body googleRequest
	body.Input.Text = text
	body.Voice.LanguageCode = locale
	body.AudioConfig.AudioEncoding = "MP3"
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := s.baseURL + "/v1/text:synthesize?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tts: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read google tts: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google tts: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var out googleResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode google tts: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode google audio: %w", err)
	}
	return &Result{Audio: audio, MIME: "audio/mpeg"}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
