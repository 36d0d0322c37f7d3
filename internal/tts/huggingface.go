package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/abhisek/lasi/internal/lang"
)

const defaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"

// DefaultHFModels are the MMS voices used per language.
var DefaultHFModels = map[string]string{
	string(lang.English): "facebook/mms-tts-eng",
	string(lang.Latvian): "facebook/mms-tts-lav",
	string(lang.Spanish): "facebook/mms-tts-spa",
	string(lang.Russian): "facebook/mms-tts-rus",
}

// HFSynthesizer calls a Hugging Face inference model through the router.
type HFSynthesizer struct {
	token   string
	baseURL string
	models  map[string]string
	http    *http.Client
}

// NewHFSynthesizer creates a Hugging Face synthesizer.
func NewHFSynthesizer(cfg HuggingFaceConfig, client *http.Client) (*HFSynthesizer, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("hugging face token is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultHFBaseURL
	}
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultHFModels
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HFSynthesizer{token: cfg.Token, baseURL: base, models: models, http: client}, nil
}

func (s *HFSynthesizer) Name() string { return "huggingface" }

func (s *HFSynthesizer) Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error) {
	model, ok := s.models[string(l)]
	if !ok {
		return nil, fmt.Errorf("huggingface: no model for %s", l)
	}

	raw, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+model, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read huggingface audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	mt := "audio/flac"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil && parsed != "application/octet-stream" {
			mt = parsed
		}
	}
	return &Result{Audio: data, MIME: mt}, nil
}
