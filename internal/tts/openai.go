package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/lasi/internal/lang"
)

// OpenAISynthesizer uses the OpenAI speech endpoint. The tts-1 voices are
// multilingual, so one voice serves every language.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAISynthesizer creates an OpenAI speech synthesizer.
func NewOpenAISynthesizer(cfg OpenAIConfig) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model, voice := cfg.Model, cfg.Voice
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	return &OpenAISynthesizer{
		client: openai.NewClientWithConfig(config),
		model:  model,
		voice:  voice,
	}, nil
}

func (s *OpenAISynthesizer) Name() string { return "openai" }

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, _ lang.Language) (*Result, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read openai speech: %w", err)
	}
	return &Result{Audio: audio, MIME: "audio/mpeg"}, nil
}
