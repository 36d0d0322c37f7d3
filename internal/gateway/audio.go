package gateway

import (
	"context"
	"strings"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/tts"
)

// AudioClip is narration for a text with per-word timings. Timings refer
// to the words of the text as given, not the cleaned speech text.
type AudioClip struct {
	Audio []byte
	MIME  string
	Words []tts.WordTiming
}

// Audio synthesizes narration for text. Timings are empty when the
// timing mode is off.
func (g *Gateway) Audio(ctx context.Context, text string, l lang.Language) (*AudioClip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidf("text is empty")
	}
	if g.speech == nil {
		return nil, upstream("audio", tts.ErrNoProvider)
	}

	spoken := tts.CleanText(text)
	res, err := g.speech.Synthesize(ctx, spoken, l)
	if err != nil {
		return nil, upstream("audio", err)
	}

	mime := res.MIME
	if mime == "" {
		mime = "audio/mpeg"
	}
	return &AudioClip{
		Audio: res.Audio,
		MIME:  mime,
		Words: tts.ResolveTimings(g.opts.Timings, text, l, res.Timings),
	}, nil
}
