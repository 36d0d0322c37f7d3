package reader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/highlight"
)

// playback is one narration of a part. With a player command the audio
// is written to a temp file and played by that process; without one the
// words are highlighted silently at narration speed.
type playback struct {
	gen       int
	audio     *apiclient.Audio
	stopwatch *highlight.Stopwatch
	tracker   *highlight.Tracker
	cancel    context.CancelFunc
	proc      *exec.Cmd
	file      string
	paused    bool
}

func mimeExt(mime string) string {
	switch mime {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac":
		return ".flac"
	}
	return ".mp3"
}

// startPlayback begins narration. player is split on whitespace and the
// audio file path is appended as its last argument.
func startPlayback(gen int, player string, audio *apiclient.Audio) (*playback, error) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &playback{
		gen:       gen,
		audio:     audio,
		stopwatch: highlight.NewStopwatch(),
		cancel:    cancel,
	}

	if args := strings.Fields(player); len(args) > 0 && len(audio.Data) > 0 {
		f, err := os.CreateTemp("", "lasi-*"+mimeExt(audio.MIME))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create audio file: %w", err)
		}
		p.file = f.Name()
		_, werr := f.Write(audio.Data)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			p.stop()
			return nil, fmt.Errorf("write audio file: %w", firstErr(werr, cerr))
		}

		args = append(args, p.file)
		p.proc = exec.CommandContext(ctx, args[0], args[1:]...)
		if err := p.proc.Start(); err != nil {
			p.proc = nil
			p.stop()
			return nil, fmt.Errorf("start audio player: %w", err)
		}
	}

	p.resume()
	return p, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// resume starts the clock and a fresh word tracker.
func (p *playback) resume() {
	p.paused = false
	p.stopwatch.Start()
	p.tracker = highlight.NewTracker(context.Background(), p.audio.Words, p.stopwatch.Position, highlight.DefaultInterval)
}

// pause stops the clock and the tracker. Only silent playback can pause;
// an external player is stopped instead.
func (p *playback) pause() bool {
	if p.proc != nil {
		return false
	}
	p.paused = true
	p.stopwatch.Pause()
	p.tracker.Stop()
	return true
}

// stop ends playback and removes the temp file. Safe to call twice.
func (p *playback) stop() {
	if p.tracker != nil {
		p.tracker.Stop()
	}
	p.cancel()
	if p.file != "" {
		_ = os.Remove(p.file)
		p.file = ""
	}
}

// duration is the end of the last word, or zero without timings.
func (p *playback) duration() time.Duration {
	words := p.audio.Words
	if len(words) == 0 {
		return 0
	}
	return time.Duration(words[len(words)-1].End * float64(time.Second))
}

// nextWord waits for the tracker's next update.
func (p *playback) nextWord() tea.Cmd {
	updates, gen := p.tracker.Updates(), p.gen
	return func() tea.Msg {
		idx, ok := <-updates
		return wordMsg{Gen: gen, Index: idx, Closed: !ok}
	}
}

// waitDone resolves when the player exits, or for silent playback when
// the last word has been read out.
func (p *playback) waitDone() tea.Cmd {
	gen := p.gen
	if p.proc != nil {
		proc := p.proc
		return func() tea.Msg {
			return playbackDoneMsg{Gen: gen, Err: proc.Wait()}
		}
	}
	remaining := p.duration() - time.Duration(p.stopwatch.Position()*float64(time.Second))
	if remaining < 0 {
		remaining = 0
	}
	return tea.Tick(remaining+highlight.DefaultInterval, func(time.Time) tea.Msg {
		return playbackDoneMsg{Gen: gen}
	})
}
