package reader

import (
	"time"

	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/session"
)

// actionDoneMsg is sent when an orchestrator call returns.
type actionDoneMsg struct {
	Action session.Action
	Err    error
	Batch  *session.BatchStats
	Eval   *session.Evaluation
	Audio  *apiclient.Audio
}

// wordMsg reports the narrated word index of playback Gen. Closed is set
// once the tracker stops.
type wordMsg struct {
	Gen    int
	Index  int
	Closed bool
}

// playbackDoneMsg is sent when playback Gen ends on its own.
type playbackDoneMsg struct {
	Gen int
	Err error
}

// spinnerTickMsg animates the busy indicator.
type spinnerTickMsg time.Time
