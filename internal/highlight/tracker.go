package highlight

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/lasi/internal/api"
)

// WordAt returns the index of the word whose [start, end) interval holds
// pos seconds, or -1.
func WordAt(timings []api.WordTiming, pos float64) int {
	i := sort.Search(len(timings), func(i int) bool { return timings[i].End > pos })
	if i < len(timings) && timings[i].Start <= pos {
		return i
	}
	return -1
}

// Stopwatch is a pausable playback clock.
type Stopwatch struct {
	mu      sync.Mutex
	started time.Time
	elapsed time.Duration
	running bool
	now     func() time.Time
}

// NewStopwatch returns a stopped clock at zero.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.started = s.now()
		s.running = true
	}
}

func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.elapsed += s.now().Sub(s.started)
		s.running = false
	}
}

// Position is the playback time in seconds.
func (s *Stopwatch) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.elapsed
	if s.running {
		d += s.now().Sub(s.started)
	}
	return d.Seconds()
}

// DefaultInterval is the polling period of a Tracker.
const DefaultInterval = 50 * time.Millisecond

// Tracker polls a playback position and reports the current word index
// whenever it changes. It must be stopped when playback stops, pauses or
// the clip is closed.
type Tracker struct {
	timings  []api.WordTiming
	position func() float64
	interval time.Duration

	updates chan int
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewTracker starts polling position every interval until ctx is done or
// Stop is called. Updates is closed when polling ends.
func NewTracker(ctx context.Context, timings []api.WordTiming, position func() float64, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		timings:  timings,
		position: position,
		interval: interval,
		updates:  make(chan int, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

// Updates delivers word indexes; -1 means between words. Only the latest
// value is kept if the reader falls behind.
func (t *Tracker) Updates() <-chan int {
	return t.updates
}

// Stop ends polling and waits for the loop to exit. It is safe to call
// more than once.
func (t *Tracker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	defer close(t.updates)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	last := -2
	for {
		if idx := WordAt(t.timings, t.position()); idx != last {
			last = idx
			t.publish(idx)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// publish replaces any unread value so the channel never blocks the loop.
func (t *Tracker) publish(idx int) {
	select {
	case <-t.updates:
	default:
	}
	t.updates <- idx
}
