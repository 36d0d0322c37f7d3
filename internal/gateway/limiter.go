package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const anonymousUser = "anonymous"

type userBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// userLimiter keeps one token bucket per user. Buckets idle for longer
// than idle are dropped on the next sweep; by then they would be full.
type userLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*userBucket
	capacity  int
	refill    rate.Limit
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newUserLimiter(capacity int, refill float64, idle time.Duration, now func() time.Time) *userLimiter {
	return &userLimiter{
		buckets:   make(map[string]*userBucket),
		capacity:  capacity,
		refill:    rate.Limit(refill),
		idle:      idle,
		lastSweep: now(),
		now:       now,
	}
}

// allow takes a token for user. When none is left it returns false and
// how long until one will be.
func (l *userLimiter) allow(user string) (bool, time.Duration) {
	if user == "" {
		user = anonymousUser
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		l.sweep(now)
	}

	b, ok := l.buckets[user]
	if !ok {
		b = &userBucket{lim: rate.NewLimiter(l.refill, l.capacity)}
		l.buckets[user] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (l *userLimiter) sweep(now time.Time) {
	for user, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, user)
		}
	}
	l.lastSweep = now
}

func (l *userLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
