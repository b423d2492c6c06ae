package gate

import (
	"container/list"
	"sync"
	"time"

	"github.com/drmoyassine/masteragent/internal/models"
)

// window is a per-agent sliding-window timestamp deque: on each admitted
// request, evict timestamps older than now-60s, reject if the remaining
// count reaches the limit, else append. container/list gives O(1) eviction
// from the front.
type window struct {
	mu    sync.Mutex
	times *list.List
}

// RateLimiter enforces a 1-minute sliding window per agent. Reads/writes to
// a single agent's entry are serialized; distinct agents never contend.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	perMin   int
	enabled  bool
}

// NewRateLimiter constructs a limiter. Call Configure to refresh
// perMin/enabled from Settings on each tick; the limiter does not read
// Settings itself.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window)}
}

// Configure applies the current Settings values. Safe to call concurrently
// with Allow.
func (rl *RateLimiter) Configure(enabled bool, perMinute int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.enabled = enabled
	rl.perMin = perMinute
}

func (rl *RateLimiter) windowFor(agentID string) *window {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[agentID]
	if !ok {
		w = &window{times: list.New()}
		rl.windows[agentID] = w
	}
	return w
}

// Allow admits or rejects one request for agentID at time now. Returns a
// models.Error with KindRate when the window is full.
func (rl *RateLimiter) Allow(agentID string, now time.Time) error {
	rl.mu.Lock()
	enabled, limit := rl.enabled, rl.perMin
	rl.mu.Unlock()

	if !enabled || limit <= 0 {
		return nil
	}

	w := rl.windowFor(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	for e := w.times.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(cutoff) {
			w.times.Remove(e)
		} else {
			break // list is append-ordered, so the rest are newer
		}
		e = next
	}

	if w.times.Len() >= limit {
		return models.NewRateError("rate limit exceeded")
	}
	w.times.PushBack(now)
	return nil
}

// GC evicts stale windows opportunistically:
// any agent whose entire window has aged out of the last minute is removed
// from the map so it does not grow without bound across distinct agents.
func (rl *RateLimiter) GC(now time.Time) int {
	rl.mu.Lock()
	agents := make([]string, 0, len(rl.windows))
	for id := range rl.windows {
		agents = append(agents, id)
	}
	rl.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	evicted := 0
	for _, id := range agents {
		rl.mu.Lock()
		w, ok := rl.windows[id]
		rl.mu.Unlock()
		if !ok {
			continue
		}

		w.mu.Lock()
		empty := w.times.Len() == 0
		if !empty {
			back := w.times.Back().Value.(time.Time)
			empty = back.Before(cutoff)
		}
		w.mu.Unlock()

		if empty {
			rl.mu.Lock()
			delete(rl.windows, id)
			rl.mu.Unlock()
			evicted++
		}
	}
	return evicted
}
