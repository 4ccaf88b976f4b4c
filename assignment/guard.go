package assignment

import (
	"sync"
	"time"
)

const DefaultDropWindow = 400 * time.Millisecond

// DropGuard rejects a repeated commit of the same drag gesture inside Window.
// Overlapping drop callbacks for one gesture share a key.
type DropGuard struct {
	Window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewDropGuard(window time.Duration) *DropGuard {
	if window <= 0 {
		window = DefaultDropWindow
	}
	return &DropGuard{Window: window, last: map[string]time.Time{}}
}

// Allow records a commit for key at now. It returns false when the previous
// commit for key is less than Window ago, or in the future.
func (g *DropGuard) Allow(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last == nil {
		g.last = map[string]time.Time{}
	}
	if prev, ok := g.last[key]; ok && now.Before(prev.Add(g.Window)) {
		return false
	}
	g.last[key] = now

	if len(g.last) > 1024 {
		for k, at := range g.last {
			if now.Sub(at) >= g.Window {
				delete(g.last, k)
			}
		}
	}
	return true
}

// Forget gives key back when the commit claimed by Allow at at failed, so
// the same gesture can be retried. A newer claim is left alone.
func (g *DropGuard) Forget(key string, at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.last[key]; ok && prev.Equal(at) {
		delete(g.last, key)
	}
}
