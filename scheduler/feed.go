package scheduler

import (
	"sync"

	"github.com/hidenkeys/frontdesk/lifecycle"
)

const defaultFeedSize = 200

// Feed keeps the most recent reminder notifications for the front desk.
type Feed struct {
	mu    sync.Mutex
	size  int
	items []lifecycle.Notification
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{size: size}
}

func (f *Feed) Push(notes ...lifecycle.Notification) {
	if len(notes) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, notes...)
	if over := len(f.items) - f.size; over > 0 {
		f.items = append([]lifecycle.Notification(nil), f.items[over:]...)
	}
}

// Recent returns the kept notifications, oldest first.
func (f *Feed) Recent() []lifecycle.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]lifecycle.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Dismiss drops every kept notification of a reminder.
func (f *Feed) Dismiss(reminderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, n := range f.items {
		if n.ReminderID != reminderID {
			kept = append(kept, n)
		}
	}
	f.items = kept
}
