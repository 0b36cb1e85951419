package shell

import (
	"sync"
	"time"
)

// History is a LIFO stack of timestamped entries, used for the operation
// journal and the error journal. Newest entries come out first, which is
// what you want from a history: the last thing you did is the first thing
// you ask about.
type History struct {
	mu    sync.Mutex
	items []string
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Push records entry with a wall-clock timestamp prefix.
func (h *History) Push(at time.Time, entry string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, at.Format("[15:04:05]")+" "+entry)
}

// PushRaw records an already-formatted entry, used when restoring a
// snapshot.
func (h *History) PushRaw(entry string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, entry)
}

// Items returns the entries newest first.
func (h *History) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.items))
	for i, item := range h.items {
		out[len(h.items)-1-i] = item
	}
	return out
}

// Oldest returns the entries oldest first, the order snapshots store them.
func (h *History) Oldest() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Clear drops all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
