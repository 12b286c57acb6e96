package transcript

import "sync"

// DefaultWindowSize is the number of captions a peer keeps visible at once.
const DefaultWindowSize = 2

// Caption is one transcript line as seen by a receiving peer.
type Caption struct {
	ParticipantID string
	Text          string
}

// Window is the short rolling view of received captions. At most max entries
// are visible; older ones are evicted FIFO. The window is independent of the
// Store, which retains the full history.
type Window struct {
	mu      sync.Mutex
	max     int
	entries []Caption
}

// NewWindow creates a window holding at most max captions.
func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultWindowSize
	}
	return &Window{max: max}
}

// Push appends a caption, evicting the oldest entry when the window is full.
func (w *Window) Push(c Caption) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, c)
	if len(w.entries) > w.max {
		w.entries = w.entries[len(w.entries)-w.max:]
	}
}

// Entries returns the currently visible captions, oldest first.
func (w *Window) Entries() []Caption {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Caption, len(w.entries))
	copy(out, w.entries)
	return out
}
