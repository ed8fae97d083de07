// internal/nav/history.go
//
// Session history.
//
// History mirrors the browser's session history: Push records a new entry
// and discards anything forward of the cursor, Back and Forward move the
// cursor and notify the pop listener with the entry's path.  It never
// reloads anything itself; the Navigator's listener re-runs classification
// and resolution against the in-memory catalog.

package nav

// History is a linear stack of paths with a cursor.
type History struct {
	entries []string
	cursor  int
	onPop   func(path string)
}

// NewHistory starts a history whose only entry is initial.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Listen installs the pop listener.  Only one listener is kept.
func (h *History) Listen(fn func(path string)) { h.onPop = fn }

// Push records path as the newest entry.  Pushing the current path again is
// a no-op.
func (h *History) Push(path string) {
	if h.entries[h.cursor] == path {
		return
	}
	h.entries = append(h.entries[:h.cursor+1], path)
	h.cursor++
}

// Replace overwrites the current entry.
func (h *History) Replace(path string) { h.entries[h.cursor] = path }

// Current returns the path under the cursor.
func (h *History) Current() string { return h.entries[h.cursor] }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// CanBack reports whether Back would move.
func (h *History) CanBack() bool { return h.cursor > 0 }

// CanForward reports whether Forward would move.
func (h *History) CanForward() bool { return h.cursor < len(h.entries)-1 }

// Back moves one entry back and fires the pop listener.
func (h *History) Back() bool { return h.Go(-1) }

// Forward moves one entry forward and fires the pop listener.
func (h *History) Forward() bool { return h.Go(1) }

// Go moves the cursor by delta.  Out-of-range moves do nothing and return
// false.
func (h *History) Go(delta int) bool {
	next := h.cursor + delta
	if delta == 0 || next < 0 || next >= len(h.entries) {
		return false
	}
	h.cursor = next
	if h.onPop != nil {
		h.onPop(h.entries[next])
	}
	return true
}
