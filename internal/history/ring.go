package history

import "strings"

// DefaultMaxSize is the history bound used when none is configured.
const DefaultMaxSize = 100

// Ring is the ordered, deduplicated, size-bounded submission history.
// Methods are not safe for concurrent use; the console is single-user and
// session operations are strictly sequential.
type Ring struct {
	entries []string
	cursor  int
	maxSize int
}

// NewRing creates an empty ring bounded at maxSize entries. Non-positive
// maxSize falls back to DefaultMaxSize.
func NewRing(maxSize int) *Ring {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Ring{maxSize: maxSize}
}

// Push records entry at the tail, removing any existing occurrence first
// so resubmitting moves an entry to most-recent. Blank submissions are not
// recorded. Push does not enforce the size bound; see EnforceBound.
func (r *Ring) Push(entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}
	for i, e := range r.entries {
		if e == entry {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.entries = append(r.entries, entry)
}

// EnforceBound truncates the ring to its first maxSize entries. Keeping
// the prefix drops the NEWEST overflow entries; this mirrors the reference
// behavior and is intentionally not oldest-first eviction.
func (r *Ring) EnforceBound() {
	if len(r.entries) > r.maxSize {
		r.entries = r.entries[:r.maxSize]
	}
	if r.cursor >= len(r.entries) {
		r.cursor = 0
	}
}

// Navigate moves the cursor by direction (-1 previous, +1 next) with
// circular wraparound and returns the entry at the new position. The
// second result is false when the ring is empty.
func (r *Ring) Navigate(direction int) (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	sum := r.cursor + direction
	switch {
	case sum >= 0 && sum <= len(r.entries)-1:
		r.cursor = sum
	case direction > 0:
		r.cursor = 0
	default:
		r.cursor = len(r.entries) - 1
	}
	return r.entries[r.cursor], true
}

// Cursor returns the current navigation position.
func (r *Ring) Cursor() int { return r.cursor }

// ResetCursor returns the cursor to the session-start position.
func (r *Ring) ResetCursor() { r.cursor = 0 }

// Len reports the number of entries.
func (r *Ring) Len() int { return len(r.entries) }

// MaxSize reports the configured bound.
func (r *Ring) MaxSize() int { return r.maxSize }

// Entries returns a copy of the entries, oldest first.
func (r *Ring) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Clear removes every entry and resets the cursor. It does not touch the
// backing file; Cleanup persists the cleared state.
func (r *Ring) Clear() {
	r.entries = nil
	r.cursor = 0
}
