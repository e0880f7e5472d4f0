package store

// History is a bounded undo/redo stack over snapshots. Snapshots are
// immutable, so history is pointer bookkeeping only.
type History struct {
	past    []*Snapshot
	current *Snapshot
	future  []*Snapshot
	limit   int
}

// NewHistory starts a history at the given snapshot. limit bounds the number
// of undo steps retained; limit <= 0 means unbounded.
func NewHistory(initial *Snapshot, limit int) *History {
	return &History{current: initial, limit: limit}
}

// Current returns the snapshot at the history cursor.
func (h *History) Current() *Snapshot {
	return h.current
}

// Push records a new snapshot. Pushing the current snapshot (the store's
// no-op result) is itself a no-op. Any redo tail is discarded.
func (h *History) Push(s *Snapshot) {
	if s == nil || s == h.current {
		return
	}
	h.past = append(h.past, h.current)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[1:]
	}
	h.current = s
	h.future = h.future[:0]
}

// Undo steps back one snapshot. Returns the new current snapshot and whether
// a step was taken.
func (h *History) Undo() (*Snapshot, bool) {
	if len(h.past) == 0 {
		return h.current, false
	}
	h.future = append(h.future, h.current)
	h.current = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return h.current, true
}

// Redo steps forward one snapshot undone by Undo.
func (h *History) Redo() (*Snapshot, bool) {
	if len(h.future) == 0 {
		return h.current, false
	}
	h.past = append(h.past, h.current)
	h.current = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return h.current, true
}
