package telemetry

// #region window
// Window is a bounded, ordered store of trajectories (oldest first).
// Ingest is the only operation that changes its size; the oldest entries
// are evicted once the bound is exceeded.
type Window struct {
	size    int
	entries []Trajectory
}

// NewWindow creates an empty window with the given bound.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size}
}

// #endregion window

// #region ingest
// Ingest appends a trajectory and evicts from the front until the
// window bound holds.
func (w *Window) Ingest(t Trajectory) {
	w.entries = append(w.entries, t)
	if excess := len(w.entries) - w.size; excess > 0 {
		w.entries = append(w.entries[:0], w.entries[excess:]...)
	}
}

// #endregion ingest

// #region accessors
// Len returns the current number of trajectories.
func (w *Window) Len() int {
	return len(w.entries)
}

// Size returns the window bound.
func (w *Window) Size() int {
	return w.size
}

// All returns a copy of the window, oldest first.
func (w *Window) All() []Trajectory {
	out := make([]Trajectory, len(w.entries))
	copy(out, w.entries)
	return out
}

// Tail returns a copy of the most recent n trajectories, oldest first.
func (w *Window) Tail(n int) []Trajectory {
	if n <= 0 {
		return nil
	}
	if n > len(w.entries) {
		n = len(w.entries)
	}
	out := make([]Trajectory, n)
	copy(out, w.entries[len(w.entries)-n:])
	return out
}

// Replace swaps the window contents, truncating to the bound from the
// front (oldest evicted). Used when restoring from a snapshot.
func (w *Window) Replace(entries []Trajectory) {
	if excess := len(entries) - w.size; excess > 0 {
		entries = entries[excess:]
	}
	w.entries = append(w.entries[:0:0], entries...)
}

// #endregion accessors
