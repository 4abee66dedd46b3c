// Package runlog keeps the bounded event and run-history logs. Both are
// fixed-capacity rings: appends never reallocate once full, eviction
// drops the oldest entry, and remaining order is preserved.
package runlog

// #region ring
// Ring is a fixed-capacity ring buffer. Not safe for concurrent use;
// callers serialize access.
type Ring[T any] struct {
	buf   []T
	start int
	count int
}

// NewRing creates a ring with the given capacity (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Append adds an entry, evicting the oldest when full.
func (r *Ring[T]) Append(v T) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = v
		r.count++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of stored entries.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// All returns the entries oldest first.
func (r *Ring[T]) All() []T {
	out := make([]T, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// Tail returns the newest n entries, oldest first.
func (r *Ring[T]) Tail(n int) []T {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	for i := r.count - n; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// Last returns the newest entry, or false when empty.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.buf[(r.start+r.count-1)%len(r.buf)], true
}

// Replace swaps the contents, keeping the newest entries when the input
// exceeds capacity. Used when restoring from a snapshot.
func (r *Ring[T]) Replace(entries []T) {
	r.start, r.count = 0, 0
	for i := range r.buf {
		var zero T
		r.buf[i] = zero
	}
	if excess := len(entries) - len(r.buf); excess > 0 {
		entries = entries[excess:]
	}
	for _, v := range entries {
		r.Append(v)
	}
}

// #endregion ring
