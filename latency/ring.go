// Package latency tracks the start-up delays observed when launching stream
// workers, so synchronized starts can pre-compensate each successive stream.
package latency

// Ring is a fixed-capacity buffer that overwrites its oldest element once
// full.
type Ring[T any] struct {
	values []T
	next   int
	count  int
}

// NewRing returns a ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{values: make([]T, capacity)}
}

// Push appends a value, evicting the oldest one when the ring is full.
func (r *Ring[T]) Push(v T) {
	r.values[r.next] = v
	r.next = (r.next + 1) % len(r.values)
	if r.count < len(r.values) {
		r.count++
	}
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap returns the ring's capacity.
func (r *Ring[T]) Cap() int {
	return len(r.values)
}

// Values returns the stored elements from oldest to newest.
func (r *Ring[T]) Values() []T {
	out := make([]T, 0, r.count)
	start := r.next - r.count
	if start < 0 {
		start += len(r.values)
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.values[(start+i)%len(r.values)])
	}
	return out
}
