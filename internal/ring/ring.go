// Package ring provides a fixed-capacity FIFO container.
package ring

// Ring is a fixed-capacity circular buffer. Pushing onto a full ring
// evicts the oldest item. It is not safe for concurrent use; callers
// guard it with their own lock.
type Ring[T any] struct {
	buffer []T
	head   int // index of the oldest item
	size   int
}

// New creates a ring holding at most capacity items. A capacity below 1
// is raised to 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buffer: make([]T, capacity)}
}

// Push appends item. When the ring is full the oldest item is evicted
// and returned with ok set to true.
func (r *Ring[T]) Push(item T) (evicted T, ok bool) {
	capacity := len(r.buffer)
	if r.size < capacity {
		r.buffer[(r.head+r.size)%capacity] = item
		r.size++
		return evicted, false
	}

	evicted = r.buffer[r.head]
	r.buffer[r.head] = item
	r.head = (r.head + 1) % capacity
	return evicted, true
}

// Items returns a copy of the contents, oldest first.
func (r *Ring[T]) Items() []T {
	items := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		items[i] = r.buffer[(r.head+i)%len(r.buffer)]
	}
	return items
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.buffer) }

// Reset empties the ring, keeping its capacity.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.buffer {
		r.buffer[i] = zero // help GC
	}
	r.head = 0
	r.size = 0
}
