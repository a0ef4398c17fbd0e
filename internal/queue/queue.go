// Package queue is a small FIFO used to stage parser tokens.
package queue

type Queue[T any] struct {
	items []T
	head  int
}

func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{}
	for _, it := range items {
		q.Enqueue(it)
	}
	return q
}

func (q *Queue[T]) Enqueue(v T) { q.items = append(q.items, v) }

// Dequeue removes and returns the front element. ok is false on an empty queue.
func (q *Queue[T]) Dequeue() (v T, ok bool) {
	if q.IsEmpty() {
		return v, false
	}
	v = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items, q.head = q.items[:0], 0
	}
	return v, true
}

func (q *Queue[T]) IsEmpty() bool { return q.Len() == 0 }
func (q *Queue[T]) Len() int       { return len(q.items) - q.head }
