package queue

import "testing"

func TestQueue_FIFO(t *testing.T) {
	q := New("a", "b")
	q.Enqueue("c")
	if q.Len() != 3 {
		t.Fatalf("want len 3, got %d", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue()
		if !ok || got != want {
			t.Errorf("want %s, got %s (ok=%v)", want, got, ok)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on empty queue should report !ok")
	}
}

func TestQueue_ReuseAfterDrain(t *testing.T) {
	q := New(1)
	q.Dequeue()
	q.Enqueue(2)
	if v, ok := q.Dequeue(); !ok || v != 2 {
		t.Errorf("want 2, got %d", v)
	}
}
