package queue

import "sync/atomic"

// DefaultCapacity is the ring size used for the feed-to-writer handoff,
// large enough to absorb exchange bursts without drops.
const DefaultCapacity = 1 << 18

// SPSC is a fixed-capacity lock-free single-producer single-consumer ring.
//
// head is written only by the consumer, tail only by the producer; the
// indices grow without bound and are masked into the buffer. The atomic
// stores publish each slot, so a dequeued value observes every field the
// producer wrote.
type SPSC[T any] struct {
	_    [64]byte // keep producer and consumer cursors on separate cache lines
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
	_    [56]byte
	mask uint64
	buf  []T
}

// NewSPSC returns an empty ring with the given capacity, which must be a
// power of two.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("queue: capacity must be a power of two")
	}
	return &SPSC[T]{
		mask: uint64(capacity - 1),
		buf:  make([]T, capacity),
	}
}

// Enqueue appends v to the ring. It returns false when the ring is full;
// the caller's policy is to drop, never to block or retry.
func (q *SPSC[T]) Enqueue(v T) bool {
	t := q.tail.Load()
	if t-q.head.Load() > q.mask {
		return false
	}
	q.buf[t&q.mask] = v
	q.tail.Store(t + 1)
	return true
}

// Dequeue removes and returns the oldest element. The second return is
// false when the ring is empty.
func (q *SPSC[T]) Dequeue() (T, bool) {
	h := q.head.Load()
	if h == q.tail.Load() {
		var zero T
		return zero, false
	}
	v := q.buf[h&q.mask]
	q.head.Store(h + 1)
	return v, true
}

// Len returns the number of elements currently buffered. It is exact only
// when called from one of the two owning goroutines.
func (q *SPSC[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the fixed capacity of the ring.
func (q *SPSC[T]) Cap() int {
	return len(q.buf)
}
