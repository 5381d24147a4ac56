package concurrency

import (
	"sync/atomic"
)

// Queue is a lock-free FIFO. Any number of goroutines may Pop concurrently;
// Push is safe from a single producer.
type Queue[T any] struct {
	head  atomic.Pointer[node[T]]
	tail  atomic.Pointer[node[T]]
	size  atomic.Int64
	dummy node[T]
}

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.head.Store(&q.dummy)
	q.tail.Store(&q.dummy)
	return q
}

func (q *Queue[T]) Push(value T) {
	n := &node[T]{value: value}
	for {
		tail := q.tail.Load()
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			q.size.Add(1)
			return
		}
		// Help a lagging producer advance the tail.
		q.tail.CompareAndSwap(tail, tail.next.Load())
	}
}

func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	for {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			return zero, false
		}
		if q.head.CompareAndSwap(head, next) {
			q.size.Add(-1)
			return next.value, true
		}
	}
}

func (q *Queue[T]) Len() int {
	return int(q.size.Load())
}
