// Package queue provides the unbounded command channel between producer
// goroutines and the render goroutine.
package queue

import "sync/atomic"

// Queue is a lock-free, unbounded FIFO. Any number of goroutines may Send;
// a single consumer calls TryReceive. It must be initialized with Init
// (or created with New) before use.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
	len  atomic.Uint64
}

type node[T any] struct {
	next atomic.Pointer[node[T]]
	v    T
}

func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.Init()
	return q
}

// Init installs the sentinel node. Nodes are never recycled, so the
// garbage collector rules out ABA on head and tail.
func (q *Queue[T]) Init() {
	sentinel := &node[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
}

// Send appends v. It never blocks.
func (q *Queue[T]) Send(v T) {
	n := &node[T]{v: v}
	// Count before publishing so a racing TryReceive cannot take the
	// length below zero.
	q.len.Add(1)
	for {
		last := q.tail.Load()
		next := last.next.Load()
		if q.tail.Load() != last {
			continue
		}
		if next != nil {
			q.tail.CompareAndSwap(last, next)
			continue
		}
		if last.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(last, n)
			return
		}
	}
}

// TryReceive removes and returns the oldest value. ok is false when the
// queue is empty.
func (q *Queue[T]) TryReceive() (v T, ok bool) {
	for {
		first := q.head.Load()
		last := q.tail.Load()
		next := first.next.Load()
		if first != q.head.Load() {
			continue
		}
		if first == last {
			if next == nil {
				return v, false
			}
			q.tail.CompareAndSwap(last, next)
			continue
		}
		v = next.v
		if q.head.CompareAndSwap(first, next) {
			q.len.Add(^uint64(0))
			var zero T
			next.v = zero
			return v, true
		}
	}
}

// Drain receives queued values and passes them to fn in order until the
// queue is empty or limit values have been received. A limit <= 0 means no
// limit. It returns the number of values received.
func (q *Queue[T]) Drain(limit int, fn func(T)) int {
	n := 0
	for limit <= 0 || n < limit {
		v, ok := q.TryReceive()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
	return n
}

// Len is the number of queued values. It is exact only when no Send or
// TryReceive is in flight; while a Send is in flight it may count that
// value early.
func (q *Queue[T]) Len() uint64 {
	return q.len.Load()
}
