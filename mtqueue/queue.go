// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mtqueue implements a bounded, blocking, multi-producer
// multi-consumer FIFO queue.
//
// Push blocks while the queue is full; Pop blocks while it is empty. Both
// accept a caller context for cancellation/deadlines, and both additionally
// observe the queue's own Close, which wakes every blocked waiter with
// ErrShutdown regardless of what context it was called with.
//
// Queue is safe for concurrent use.
package mtqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"golang.org/x/sync/semaphore"
)

// Option configures a Queue at construction time.
type Option[T any] func(*Queue[T])

// WithBorrowedStorage supplies the queue's backing ring buffer instead of
// letting the queue allocate it. len(storage) must equal capacity.
func WithBorrowedStorage[T any](storage []T) Option[T] {
	return func(q *Queue[T]) { q.elements = storage }
}

// Queue is a fixed-capacity FIFO ring buffer with blocking Push/Pop. See the
// package doc for the empty/full wait semantics.
type Queue[T any] struct {
	capacity int
	elements []T

	mu    sync.Mutex
	head  int
	tail  int
	count int

	emptySlots *semaphore.Weighted // permits == free slots
	filled     *semaphore.Weighted // permits == available elements

	shutdown context.Context
	cancel   context.CancelFunc

	// countN is a non-authoritative snapshot of count, read without mu by
	// Len/FreeSlots/IsEmpty/IsFull.
	countN atomix.Int32
}

// New creates a Queue holding up to capacity elements of type T. capacity
// must be positive.
func New[T any](capacity int, opts ...Option[T]) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidArgument
	}

	q := &Queue[T]{capacity: capacity}
	for _, opt := range opts {
		opt(q)
	}
	if q.elements == nil {
		q.elements = make([]T, capacity)
	} else if len(q.elements) != capacity {
		return nil, ErrInvalidArgument
	}

	q.emptySlots = semaphore.NewWeighted(int64(capacity))
	q.filled = semaphore.NewWeighted(int64(capacity))
	if err := q.filled.Acquire(context.Background(), int64(capacity)); err != nil {
		// Can't happen: an unshared, just-created semaphore never blocks
		// on an Acquire up to its own total weight.
		return nil, err
	}
	q.shutdown, q.cancel = context.WithCancel(context.Background())

	return q, nil
}

// Push blocks until a free slot is available, ctx is done, or the queue is
// closed.
func (q *Queue[T]) Push(ctx context.Context, e T) error {
	if err := q.acquire(ctx, q.emptySlots); err != nil {
		return err
	}
	q.mu.Lock()
	q.elements[q.tail] = e
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.countN.AddAcqRel(1)
	q.mu.Unlock()
	q.filled.Release(1)
	return nil
}

// TryPush pushes without blocking, returning ErrWouldBlock if the queue is
// full.
func (q *Queue[T]) TryPush(e T) error {
	if !q.emptySlots.TryAcquire(1) {
		return ErrWouldBlock
	}
	q.mu.Lock()
	q.elements[q.tail] = e
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.countN.AddAcqRel(1)
	q.mu.Unlock()
	q.filled.Release(1)
	return nil
}

// Pop blocks until an element is available, ctx is done, or the queue is
// closed.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	if err := q.acquire(ctx, q.filled); err != nil {
		return zero, err
	}
	return q.popLocked(), nil
}

// TryPop pops without blocking, returning ErrWouldBlock if the queue is
// empty.
func (q *Queue[T]) TryPop() (T, error) {
	var zero T
	if !q.filled.TryAcquire(1) {
		return zero, ErrWouldBlock
	}
	return q.popLocked(), nil
}

// TimedPop blocks until an element is available, the relative timeout
// elapses (ErrTimedOut), or the queue is closed (ErrShutdown). rel must not
// be negative.
func (q *Queue[T]) TimedPop(rel time.Duration) (T, error) {
	var zero T
	if rel < 0 {
		return zero, ErrInvalidArgument
	}
	ctx, cancel := context.WithTimeout(context.Background(), rel)
	defer cancel()
	return q.Pop(ctx)
}

func (q *Queue[T]) popLocked() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.elements[q.head]
	var zero T
	q.elements[q.head] = zero // drop the reference so it can be collected
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.countN.AddAcqRel(-1)
	q.emptySlots.Release(1)
	return e
}

// Peek returns the element at the front of the queue without removing it,
// and false if the queue is empty. Advisory only under concurrent Pop:
// the front may have changed by the time the caller acts on the result.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.elements[q.head], true
}

// PeekWait blocks until the queue is non-empty, ctx is done, or the queue
// is closed, then returns the front element without removing it. Like
// Peek, the result is advisory under concurrent Pop: this method briefly
// takes and gives back a filled-slot permit purely to wait for
// availability, so a concurrent Pop can still win the race to the front
// element between the wait and the read, in which case PeekWait retries.
func (q *Queue[T]) PeekWait(ctx context.Context) (T, error) {
	var zero T
	for {
		if err := q.acquire(ctx, q.filled); err != nil {
			return zero, err
		}
		q.filled.Release(1)
		if v, ok := q.Peek(); ok {
			return v, nil
		}
	}
}

// Close wakes every Push/Pop/TimedPop blocked on this queue with
// ErrShutdown and causes every call made afterward to fail the same way.
// Close does not drain or discard queued elements; TryPop/Peek still work
// after Close.
func (q *Queue[T]) Close() { q.cancel() }

// Cap returns the queue's fixed capacity.
func (q *Queue[T]) Cap() int { return q.capacity }

// Len returns a snapshot count of queued elements. Like all Queue size
// queries, the value may be stale by the time the caller acts on it.
func (q *Queue[T]) Len() int { return int(q.countN.LoadAcquire()) }

// FreeSlots returns a snapshot count of free slots.
func (q *Queue[T]) FreeSlots() int { return q.capacity - q.Len() }

// IsFull reports whether the queue is at capacity.
func (q *Queue[T]) IsFull() bool { return q.Len() == q.capacity }

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool { return q.Len() == 0 }

// acquire waits on sem under both ctx and the queue's shutdown context,
// without spawning a per-call goroutine: context.AfterFunc arranges for
// ctx's semaphore wait to be cancelled the instant Close fires.
func (q *Queue[T]) acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if q.shutdown.Err() != nil {
		return ErrShutdown
	}
	merged, mcancel := context.WithCancel(ctx)
	defer mcancel()
	stop := context.AfterFunc(q.shutdown, mcancel)
	defer stop()

	err := sem.Acquire(merged, 1)
	if err == nil {
		return nil
	}
	if q.shutdown.Err() != nil {
		return ErrShutdown
	}
	return translateWaitErr(err)
}

func translateWaitErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimedOut
	case errors.Is(err, context.Canceled):
		return ErrShutdown
	default:
		return err
	}
}
