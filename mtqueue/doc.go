// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mtqueue implements the bounded, blocking producer/consumer queue
// the PULSE bus uses as each subscriber's receive queue (RXQ).
//
// # Wait semantics
//
// Push blocks while count == capacity; Pop blocks while count == 0. Both
// take a context.Context for per-call cancellation and deadlines, and both
// independently observe Close, which wakes every waiter — on any context —
// with ErrShutdown. TimedPop derives a relative-deadline context internally
// and is the Go equivalent of the parent spec's "timed_pop(out, rel)".
//
// # Invariants
//
//	0 <= count <= capacity
//	count == capacity - (the queue's free-slot semaphore value)
//	count == the queue's filled-slot semaphore value
//	FIFO order is preserved: Pop returns elements in Push order, per queue
package mtqueue
