// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import (
	"context"
	"time"

	"github.com/swarm-robotics/pulse/mtqueue"
)

// WaitFront blocks until rxq's queue is non-empty and returns a view of
// the front delivery without removing it. Returns ErrShutdown if the bus
// is closed while waiting.
func (b *Bus) WaitFront(rxq RXQHandle) (Delivery, error) {
	e, err := b.rxqAt(rxq)
	if err != nil {
		return Delivery{}, err
	}
	d, err := e.queue.PeekWait(context.Background())
	if err != nil {
		return Delivery{}, translateQueueErr(err)
	}
	return d.delivery(), nil
}

// TimedWaitFront is WaitFront bounded by a relative timeout, returning
// ErrTimedOut if it elapses first.
func (b *Bus) TimedWaitFront(rxq RXQHandle, rel time.Duration) (Delivery, error) {
	if rel < 0 {
		return Delivery{}, ErrInvalidArgument
	}
	e, err := b.rxqAt(rxq)
	if err != nil {
		return Delivery{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), rel)
	defer cancel()
	d, err := e.queue.PeekWait(ctx)
	if err != nil {
		return Delivery{}, translateQueueErr(err)
	}
	return d.delivery(), nil
}

// PopFront removes rxq's front descriptor and releases its buffer back to
// the originating pool: the subscriber's single release obligation per
// received descriptor. Returns ErrShutdown if the bus is closed while
// waiting on an empty queue.
func (b *Bus) PopFront(rxq RXQHandle) error {
	e, err := b.rxqAt(rxq)
	if err != nil {
		return err
	}
	d, err := e.queue.Pop(context.Background())
	if err != nil {
		return translateQueueErr(err)
	}
	return d.pool.Release(d.buf)
}

func translateQueueErr(err error) error {
	switch err {
	case mtqueue.ErrTimedOut:
		return ErrTimedOut
	case mtqueue.ErrShutdown:
		return ErrShutdown
	default:
		return err
	}
}
