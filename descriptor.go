// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import "github.com/swarm-robotics/pulse/mpool"

// descriptor is the fixed-size record fan-out pushes into each subscribed
// RXQ. It is a weak reference to a pool buffer: holding one does not by
// itself keep the buffer's refcount above zero, and a descriptor never
// outlives the single PopFront that consumes it.
type descriptor struct {
	buf  mpool.Handle // the full handle returned by pool.Acquire, len == pool.ElementSize()
	size int          // bytes actually written by the publisher, size <= len(buf)
	pid  uint32
	pool *mpool.Pool
}

// Delivery is what a subscriber observes at the front of its RXQ: the
// published bytes and the PID they were published under. Payload aliases
// the pool buffer directly (zero-copy); it is only valid until the
// corresponding PopFront call releases the buffer back to its pool.
type Delivery struct {
	Payload []byte
	PID     uint32
}

func (d descriptor) delivery() Delivery {
	return Delivery{Payload: d.buf[:d.size], PID: d.pid}
}
