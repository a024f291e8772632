// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// # Fan-out and the refcount invariant
//
// publish_release is the fan-out primitive: it brings a refcount-1 buffer
// to refcount k (one per subscriber of the PID), pushes one descriptor per
// subscribed RXQ, and hands off one outstanding reference per descriptor
// pushed. At any moment after a PublishRelease call returns and before the
// first recipient's PopFront:
//
//	refcount(buf) == descriptors still queued + recipients mid-PopFront
//
// A synchronous fan-out that finds a subscribed RXQ full refunds that one
// reference immediately (pl.Release) rather than leaving it stranded, and
// the call returns ErrPartialDelivery once every queue has been tried.
//
// # Lock order
//
// bus mutex -> RXQ's internal mutex -> pool mutex, matching the order
// PublishRelease's call chain naturally takes: it holds the bus mutex
// while pushing into each RXQ (which briefly takes the RXQ's own mutex
// inside mtqueue.Queue.TryPush/Push), and touches a pool's mutex only
// between those pushes (mpool.Pool.RefAdd before them, mpool.Pool.Release
// for a refund after a failed push), never while holding an RXQ's mutex.
package pulse
