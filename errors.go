// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import "errors"

// Sentinel errors returned by Bus operations. Runtime errors are returned
// bare, never wrapped, so callers can compare with == on the hot path.
// NewBus returns ErrInvalidArgument bare for bad parameters and wraps
// pool construction errors with fmt.Errorf for context; the wrapped errors
// remain errors.Is-compatible with the sentinel.
var (
	// ErrInvalidArgument is returned for a missing, zero, or out-of-range
	// construction parameter, or an unknown RXQHandle.
	ErrInvalidArgument = errors.New("pulse: invalid argument")

	// ErrOutOfMemory is returned when backing storage cannot be allocated
	// during construction.
	ErrOutOfMemory = errors.New("pulse: out of memory")

	// ErrCapacityExceeded is returned by InitRXQ once max_rxqs RXQs exist,
	// and by Subscribe once the subscription ceiling is reached.
	ErrCapacityExceeded = errors.New("pulse: capacity exceeded")

	// ErrAlreadySubscribed is returned by Subscribe for a duplicate
	// (pid, rxq) pair.
	ErrAlreadySubscribed = errors.New("pulse: already subscribed")

	// ErrNotSubscribed is returned by IsSubscribed when the (rxq, pid)
	// pair is not currently bound. Unsubscribe itself never returns it:
	// removing an absent pair is a no-op, not an error.
	ErrNotSubscribed = errors.New("pulse: not subscribed")

	// ErrPayloadTooLarge is returned by Publish/TryPublish when size is
	// zero or exceeds the largest pool's buffer size.
	ErrPayloadTooLarge = errors.New("pulse: payload too large")

	// ErrWouldBlock is returned by TryPublish when the chosen pool is
	// exhausted.
	ErrWouldBlock = errors.New("pulse: would block")

	// ErrTimedOut is returned by TimedWaitFront when the relative deadline
	// elapses before an RXQ becomes non-empty.
	ErrTimedOut = errors.New("pulse: timed out")

	// ErrPartialDelivery is returned by PublishRelease when one or more
	// target RXQs were full during synchronous fan-out; the refcount
	// absorbed by each failed queue has already been refunded.
	ErrPartialDelivery = errors.New("pulse: partial delivery")

	// ErrShutdown is returned to callers blocked in WaitFront/
	// TimedWaitFront when the bus is closed while they wait.
	ErrShutdown = errors.New("pulse: shutdown")

	// ErrNotAMember is returned when a buffer handle passed to
	// PublishRelease did not come from the pool argument given alongside
	// it.
	ErrNotAMember = errors.New("pulse: not a member")
)
