// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtqueue

import "errors"

// Sentinel errors returned by Queue operations. Runtime errors are returned
// bare, never wrapped, so callers can compare with == on the hot path.
var (
	// ErrInvalidArgument is returned when a construction parameter is
	// missing, zero, or out of range, or when TimedPop is given a
	// negative timeout.
	ErrInvalidArgument = errors.New("mtqueue: invalid argument")

	// ErrWouldBlock is returned by the non-blocking variants when a Push
	// would have to wait for a free slot or a Pop would have to wait for
	// an element.
	ErrWouldBlock = errors.New("mtqueue: would block")

	// ErrTimedOut is returned by TimedPop when the relative deadline
	// elapses, and by Push/Pop/PeekWait when ctx's deadline elapses, before
	// the operation can complete.
	ErrTimedOut = errors.New("mtqueue: timed out")

	// ErrShutdown is returned to callers blocked in Push/Pop when the
	// queue is closed while they wait, and to any call made after Close.
	ErrShutdown = errors.New("mtqueue: shutdown")
)
