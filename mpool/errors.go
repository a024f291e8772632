// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpool

import "errors"

// Sentinel errors returned by Pool operations. Runtime errors (everything
// but construction failures) are returned bare, never wrapped, so callers
// can compare with == on the hot path.
var (
	// ErrInvalidArgument is returned when a construction parameter is
	// missing, zero, or out of range.
	ErrInvalidArgument = errors.New("mpool: invalid argument")

	// ErrOutOfMemory is returned when backing storage cannot be allocated.
	ErrOutOfMemory = errors.New("mpool: out of memory")

	// ErrWouldBlock is returned by TryAcquire when the pool is exhausted.
	ErrWouldBlock = errors.New("mpool: would block")

	// ErrNotAMember is returned when a handle was not obtained from this
	// pool, or refers to a buffer that is not currently allocated.
	ErrNotAMember = errors.New("mpool: not a member")

	// ErrShutdown is returned by Acquire when its context is cancelled
	// before a buffer became available. Pool has no Close of its own.
	ErrShutdown = errors.New("mpool: shutdown")

	// ErrTimedOut is returned by a context-bounded Acquire whose deadline
	// elapsed before a buffer became available.
	ErrTimedOut = errors.New("mpool: timed out")
)
