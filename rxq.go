// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import (
	"go.uber.org/zap"

	"github.com/swarm-robotics/pulse/mtqueue"
)

// RXQHandle identifies one receive queue owned by a Bus. It is an index
// into the bus's RXQ table and is valid for the lifetime of the Bus; RXQs,
// once created, are never destroyed individually.
type RXQHandle int

// rxqEntry is the bus's bookkeeping for one RXQ.
type rxqEntry struct {
	queue *mtqueue.Queue[descriptor]
}

// InitRXQ allocates a new RXQ of the given capacity and returns its handle.
// Fails with ErrCapacityExceeded once MaxRXQs RXQs already exist.
func (b *Bus) InitRXQ(capacity int) (RXQHandle, error) {
	if capacity <= 0 {
		return 0, ErrInvalidArgument
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rxqs) >= b.maxRXQs {
		return 0, ErrCapacityExceeded
	}

	q, err := mtqueue.New[descriptor](capacity)
	if err != nil {
		return 0, err
	}
	b.rxqs = append(b.rxqs, &rxqEntry{queue: q})
	handle := RXQHandle(len(b.rxqs) - 1)

	b.log.Debug("rxq initialized", zap.Int("handle", int(handle)), zap.Int("capacity", capacity))
	return handle, nil
}

func (b *Bus) rxqAt(h RXQHandle) (*rxqEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h < 0 || int(h) >= len(b.rxqs) {
		return nil, ErrInvalidArgument
	}
	return b.rxqs[h], nil
}
