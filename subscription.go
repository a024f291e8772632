// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import "sort"

// maxSubsPerRXQSlot bounds total subscriptions at maxRXQs*64, an
// implementation-defined ceiling derived from expected subscriptions per
// published id rather than a hard protocol limit.
const maxSubsPerRXQSlot = 64

// subscription is one (pid, rxq) binding. seq records the bus-global
// insertion order; it is not read when sorting. Subscriptions sharing a
// pid keep their insertion order because subscribeLocked uses a stable
// sort on pid alone, so a pid's fan-out range preserves subscriber order.
type subscription struct {
	pid uint32
	rxq RXQHandle
	seq uint64
}

// subsForPID returns the contiguous range of b.subs bound to pid. Callers
// must hold b.mu. The returned slice aliases b.subs and must not be
// retained past the caller's use of the lock.
func (b *Bus) subsForPID(pid uint32) []subscription {
	lo := sort.Search(len(b.subs), func(i int) bool { return b.subs[i].pid >= pid })
	hi := lo
	for hi < len(b.subs) && b.subs[hi].pid == pid {
		hi++
	}
	return b.subs[lo:hi]
}

// subscribeLocked binds rxq to receive every future publication to pid.
// Callers must hold b.mu.
func (b *Bus) subscribeLocked(rxq RXQHandle, pid uint32) error {
	if rxq < 0 || int(rxq) >= len(b.rxqs) {
		return ErrInvalidArgument
	}
	for _, s := range b.subsForPID(pid) {
		if s.rxq == rxq {
			return ErrAlreadySubscribed
		}
	}
	if len(b.subs) >= b.maxRXQs*maxSubsPerRXQSlot {
		return ErrCapacityExceeded
	}

	b.subs = append(b.subs, subscription{pid: pid, rxq: rxq, seq: b.nextSeq})
	b.nextSeq++
	sort.SliceStable(b.subs, func(i, j int) bool { return b.subs[i].pid < b.subs[j].pid })
	return nil
}

// unsubscribeLocked removes the (rxq, pid) pair if present; absence is ok.
func (b *Bus) unsubscribeLocked(rxq RXQHandle, pid uint32) error {
	for i, s := range b.subs {
		if s.pid == pid && s.rxq == rxq {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Subscribe binds rxq to receive every future publication to pid.
func (b *Bus) Subscribe(rxq RXQHandle, pid uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(rxq, pid)
}

// Unsubscribe removes the (rxq, pid) binding. A no-op (nil error) if the
// pair was never subscribed.
func (b *Bus) Unsubscribe(rxq RXQHandle, pid uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unsubscribeLocked(rxq, pid)
}

// IsSubscribed reports whether rxq is currently bound to pid, returning
// ErrNotSubscribed if not.
func (b *Bus) IsSubscribed(rxq RXQHandle, pid uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rxq < 0 || int(rxq) >= len(b.rxqs) {
		return ErrInvalidArgument
	}
	for _, s := range b.subsForPID(pid) {
		if s.rxq == rxq {
			return nil
		}
	}
	return ErrNotSubscribed
}
