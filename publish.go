// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import (
	"context"

	"go.uber.org/zap"

	"github.com/swarm-robotics/pulse/mpool"
)

// Publish reserves a buffer from the smallest pool that fits payload,
// copies payload into it, and fans it out to every subscriber of pid. It
// blocks if the chosen pool is exhausted. Returns ErrPayloadTooLarge if
// payload is empty or larger than every pool's buffer size, and
// ErrPartialDelivery if one or more subscribed RXQs were full.
func (b *Bus) Publish(pid uint32, payload []byte) error {
	p, err := b.poolFor(len(payload))
	if err != nil {
		return err
	}
	h, err := p.Acquire(context.Background())
	if err != nil {
		return err
	}
	copy(h, payload)
	return b.PublishRelease(pid, p, h, len(payload))
}

// TryPublish is Publish's non-blocking form: it returns ErrWouldBlock
// instead of blocking when the chosen pool is exhausted.
func (b *Bus) TryPublish(pid uint32, payload []byte) error {
	p, err := b.poolFor(len(payload))
	if err != nil {
		return err
	}
	h, err := p.TryAcquire()
	if err == mpool.ErrWouldBlock {
		return ErrWouldBlock
	}
	if err != nil {
		return err
	}
	copy(h, payload)
	return b.PublishRelease(pid, p, h, len(payload))
}

// PublishRelease is the zero-copy fan-out primitive Publish/TryPublish
// build on. h must have been obtained from pl.Acquire/TryAcquire, be at
// refcount 1, and not be shared with any other goroutine. On return, h's
// refcount has been distributed one-per-subscriber (or released entirely
// if pid has no subscribers); the caller must not touch h again.
//
// With the default synchronous fan-out, PublishRelease pushes into every
// subscribed RXQ while holding the bus mutex, using a non-blocking push so
// a single full RXQ cannot stall delivery to the others; any RXQ found full
// has its one absorbed refcount refunded immediately, and the overall call
// returns ErrPartialDelivery. With WithAsyncFanout, the bus mutex is
// dropped before the per-queue pushes, which block, letting subscribers
// begin consuming before fan-out to the rest completes.
func (b *Bus) PublishRelease(pid uint32, pl *mpool.Pool, h mpool.Handle, size int) error {
	b.mu.Lock()
	subs := b.subsForPID(pid)
	k := len(subs)
	if k == 0 {
		b.mu.Unlock()
		err := pl.Release(h)
		if err == mpool.ErrNotAMember {
			return ErrNotAMember
		}
		return err
	}

	for range k - 1 {
		if err := pl.RefAdd(h); err != nil {
			b.mu.Unlock()
			if err == mpool.ErrNotAMember {
				return ErrNotAMember
			}
			return err
		}
	}

	if b.asyncFanout {
		targets := make([]*rxqEntry, k)
		for i, s := range subs {
			targets[i] = b.rxqs[s.rxq]
		}
		b.mu.Unlock()
		return b.fanoutAsync(targets, pid, pl, h, size)
	}
	defer b.mu.Unlock()
	return b.fanoutSync(subs, pid, pl, h, size)
}

func (b *Bus) fanoutSync(subs []subscription, pid uint32, pl *mpool.Pool, h mpool.Handle, size int) error {
	partial := false
	for _, s := range subs {
		e := b.rxqs[s.rxq]
		d := descriptor{buf: h, size: size, pid: pid, pool: pl}
		if err := e.queue.TryPush(d); err != nil {
			b.log.Warn("rxq full during synchronous fan-out",
				zap.Uint32("pid", pid), zap.Int("rxq", int(s.rxq)))
			if relErr := pl.Release(h); relErr != nil {
				return relErr
			}
			partial = true
			continue
		}
	}
	if partial {
		return ErrPartialDelivery
	}
	return nil
}

func (b *Bus) fanoutAsync(targets []*rxqEntry, pid uint32, pl *mpool.Pool, h mpool.Handle, size int) error {
	partial := false
	for _, e := range targets {
		d := descriptor{buf: h, size: size, pid: pid, pool: pl}
		if err := e.queue.Push(context.Background(), d); err != nil {
			b.log.Warn("rxq push failed during asynchronous fan-out",
				zap.Uint32("pid", pid), zap.Error(err))
			if relErr := pl.Release(h); relErr != nil {
				return relErr
			}
			partial = true
			continue
		}
	}
	if partial {
		return ErrPartialDelivery
	}
	return nil
}
