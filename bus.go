// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pulse implements the PULSE in-process publish/subscribe bus: a
// many-to-many message bus built on top of package mpool (reference-counted
// buffer pools) and package mtqueue (bounded blocking queues).
//
// A Bus owns a fixed set of pools, ordered ascending by buffer size, and a
// bounded table of receive queues (RXQs). Publishers reserve a buffer from
// the smallest pool that fits their payload, and the bus fans that single
// buffer out to every subscriber of the publication's PID by multiplying
// the buffer's refcount and pushing one descriptor per subscribed RXQ —
// zero-copy, no per-subscriber allocation.
//
// Bus is safe for concurrent use.
package pulse

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/swarm-robotics/pulse/mpool"
)

// Bus is the PULSE publish/subscribe bus. See the package doc for the
// ownership and fan-out model.
type Bus struct {
	name        string
	pools       []*mpool.Pool // sorted ascending by ElementSize
	maxRXQs     int
	asyncFanout bool
	log         *zap.Logger

	mu      sync.Mutex
	rxqs    []*rxqEntry
	subs    []subscription
	nextSeq uint64

	closed bool
}

// NewBus constructs a Bus from params, instantiating one mpool.Pool per
// entry in params.PoolSpecs (sorted ascending by BufferSize regardless of
// the order given) and reserving params.MaxRXQs RXQ slots.
func NewBus(params BusParams, opts ...Option) (*Bus, error) {
	if params.MaxRXQs <= 0 || len(params.PoolSpecs) == 0 {
		return nil, ErrInvalidArgument
	}

	b := &Bus{
		name:    params.Name,
		maxRXQs: params.MaxRXQs,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rxqs == nil {
		b.rxqs = make([]*rxqEntry, 0, params.MaxRXQs)
	}

	specs := append([]PoolSpec(nil), params.PoolSpecs...)
	sort.Slice(specs, func(i, j int) bool { return specs[i].BufferSize < specs[j].BufferSize })

	b.pools = make([]*mpool.Pool, 0, len(specs))
	for _, spec := range specs {
		var poolOpts []mpool.Option
		if spec.Storage != nil {
			poolOpts = append(poolOpts, mpool.WithBorrowedStorage(spec.Storage))
		}
		p, err := mpool.New(spec.BufferSize, spec.Count, poolOpts...)
		if err != nil {
			return nil, fmt.Errorf("pulse: constructing pool(size=%d,count=%d): %w", spec.BufferSize, spec.Count, err)
		}
		b.pools = append(b.pools, p)
	}

	b.log.Info("bus constructed",
		zap.String("name", b.name),
		zap.Int("pools", len(b.pools)),
		zap.Int("max_rxqs", b.maxRXQs),
		zap.Bool("async_fanout", b.asyncFanout))
	return b, nil
}

// Close marks every RXQ as shut down, waking any WaitFront/TimedWaitFront
// callers blocked on them with ErrShutdown. Close does not release
// outstanding buffers, and PopFront on a closed bus returns ErrShutdown;
// it is the caller's responsibility to drain RXQs with PopFront before
// calling Close if buffers must be reclaimed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, e := range b.rxqs {
		e.queue.Close()
	}
	b.log.Info("bus closed", zap.String("name", b.name))
	return nil
}

// poolFor returns the smallest pool whose ElementSize is >= size, or
// ErrPayloadTooLarge if size is zero or exceeds every pool's ElementSize.
func (b *Bus) poolFor(size int) (*mpool.Pool, error) {
	if size <= 0 {
		return nil, ErrPayloadTooLarge
	}
	for _, p := range b.pools {
		if p.ElementSize() >= size {
			return p, nil
		}
	}
	return nil, ErrPayloadTooLarge
}
