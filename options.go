// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pulse

import "go.uber.org/zap"

// PoolSpec describes one buffer pool a Bus should own: count equal-sized
// buffers of BufferSize bytes each. Storage, if non-nil, is caller-supplied
// backing memory (len must equal BufferSize*Count); this is the Go
// equivalent of the pools-provided construction flag for embedded use where
// the bus must not allocate its own buffer storage.
type PoolSpec struct {
	BufferSize int
	Count      int
	Storage    []byte
}

// BusParams is the construction-time parameter record a Bus is built from.
// Pools need not be given in size order; NewBus sorts them ascending by
// BufferSize so smallest-fitting-pool selection is deterministic.
type BusParams struct {
	PoolSpecs []PoolSpec
	MaxRXQs   int
	Name      string
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithAsyncFanout selects asynchronous fan-out: the bus mutex is dropped
// between per-queue pushes during PublishRelease, letting subscribers begin
// consuming before fan-out to the remaining queues completes. The default
// is synchronous fan-out, which holds the bus mutex for the whole fan-out
// and uses a non-blocking push per queue so one full RXQ cannot stall the
// others.
func WithAsyncFanout() Option {
	return func(b *Bus) { b.asyncFanout = true }
}

// WithLogger injects a structured logger for construction, exhaustion,
// partial-delivery, and shutdown events. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithRXQStorage preallocates the bus's RXQ table to capacity entries
// (which must equal BusParams.MaxRXQs), the Go equivalent of the
// handle-provided flag: InitRXQ never grows the table by reallocation.
func WithRXQStorage(capacity int) Option {
	return func(b *Bus) { b.rxqs = make([]*rxqEntry, 0, capacity) }
}
