// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpool implements a reference-counted, fixed-capacity buffer pool.
//
// A Pool owns one contiguous backing array of N equal-sized buffers. Acquire
// blocks (or times out, or fails with ErrWouldBlock in non-blocking form)
// while the pool is exhausted; Release returns a buffer to the free set once
// its refcount reaches zero. RefAdd/RefRemove let a buffer be shared by
// several holders without moving it out of the allocated set, which is how
// a PubSub fan-out multiplies a single buffer's ownership across subscribers
// before each subscriber performs its own Release.
//
// Pool is safe for concurrent use.
package mpool

import (
	"context"
	"errors"
	"sync"
	"unsafe"

	"code.hybscloud.com/atomix"
	"golang.org/x/sync/semaphore"

	"github.com/swarm-robotics/pulse/internal/align"
	"github.com/swarm-robotics/pulse/internal/cacheline"
)

// Handle is a zero-copy view into one buffer owned by a Pool. It is a weak
// reference: holding a Handle does not by itself keep the buffer's refcount
// above zero. Handles must not be retained past their owning Pool's
// lifetime and must not be resliced, appended to, or passed to a different
// Pool's operations.
type Handle = []byte

// Allocator supplies the contiguous backing storage for a Pool's buffers.
// The two implementations below (owned, borrowed) satisfy the
// construction-time choice between component-allocated and caller-supplied
// memory with no branching on the hot path: both just hand back a []byte of
// the requested size.
type Allocator interface {
	allocate(size int) ([]byte, error)
}

type ownedAllocator struct{}

func (ownedAllocator) allocate(size int) ([]byte, error) {
	return align.Mem(size, uintptr(cacheline.CacheLineSize)), nil
}

// borrowedAllocator hands back caller-supplied storage; used by
// WithBorrowedStorage for the "pools-provided" embedded-use variant.
type borrowedAllocator struct{ storage []byte }

func (b borrowedAllocator) allocate(size int) ([]byte, error) {
	if len(b.storage) != size {
		return nil, ErrInvalidArgument
	}
	return b.storage, nil
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithBorrowedStorage supplies the pool's backing array instead of letting
// the pool allocate it. len(storage) must equal elementSize*capacity.
func WithBorrowedStorage(storage []byte) Option {
	return func(p *Pool) { p.alloc = borrowedAllocator{storage: storage} }
}

// WithoutRefCounting disables multi-holder refcounting: Release always
// reclaims a buffer to the free set regardless of RefAdd calls. RefAdd and
// RefRemove become no-ops that still validate membership.
func WithoutRefCounting() Option {
	return func(p *Pool) { p.refCounting = false }
}

// Pool is a fixed-capacity, fixed-element-size, reference-counted buffer
// allocator. See the package doc for the ownership model.
type Pool struct {
	elementSize int
	capacity    int
	storage     []byte
	alloc       Allocator
	refCounting bool

	sem *semaphore.Weighted

	mu        sync.Mutex
	allocated bitset  // allocated[idx] set <=> buffer idx is checked out
	ref       []int32 // refcount per index, valid only while allocated
	freeList  []int32 // stack of free indices; top = freeList[len-1]

	// allocN is a non-authoritative snapshot of len(allocated), maintained
	// alongside freeList so Len()/IsFull()/IsEmpty() can be read without
	// taking mu. Like every size query in this package, the value may be
	// stale by the time the caller acts on it.
	allocN atomix.Int32
}

// New creates a Pool of capacity equal-sized buffers, each elementSize
// bytes. capacity and elementSize must both be positive.
func New(elementSize, capacity int, opts ...Option) (*Pool, error) {
	if elementSize <= 0 || capacity <= 0 {
		return nil, ErrInvalidArgument
	}

	p := &Pool{
		elementSize: elementSize,
		capacity:    capacity,
		alloc:       ownedAllocator{},
		refCounting: true,
	}
	for _, opt := range opts {
		opt(p)
	}

	storage, err := p.alloc.allocate(elementSize * capacity)
	if err != nil {
		return nil, err
	}
	p.storage = storage

	p.sem = semaphore.NewWeighted(int64(capacity))
	p.allocated = newBitset(capacity)
	p.ref = make([]int32, capacity)
	p.freeList = make([]int32, capacity)
	for i := range p.freeList {
		// Pushed in descending order so index 0 is acquired first, matching
		// the intuitive "lowest free index first" behavior of a fresh pool.
		p.freeList[i] = int32(capacity - 1 - i)
	}

	return p, nil
}

// Acquire blocks until a buffer is available or ctx is done. On success the
// returned Handle has refcount 1. ctx.Err() == context.DeadlineExceeded maps
// to ErrTimedOut; context.Canceled maps to ErrShutdown.
func (p *Pool) Acquire(ctx context.Context) (Handle, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, translateWaitErr(err)
	}
	return p.acquireLocked(), nil
}

// TryAcquire acquires a buffer without blocking, returning ErrWouldBlock if
// the pool is exhausted.
func (p *Pool) TryAcquire() (Handle, error) {
	if !p.sem.TryAcquire(1) {
		return nil, ErrWouldBlock
	}
	return p.acquireLocked(), nil
}

func (p *Pool) acquireLocked() Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.freeList) - 1
	idx := p.freeList[n]
	p.freeList = p.freeList[:n]
	p.allocated.set(int(idx))
	p.ref[idx] = 1
	p.allocN.AddAcqRel(1)

	off := int(idx) * p.elementSize
	return p.storage[off : off+p.elementSize : off+p.elementSize]
}

// Release decrements buf's refcount and, if it reaches zero (or refcounting
// is disabled), returns the buffer to the free set and wakes one blocked
// Acquire.
func (p *Pool) Release(buf Handle) error {
	idx, err := p.indexOf(buf)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if !p.allocated.test(idx) {
		p.mu.Unlock()
		return ErrNotAMember
	}
	if p.ref[idx] > 0 {
		p.ref[idx]--
	}
	reclaim := !p.refCounting || p.ref[idx] == 0
	if reclaim {
		p.allocated.clear(idx)
		p.freeList = append(p.freeList, int32(idx))
		p.allocN.AddAcqRel(-1)
	}
	p.mu.Unlock()

	if reclaim {
		p.sem.Release(1)
	}
	return nil
}

// RefAdd increments buf's refcount without moving it out of the allocated
// set. Used by a publisher to hand a buffer to k recipients before fan-out:
// call RefAdd k-1 times after Acquire, then let each recipient Release once.
func (p *Pool) RefAdd(buf Handle) error {
	idx, err := p.indexOf(buf)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.allocated.test(idx) {
		return ErrNotAMember
	}
	if p.refCounting {
		p.ref[idx]++
	}
	return nil
}

// RefRemove decrements buf's refcount without reclaiming the buffer even if
// it reaches zero; reclamation only ever happens via Release.
func (p *Pool) RefRemove(buf Handle) error {
	idx, err := p.indexOf(buf)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.allocated.test(idx) {
		return ErrNotAMember
	}
	if p.refCounting && p.ref[idx] > 0 {
		p.ref[idx]--
	}
	return nil
}

// RefQuery returns buf's current refcount, or ErrNotAMember if buf is not
// currently allocated from this pool.
func (p *Pool) RefQuery(buf Handle) (int32, error) {
	idx, err := p.indexOf(buf)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.allocated.test(idx) {
		return 0, ErrNotAMember
	}
	return p.ref[idx], nil
}

// ElementSize returns the fixed size of each buffer in the pool.
func (p *Pool) ElementSize() int { return p.elementSize }

// Cap returns the pool's fixed capacity.
func (p *Pool) Cap() int { return p.capacity }

// Len returns a snapshot count of currently allocated (checked-out) buffers.
// Like all Pool size queries, the value may be stale by the time the caller
// acts on it.
func (p *Pool) Len() int {
	return int(p.allocN.LoadAcquire())
}

// IsFull reports whether every buffer is currently allocated.
func (p *Pool) IsFull() bool { return p.Len() == p.capacity }

// IsEmpty reports whether every buffer is currently free.
func (p *Pool) IsEmpty() bool { return p.Len() == 0 }

// indexOf recovers buf's slot index by pointer arithmetic against the
// pool's storage base. It does not take the lock; callers lock around the
// set mutation that follows.
func (p *Pool) indexOf(buf Handle) (int, error) {
	if len(buf) != p.elementSize {
		return 0, ErrNotAMember
	}
	bufAddr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	baseAddr := uintptr(unsafe.Pointer(unsafe.SliceData(p.storage)))
	if bufAddr < baseAddr {
		return 0, ErrNotAMember
	}
	off := bufAddr - baseAddr
	if off%uintptr(p.elementSize) != 0 {
		return 0, ErrNotAMember
	}
	idx := int(off / uintptr(p.elementSize))
	if idx >= p.capacity {
		return 0, ErrNotAMember
	}
	return idx, nil
}

func translateWaitErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimedOut
	case errors.Is(err, context.Canceled):
		return ErrShutdown
	default:
		return err
	}
}
