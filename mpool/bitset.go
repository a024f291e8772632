// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpool

// bitset is a fixed-size index set over [0, n), one bit per buffer slot,
// indexed by (buf-base)/element_size. It tracks the pool's allocated set
// directly in O(1) per operation, with no per-slot node or pointer. All
// methods assume the caller holds Pool.mu.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int)   { b[i/64] |= 1 << uint(i%64) }
func (b bitset) clear(i int) { b[i/64] &^= 1 << uint(i%64) }
func (b bitset) test(i int) bool {
	return b[i/64]&(1<<uint(i%64)) != 0
}
