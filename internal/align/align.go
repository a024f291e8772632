// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package align provides cache-line-aligned memory allocation helpers used
// by mpool to lay out a pool's backing storage as one contiguous block.
package align

import "unsafe"

// Mem returns a byte slice of the given size whose starting address is
// aligned to alignTo bytes. The returned slice shares memory with a larger
// allocation; its length and capacity are both size.
func Mem(size int, alignTo uintptr) []byte {
	p := make([]byte, uintptr(size)+alignTo-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+alignTo-1)/alignTo)*alignTo - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}
