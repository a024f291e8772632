// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpool implements the reference-counted, fixed-capacity buffer
// pool the PULSE bus (package pulse, one level up) uses to reserve and
// reclaim publication buffers without per-publish allocation.
//
// # Buffer state machine
//
// A buffer moves through exactly these states, matching the parent spec's
// Free/Allocated(ref=k) state machine:
//
//	Free --Acquire--> Allocated(ref=1)
//	                     |
//	                     +-RefAdd----> Allocated(ref=k+1)
//	                     +-RefRemove-> Allocated(ref=k-1), k>=1
//	                     +-Release---> Allocated(ref=k-1) if k>1
//	                                -> Free                if k=1
//
// Reclamation happens exclusively through Release reaching refcount zero;
// RefRemove never reclaims on its own, which is what lets a publisher hand
// a buffer to k recipients (Acquire, then RefAdd k-1 times) and have each
// recipient's single Release collectively drive the refcount back to zero.
//
// # Invariants
//
// At every point outside an in-flight Acquire/Release:
//
//	|free| + |allocated| == capacity
//	|free| == the pool's capacity semaphore value
//	refcount(b) >= 0, and refcount(b) > 0 iff b is in the allocated set
package mpool
