// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package mpool_test

// raceEnabled is false when the race detector is not active.
const raceEnabled = false
