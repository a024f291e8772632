// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtqueue_test

import (
	"context"
	"testing"

	"github.com/swarm-robotics/pulse/mtqueue"
)

func BenchmarkPushPop(b *testing.B) {
	q, err := mtqueue.New[int](1024)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Push(context.Background(), i); err != nil {
			b.Fatal(err)
		}
		if _, err := q.Pop(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTryPushTryPop(b *testing.B) {
	q, err := mtqueue.New[int](1024)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.TryPush(i); err != nil {
			b.Fatal(err)
		}
		if _, err := q.TryPop(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPushPop_SPSC(b *testing.B) {
	q, err := mtqueue.New[int](1024)
	if err != nil {
		b.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; i++ {
			if _, err := q.Pop(context.Background()); err != nil {
				b.Error(err)
				return
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Push(context.Background(), i); err != nil {
			b.Fatal(err)
		}
	}
	<-done
}

func BenchmarkPeek(b *testing.B) {
	q, err := mtqueue.New[int](1024)
	if err != nil {
		b.Fatal(err)
	}
	if err := q.Push(context.Background(), 1); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := q.Peek(); !ok {
			b.Fatal("Peek() = false, want true")
		}
	}
}
