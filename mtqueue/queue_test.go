// Copyright 2026 The Pulse Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mtqueue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/swarm-robotics/pulse/mtqueue"
)

func assertInvariants[T any](t *testing.T, q *mtqueue.Queue[T]) {
	t.Helper()
	n := q.Len()
	if n < 0 || n > q.Cap() {
		t.Fatalf("Len()=%d out of range [0,%d]", n, q.Cap())
	}
	if q.FreeSlots() != q.Cap()-n {
		t.Fatalf("FreeSlots()=%d, want %d", q.FreeSlots(), q.Cap()-n)
	}
	if q.IsFull() != (n == q.Cap()) {
		t.Fatalf("IsFull()=%v inconsistent with Len()=%d", q.IsFull(), n)
	}
	if q.IsEmpty() != (n == 0) {
		t.Fatalf("IsEmpty()=%v inconsistent with Len()=%d", q.IsEmpty(), n)
	}
}

func TestNew_InvalidArgument(t *testing.T) {
	if _, err := mtqueue.New[int](0); !errors.Is(err, mtqueue.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if _, err := mtqueue.New[int](-1); !errors.Is(err, mtqueue.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestPushPopFIFO(t *testing.T) {
	q, err := mtqueue.New[int](4)
	if err != nil {
		t.Fatal(err)
	}
	assertInvariants(t, q)

	for i := range 4 {
		if err := q.Push(context.Background(), i); err != nil {
			t.Fatal(err)
		}
	}
	assertInvariants(t, q)
	if !q.IsFull() {
		t.Fatal("queue not full after 4 pushes of capacity 4")
	}

	for i := range 4 {
		v, err := q.Pop(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if v != i {
			t.Fatalf("Pop()=%d, want %d (FIFO order violated)", v, i)
		}
	}
	assertInvariants(t, q)
	if !q.IsEmpty() {
		t.Fatal("queue not empty after draining all pushes")
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q, err := mtqueue.New[string](1)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan string)
	go func() {
		v, err := q.Pop(context.Background())
		if err != nil {
			t.Error(err)
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before any Push")
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Push(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	select {
	case v := <-done:
		if v != "hello" {
			t.Fatalf("Pop()=%q, want %q", v, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Push")
	}
}

func TestPushBlocksUntilPop(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Push(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		if err := q.Push(context.Background(), 2); err != nil {
			t.Error(err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Push returned while queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Pop(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push never unblocked after Pop freed a slot")
	}
}

func TestTimedPopTimesOut(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = q.TimedPop(20 * time.Millisecond)
	if !errors.Is(err, mtqueue.ErrTimedOut) {
		t.Fatalf("want ErrTimedOut, got %v", err)
	}
}

func TestTimedPop_InvalidArgument(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.TimedPop(-time.Millisecond); !errors.Is(err, mtqueue.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestCloseWakesBlockedPop(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, mtqueue.ErrShutdown) {
			t.Fatalf("want ErrShutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close never woke the blocked Pop")
	}
}

func TestCloseWakesBlockedPush(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Push(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- q.Push(context.Background(), 2)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, mtqueue.ErrShutdown) {
			t.Fatalf("want ErrShutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close never woke the blocked Push")
	}
}

func TestCallerContextCancelIndependentOfClose(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Pop(ctx); !errors.Is(err, mtqueue.ErrShutdown) {
		t.Fatalf("want ErrShutdown for a caller-cancelled context, got %v", err)
	}
	// The queue itself is still open: a Push with a fresh context succeeds
	// rather than failing with ErrShutdown.
	if err := q.Push(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
}

func TestTryPushTryPopWouldBlock(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.TryPop(); !errors.Is(err, mtqueue.ErrWouldBlock) {
		t.Fatalf("want ErrWouldBlock on empty TryPop, got %v", err)
	}
	if err := q.TryPush(42); err != nil {
		t.Fatal(err)
	}
	if err := q.TryPush(43); !errors.Is(err, mtqueue.ErrWouldBlock) {
		t.Fatalf("want ErrWouldBlock on full TryPush, got %v", err)
	}
	v, err := q.TryPop()
	if err != nil || v != 42 {
		t.Fatalf("TryPop()=(%d,%v), want (42,nil)", v, err)
	}
}

func TestPeek(t *testing.T) {
	q, err := mtqueue.New[int](2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := q.Peek(); ok {
		t.Fatal("Peek on empty queue returned ok=true")
	}
	if err := q.Push(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	v, ok := q.Peek()
	if !ok || v != 7 {
		t.Fatalf("Peek()=(%d,%v), want (7,true)", v, ok)
	}
	if q.Len() != 1 {
		t.Fatal("Peek removed the element")
	}
}

func TestPeekWaitBlocksThenReturnsFrontWithoutRemoving(t *testing.T) {
	q, err := mtqueue.New[int](2)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan int, 1)
	go func() {
		v, err := q.PeekWait(context.Background())
		if err != nil {
			t.Error(err)
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("PeekWait returned before any Push")
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Push(context.Background(), 11); err != nil {
		t.Fatal(err)
	}

	select {
	case v := <-done:
		if v != 11 {
			t.Fatalf("PeekWait()=%d, want 11", v)
		}
	case <-time.After(time.Second):
		t.Fatal("PeekWait never unblocked after Push")
	}
	if q.Len() != 1 {
		t.Fatalf("Len()=%d, want 1: PeekWait must not remove the element", q.Len())
	}
}

func TestPeekWaitWakesOnClose(t *testing.T) {
	q, err := mtqueue.New[int](1)
	if err != nil {
		t.Fatal(err)
	}
	errCh := make(chan error, 1)
	go func() {
		_, err := q.PeekWait(context.Background())
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	q.Close()
	select {
	case err := <-errCh:
		if !errors.Is(err, mtqueue.ErrShutdown) {
			t.Fatalf("want ErrShutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close never woke the blocked PeekWait")
	}
}

func TestBorrowedStorage(t *testing.T) {
	storage := make([]int, 4)
	q, err := mtqueue.New(4, mtqueue.WithBorrowedStorage(storage))
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Push(context.Background(), 99); err != nil {
		t.Fatal(err)
	}
	if storage[0] != 99 {
		t.Fatal("borrowed storage not shared with pushed element")
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	q, err := mtqueue.New[int](8)
	if err != nil {
		t.Fatal(err)
	}
	const n = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range n {
			if err := q.Push(context.Background(), i); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	sum := 0
	go func() {
		defer wg.Done()
		for range n {
			v, err := q.Pop(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			sum += v
		}
	}()
	wg.Wait()
	assertInvariants(t, q)
	if want := n * (n - 1) / 2; sum != want {
		t.Fatalf("sum=%d, want %d", sum, want)
	}
}

func TestHighConcurrencyManyProducersConsumers(t *testing.T) {
	if raceEnabled {
		t.Skip("large goroutine fan-out skipped in race mode due to stack overhead")
	}
	q, err := mtqueue.New[int](64)
	if err != nil {
		t.Fatal(err)
	}
	const producers, perProducer = 32, 200
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func(p int) {
			defer wg.Done()
			for i := range perProducer {
				if err := q.Push(context.Background(), p*perProducer+i); err != nil {
					t.Error(err)
					return
				}
			}
		}(p)
	}

	var consumed atomic.Int64
	wg.Add(producers)
	for range producers {
		go func() {
			defer wg.Done()
			for range perProducer {
				if _, err := q.Pop(context.Background()); err != nil {
					t.Error(err)
					return
				}
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()
	assertInvariants(t, q)
	if got, want := consumed.Load(), int64(producers*perProducer); got != want {
		t.Fatalf("consumed=%d, want %d", got, want)
	}
}
