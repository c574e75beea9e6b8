package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/schedule"
)

func job(team string, start, count uint64) Job {
	return Job{Team: model.TeamID(team), Range: schedule.Range{Start: start, Count: count}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("A", 0, 10)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Team != "A" || got.Range.Start != 0 || got.Range.Count != 10 {
		t.Errorf("unexpected job %v", got)
	}
	if got.String() != "A[0,10)" {
		t.Errorf("unexpected job string %q", got.String())
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("A", 0, 1)) || !q.Enqueue(ctx, job("A", 1, 1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job("A", 2, 1)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_EnqueueWait(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, job("A", 0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(cctx, job("A", 1, 1)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded on a full queue, got %v", err)
	}

	jobs := q.Dequeue(ctx)
	<-jobs
	if err := q.EnqueueWait(ctx, job("A", 1, 1)); err != nil {
		t.Errorf("expected room after dequeue, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()
	const numJobs = 500

	go func() {
		for i := range uint64(numJobs) {
			if err := q.EnqueueWait(ctx, job("A", i, 1)); err != nil {
				t.Errorf("enqueue %d: %v", i, err)
				return
			}
		}
		_ = q.Close()
	}()

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range q.Dequeue(ctx) {
				mu.Lock()
				seen[j.Range.Start] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != numJobs {
		t.Errorf("expected %d distinct jobs, got %d", numJobs, len(seen))
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("A", 0, 1)) || !q.Enqueue(ctx, job("A", 1, 1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, job("A", 2, 1)) {
		t.Error("expected enqueue to fail after closing")
	}
	if err := q.EnqueueWait(ctx, job("A", 2, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Pending jobs drain before the channel closes.
	drained := 0
	timeout := time.After(time.Second)
	jobs := q.Dequeue(ctx)
	for {
		select {
		case _, ok := <-jobs:
			if !ok {
				if drained != 2 {
					t.Errorf("expected 2 drained jobs, got %d", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestInMemoryQueue_DequeueStopsOnCancel(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	jobs := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-jobs:
		if ok {
			t.Error("expected no job after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("expected dequeue channel to close after cancel")
	}
}
