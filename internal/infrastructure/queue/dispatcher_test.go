package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
)

func TestDispatcher_RunsTasksInKeyOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(3, zerolog.Nop())
	d.Start(ctx)

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		ok := d.Enqueue(ports.Task{Name: "test", Key: "item-1", Run: func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}})
		if !ok {
			t.Fatalf("task %d dropped", i)
		}
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("tasks with the same key ran out of order: %v", order)
		}
	}
}

func TestDispatcher_FailuresAndPanicsDoNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	done := make(chan struct{})
	d.Enqueue(ports.Task{Name: "fails", Run: func(context.Context) error { return errors.New("boom") }})
	d.Enqueue(ports.Task{Name: "panics", Run: func(context.Context) error { panic("bad") }})
	d.Enqueue(ports.Task{Name: "ok", Run: func(context.Context) error { close(done); return nil }})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker stopped after a failing task")
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	depth := metrics.TasksQueueDepth.WithLabelValues("0")
	baseline := testutil.ToFloat64(depth)

	var wg sync.WaitGroup
	accepted := 0
	for i := 0; i < channelBuffer+5; i++ {
		wg.Add(1)
		if d.Enqueue(ports.Task{Name: "fill", Run: func(context.Context) error { wg.Done(); return nil }}) {
			accepted++
		} else {
			wg.Done()
		}
	}
	if accepted != channelBuffer {
		t.Fatalf("expected %d accepted tasks, got %d", channelBuffer, accepted)
	}
	if got := testutil.ToFloat64(depth) - baseline; got != channelBuffer {
		t.Fatalf("queue depth should count only accepted tasks, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	wg.Wait()
	if got := testutil.ToFloat64(depth); got != baseline {
		t.Fatalf("queue depth should return to %v after draining, got %v", baseline, got)
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(2, zerolog.Nop())
	d.Start(ctx)
	cancel()

	finished := make(chan struct{})
	go func() {
		d.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not stop")
	}
}
