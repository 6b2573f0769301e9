package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	taskTimeout    = 30 * time.Second
)

// Dispatcher runs background tasks on a fixed set of workers. Tasks sharing a
// key land on the same worker, so they run in submission order.
type Dispatcher struct {
	workers []chan ports.Task
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Task, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands the task to the worker owning its key without blocking. It
// reports false and drops the task when that worker's buffer is full.
func (d *Dispatcher) Enqueue(task ports.Task) bool {
	idx := d.shardIndex(task.Key)
	depth := metrics.TasksQueueDepth.WithLabelValues(strconv.Itoa(idx))
	// Count before the send so a fast worker never drives the gauge negative.
	depth.Inc()
	select {
	case d.workers[idx] <- task:
		return true
	default:
		depth.Dec()
		metrics.TasksTotal.WithLabelValues(task.Name, "dropped").Inc()
		return false
	}
}

// shardIndex maps a task key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Task) {
	defer d.wg.Done()
	depth := metrics.TasksQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-ch:
			depth.Dec()
			d.run(ctx, id, task)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, task ports.Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TasksTotal.WithLabelValues(task.Name, "panic").Inc()
			d.log.Error().Interface("panic", r).Str("task", task.Name).Int("worker_id", id).Msg("background task panicked")
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	if err := task.Run(taskCtx); err != nil {
		metrics.TasksTotal.WithLabelValues(task.Name, "failed").Inc()
		d.log.Error().Err(err).
			Str("task", task.Name).
			Str("key", task.Key).
			Int("worker_id", id).
			Msg("background task failed")
		return
	}
	metrics.TasksTotal.WithLabelValues(task.Name, "ok").Inc()
}
