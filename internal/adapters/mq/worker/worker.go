// Package worker runs rank-range jobs and hands partial distributions to a sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/schedluck/internal/adapters/mq/queue"
	"github.com/okian/schedluck/internal/domain/record"
	"github.com/okian/schedluck/pkg/logger"
	"github.com/okian/schedluck/pkg/metrics"
)

// Runner aggregates one job. Implementations need not be goroutine-safe;
// each worker owns its runner.
type Runner interface {
	Run(ctx context.Context, j queue.Job) (record.Distribution, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, j queue.Job) (record.Distribution, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, j queue.Job) (record.Distribution, error) {
	return f(ctx, j)
}

// RunnerFactory builds a fresh Runner for each worker.
type RunnerFactory func() Runner

// Sink receives partial results. It must be goroutine-safe.
type Sink interface {
	Merge(ctx context.Context, j queue.Job, part record.Distribution) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until the queue drains, ctx ends or a job fails.
type Worker interface {
	Run(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	sink   Sink
	name   string
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, runner Runner, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  q,
		runner: runner,
		sink:   sink,
		name:   "worker",
		logger: logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run consumes jobs. It returns nil once the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-jobs:
			if !ok {
				return ctx.Err()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.processJob(ctx, j); err != nil {
				return err
			}
		}
	}
}

func (w *InMemoryWorker) processJob(ctx context.Context, j queue.Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("worker", "panic")
			err = fmt.Errorf("%w: %s: panic: %v", ErrTaskFailure, j, r)
		}
		if err != nil && !isCancellation(ctx, err) {
			metrics.RecordWorkerFailure()
			w.logger.Error(ctx, "range failed", logger.String("job", j.String()), logger.Error(err))
		}
		metrics.RecordRangeLatency(float64(time.Since(start).Milliseconds()))
	}()

	part, err := w.runner.Run(ctx, j)
	if err != nil {
		if isCancellation(ctx, err) {
			return err
		}
		metrics.RecordErrorByComponent("worker", "runner_error")
		return fmt.Errorf("%w: %s: %w", ErrTaskFailure, j, err)
	}
	if err := w.sink.Merge(ctx, j, part); err != nil {
		if isCancellation(ctx, err) {
			return err
		}
		metrics.RecordErrorByComponent("worker", "merge_error")
		return fmt.Errorf("%w: %s: merge: %w", ErrTaskFailure, j, err)
	}
	w.logger.Debug(ctx, "range aggregated",
		logger.String("job", j.String()),
		logger.Uint64("schedules", part.Total()),
	)
	return nil
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// Pool runs a fixed set of workers against one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a worker pool. Each worker gets its own runner from factory.
func NewPool(workerCount int, q Queue, factory RunnerFactory, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, factory(), sink, wopts...)
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and waits for all of them. The first failure
// cancels the others and is returned. If ctx ends first its error is returned.
func (p *Pool) Run(ctx context.Context) error {
	parent := ctx
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	for _, w := range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				once.Do(func() {
					first = err
					cancel(err)
				})
			}
		}()
	}
	wg.Wait()

	if err := parent.Err(); err != nil {
		return err
	}
	if first != nil {
		p.logger.Warn(parent, "pool stopped on failure", logger.Error(first))
	}
	return first
}
