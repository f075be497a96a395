package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrShutdown is returned by Submit once the work queue is shutting down.
var ErrShutdown = errors.New("work queue shutting down")

const (
	defaultWorkers    = 4
	defaultQueueDepth = 64
)

// workQueue executes deferred lifecycle hooks: submissions land in a FIFO
// drained by a fixed pool of workers, so jobs start in submission order.
//
// mu serializes the accept path (closed check, wg.Add, Put) against the
// closed transition, so a job accepted by Submit is always covered by
// Shutdown's wg.Wait and runs before the queue is disposed.
type workQueue struct {
	jobs *queuepkg.Queue
	pool *ants.Pool
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool

	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics
}

func newWorkQueue(workers, depth int, logger *zap.Logger, tracer trace.Tracer, m *metrics) (*workQueue, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	w := &workQueue{
		jobs:    queuepkg.New(int64(depth)),
		logger:  logger,
		tracer:  tracer,
		metrics: m,
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	w.pool = pool
	for i := 0; i < workers; i++ {
		if err := pool.Submit(w.drain); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return w, nil
}

// Submit enqueues a job. It fails with ErrShutdown once Shutdown has begun.
func (w *workQueue) Submit(job func()) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrShutdown
	}
	w.wg.Add(1)
	err := w.jobs.Put(job)
	w.mu.Unlock()
	if err != nil {
		w.wg.Done()
		return ErrShutdown
	}
	w.metrics.jobsSubmitted.Inc()
	return nil
}

// Shutdown refuses further submissions, waits for every queued job to
// finish, then releases the workers. Idempotent.
func (w *workQueue) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.wg.Wait()
	w.jobs.Dispose()
	w.pool.Release()
}

func (w *workQueue) Len() int64 { return w.jobs.Len() }

func (w *workQueue) ShuttingDown() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// drain is one worker's loop: pop and run jobs until the queue is disposed.
func (w *workQueue) drain() {
	for {
		items, err := w.jobs.Get(1)
		if err != nil {
			return
		}
		for _, it := range items {
			w.run(it.(func()))
		}
	}
}

func (w *workQueue) run(job func()) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("work queue job panic", zap.Any("panic", r))
		}
		w.metrics.jobsCompleted.Inc()
		w.metrics.jobSeconds.Observe(time.Since(start).Seconds())
		w.wg.Done()
	}()
	if w.tracer != nil {
		_, span := w.tracer.Start(context.Background(), "engine.job")
		defer span.End()
	}
	job()
}
