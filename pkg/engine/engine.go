// Package engine owns everything an object outlives a single call through:
// the bounded instance table, the object constructor, and the work queue
// that executes deferred lifecycle hooks. Each engine is its own universe;
// nothing here is process-global.
package engine

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
	"github.com/gosles/slcore/pkg/object"
)

// MaxInstances bounds the live objects one engine can hold; a table slot is
// reclaimed only after the object's Destroy completes.
const MaxInstances = 32

// Config carries the knobs an engine is created with. The zero value (or a
// nil pointer) selects the defaults.
type Config struct {
	// Workers is the work-queue pool size.
	Workers int
	// QueueDepth is the expected depth of the deferred-job FIFO.
	QueueDepth int
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Meter, when set, counts submitted jobs through OpenTelemetry.
	Meter metric.Meter
	// Tracer, when set, wraps each deferred job in a span.
	Tracer trace.Tracer
	// Registerer, when set, receives the engine's prometheus collectors.
	Registerer prometheus.Registerer
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:    defaultWorkers,
		QueueDepth: defaultQueueDepth,
	}
}

// Engine holds the instance table and the async machinery. It implements
// object.Owner.
type Engine struct {
	mu           sync.Mutex
	instances    [MaxInstances]*object.Header
	instanceMask uint32
	count        int
	nextID       uint32
	shutdown     bool

	wq       *workQueue
	logger   *zap.Logger
	metrics  *metrics
	otelJobs metric.Int64Counter
}

// New creates an engine with its own work queue.
func New(conf *Config) (*Engine, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := newMetrics(conf.Registerer)
	wq, err := newWorkQueue(conf.Workers, conf.QueueDepth, logger, conf.Tracer, m)
	if err != nil {
		return nil, fmt.Errorf("create work queue: %w", err)
	}
	e := &Engine{
		wq:      wq,
		logger:  logger,
		metrics: m,
	}
	if conf.Meter != nil {
		c, err := conf.Meter.Int64Counter("slcore.engine.jobs")
		if err != nil {
			logger.Warn("create otel counter", zap.Error(err))
		} else {
			e.otelJobs = c
		}
	}
	return e, nil
}

// Construct allocates and initializes an instance of cls with the slots in
// exposedMask active, registering it in the engine's table. The mask comes
// from capability.CheckInterfaces. Construction is all-or-nothing: a failed
// slot init unwinds the allocation and frees the table slot.
func (e *Engine) Construct(cls *capability.Class, exposedMask uint32) (*object.Header, error) {
	if cls == nil || cls.New == nil {
		return nil, fmt.Errorf("construct: class without factory: %w", api.ErrInvalidParameter)
	}
	if len(cls.Slots) > capability.MaxSlots {
		return nil, fmt.Errorf("class %s declares %d slots, limit %d: %w",
			cls.Name, len(cls.Slots), capability.MaxSlots, api.ErrInvalidParameter)
	}

	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil, fmt.Errorf("construct %s: engine shut down: %w", cls.Name, api.ErrPreconditionViolation)
	}
	if e.count >= MaxInstances {
		e.mu.Unlock()
		return nil, fmt.Errorf("construct %s: engine already holds %d instances: %w",
			cls.Name, MaxInstances, api.ErrResourceExhausted)
	}
	slot := bits.TrailingZeros32(^e.instanceMask)
	e.instanceMask |= uint32(1) << slot
	e.count++
	e.nextID++
	id := e.nextID
	e.mu.Unlock()

	unwind := func() {
		e.mu.Lock()
		e.instanceMask &^= uint32(1) << slot
		e.count--
		e.mu.Unlock()
	}

	raw := cls.New()
	inst, ok := raw.(object.Instance)
	if !ok || inst == nil {
		unwind()
		return nil, fmt.Errorf("class %s factory returned %T: %w", cls.Name, raw, api.ErrInvalidParameter)
	}
	h := inst.Header()
	object.Init(h, e, cls, inst, id, exposedMask)

	var inited []int
	for i := range cls.Slots {
		if exposedMask&(uint32(1)<<i) == 0 {
			continue
		}
		hooks, ok := capability.HooksFor(cls.Slots[i].ID)
		if ok && hooks.Init != nil {
			if err := hooks.Init(inst.Slot(i)); err != nil {
				for _, j := range inited {
					if hj, ok := capability.HooksFor(cls.Slots[j].ID); ok && hj.Deinit != nil {
						hj.Deinit(inst.Slot(j))
					}
				}
				unwind()
				return nil, fmt.Errorf("construct %s: init interface %q: %w", cls.Name, cls.Slots[i].ID, err)
			}
		}
		inited = append(inited, i)
	}

	e.mu.Lock()
	e.instances[slot] = h
	e.mu.Unlock()

	e.metrics.objectsLive.Inc()
	e.metrics.constructs.WithLabelValues(cls.Name).Inc()
	e.logger.Debug("constructed object",
		zap.String("class", cls.Name),
		zap.Uint32("id", id),
		zap.Uint32("exposed", exposedMask))
	return h, nil
}

// Submit enqueues a deferred lifecycle job on the engine's work queue.
func (e *Engine) Submit(job func()) error {
	if e.otelJobs != nil {
		e.otelJobs.Add(context.Background(), 1)
	}
	return e.wq.Submit(job)
}

// Release reclaims h's instance table slot. Called by the object runtime
// once Destroy has completed; the slot becomes available to Construct
// immediately.
func (e *Engine) Release(h *object.Header) {
	e.mu.Lock()
	for i := range e.instances {
		if e.instances[i] == h {
			e.instances[i] = nil
			e.instanceMask &^= uint32(1) << i
			e.count--
			e.mu.Unlock()
			e.metrics.objectsLive.Dec()
			e.logger.Debug("released object",
				zap.String("class", h.Class().Name),
				zap.Uint32("id", h.ID()))
			return
		}
	}
	e.mu.Unlock()
	e.logger.Warn("release of unknown object", zap.Uint32("id", h.ID()))
}

// Shutdown drains the work queue and refuses further constructions and
// submissions. Destroy on live objects remains legal afterwards.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return
	}
	e.shutdown = true
	e.mu.Unlock()
	e.wq.Shutdown()
	e.logger.Info("engine shut down")
}

// LiveObjects reports the number of instances currently in the table.
func (e *Engine) LiveObjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// QueueLen reports the number of jobs waiting on the work queue.
func (e *Engine) QueueLen() int64 { return e.wq.Len() }

// ShuttingDown reports whether Shutdown has begun.
func (e *Engine) ShuttingDown() bool { return e.wq.ShuttingDown() }

// Instances returns a snapshot of the live instance table.
func (e *Engine) Instances() []*object.Header {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*object.Header, 0, e.count)
	for _, h := range e.instances {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
