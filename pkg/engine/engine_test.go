package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
	"github.com/gosles/slcore/pkg/object"
)

const (
	iidGadget = api.InterfaceID("eng.test.gadget")
	iidBroken = api.InterfaceID("eng.test.broken")
)

type gadget struct {
	Obj    object.Header
	holder struct{ configured bool }
}

func (g *gadget) Header() *object.Header { return &g.Obj }
func (g *gadget) Slot(i int) any {
	if i == 0 {
		return &g.holder
	}
	return nil
}

var gadgetClass = &capability.Class{
	Name:     "Gadget",
	ObjectID: 0x9200,
	Slots: []capability.Slot{
		{ID: iidGadget, Relation: api.RelationImplicit},
	},
	New: func() any { return &gadget{} },
}

var brokenClass = &capability.Class{
	Name:     "Broken",
	ObjectID: 0x9201,
	Slots: []capability.Slot{
		{ID: iidBroken, Relation: api.RelationImplicit},
	},
	New: func() any { return &gadget{} },
}

func init() {
	capability.Register(iidGadget)
	capability.Register(iidBroken)
	if err := capability.RegisterHooks(iidGadget, capability.InterfaceHooks{
		Init: func(h any) error {
			h.(*struct{ configured bool }).configured = true
			return nil
		},
	}); err != nil {
		panic(err)
	}
	if err := capability.RegisterHooks(iidBroken, capability.InterfaceHooks{
		Init: func(any) error { return fmt.Errorf("broken holder") },
	}); err != nil {
		panic(err)
	}
}

func mustMask(t *testing.T, cls *capability.Class) uint32 {
	t.Helper()
	mask, err := capability.CheckInterfaces(cls, nil, nil)
	require.NoError(t, err)
	return mask
}

// gatherValue reads one sample out of a gathered registry.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			switch mf.GetType() {
			case dto.MetricType_GAUGE:
				return m.GetGauge().GetValue()
			case dto.MetricType_COUNTER:
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestConstructAndRelease(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := New(&Config{Registerer: reg})
	require.NoError(t, err)
	defer e.Shutdown()

	h, err := e.Construct(gadgetClass, mustMask(t, gadgetClass))
	require.NoError(t, err)
	assert.Equal(t, 1, e.LiveObjects())
	assert.Equal(t, float64(1), gatherValue(t, reg, "slcore_engine_objects_live", nil))
	assert.Equal(t, float64(1), gatherValue(t, reg, "slcore_engine_constructs_total",
		map[string]string{"class": "Gadget"}))

	g := h.Instance().(*gadget)
	assert.True(t, g.holder.configured, "constructor must run exposed slot inits")
	assert.Equal(t, object.StateUnrealized, h.State())

	h.Destroy()
	assert.Equal(t, 0, e.LiveObjects())
	assert.Equal(t, float64(0), gatherValue(t, reg, "slcore_engine_objects_live", nil))
}

func TestInstanceTableExhaustion(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Shutdown()

	mask := mustMask(t, gadgetClass)
	headers := make([]*object.Header, 0, MaxInstances)
	for i := 0; i < MaxInstances; i++ {
		h, err := e.Construct(gadgetClass, mask)
		require.NoError(t, err)
		headers = append(headers, h)
	}
	assert.Equal(t, MaxInstances, e.LiveObjects())

	_, err = e.Construct(gadgetClass, mask)
	assert.ErrorIs(t, err, api.ErrResourceExhausted)

	// A destroyed object frees its table slot immediately.
	headers[7].Destroy()
	h, err := e.Construct(gadgetClass, mask)
	require.NoError(t, err)
	assert.Equal(t, MaxInstances, e.LiveObjects())

	for _, old := range headers {
		if old != headers[7] {
			old.Destroy()
		}
	}
	h.Destroy()
	assert.Equal(t, 0, e.LiveObjects())
}

func TestConstructUnwindsOnSlotInitFailure(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Shutdown()

	_, err = e.Construct(brokenClass, mustMask(t, brokenClass))
	require.Error(t, err)
	assert.Equal(t, 0, e.LiveObjects())

	// The failed construction must not leak its table slot.
	h, err := e.Construct(gadgetClass, mustMask(t, gadgetClass))
	require.NoError(t, err)
	h.Destroy()
}

func TestConstructRejectsBadFactory(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Shutdown()

	_, err = e.Construct(nil, 0)
	assert.ErrorIs(t, err, api.ErrInvalidParameter)

	bad := &capability.Class{
		Name: "Bad",
		New:  func() any { return struct{}{} },
	}
	_, err = e.Construct(bad, 0)
	assert.ErrorIs(t, err, api.ErrInvalidParameter)
	assert.Equal(t, 0, e.LiveObjects())
}

func TestShutdownRefusesWork(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	e.Shutdown()

	assert.True(t, e.ShuttingDown())
	_, err = e.Construct(gadgetClass, mustMask(t, gadgetClass))
	assert.ErrorIs(t, err, api.ErrPreconditionViolation)
	assert.ErrorIs(t, e.Submit(func() {}), ErrShutdown)

	// Idempotent.
	e.Shutdown()
}

func TestWorkQueueRunsJobsInOrder(t *testing.T) {
	e, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	defer e.Shutdown()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, e.Submit(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		}))
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWorkQueueSurvivesPanickingJob(t *testing.T) {
	e, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	defer e.Shutdown()

	require.NoError(t, e.Submit(func() { panic("job gone wrong") }))
	ran := make(chan struct{})
	require.NoError(t, e.Submit(func() { close(ran) }))
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestShutdownDrainsQueuedJobs(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := New(&Config{Workers: 2, Registerer: reg})
	require.NoError(t, err)

	const jobs = 20
	var ran atomic.Int32
	for i := 0; i < jobs; i++ {
		require.NoError(t, e.Submit(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}
	e.Shutdown()

	assert.Equal(t, int32(jobs), ran.Load())
	assert.Equal(t, float64(jobs), gatherValue(t, reg, "slcore_engine_work_jobs_submitted_total", nil))
	assert.Equal(t, float64(jobs), gatherValue(t, reg, "slcore_engine_work_jobs_completed_total", nil))
}

func TestSubmitShutdownRaceRunsAcceptedJobs(t *testing.T) {
	// Every Submit that returns nil must see its job executed, even when
	// Shutdown lands between the accept check and the enqueue.
	for round := 0; round < 50; round++ {
		e, err := New(&Config{Workers: 2})
		require.NoError(t, err)

		var accepted, ran atomic.Int32
		var submitters sync.WaitGroup
		for p := 0; p < 4; p++ {
			submitters.Add(1)
			go func() {
				defer submitters.Done()
				for j := 0; j < 25; j++ {
					if e.Submit(func() { ran.Add(1) }) == nil {
						accepted.Add(1)
					}
				}
			}()
		}
		e.Shutdown()
		submitters.Wait()

		// Shutdown drained everything accepted before it; anything after
		// was rejected. No accepted job may be dropped.
		assert.Equal(t, accepted.Load(), ran.Load(), "round %d dropped accepted jobs", round)
		assert.ErrorIs(t, e.Submit(func() {}), ErrShutdown)
	}
}

func TestDumpListsLiveObjects(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Shutdown()

	h, err := e.Construct(gadgetClass, mustMask(t, gadgetClass))
	require.NoError(t, err)
	defer h.Destroy()

	dump := e.Dump()
	assert.Contains(t, dump, "engine objects:1/32")
	assert.Contains(t, dump, "Gadget")
}
