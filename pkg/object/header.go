// Package object implements the generic object runtime: a class-described
// header carried as the first field of every instance, whole-object and
// per-interface lifecycle state machines, and the synchronous and
// asynchronous operations that drive them.
//
// All state transitions on one object are totally ordered by the object's
// lock. Engine-level locks (instance table membership) are always acquired
// before an object's lock, never the reverse.
package object

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gosles/slcore/pkg/capability"
)

// Instance is the contract every concrete class instance satisfies. The
// header must be the instance's first field so that the instance and its
// header share identity; Go embedding stands in for the C layout trick.
type Instance interface {
	// Header returns the embedded object header.
	Header() *Header
	// Slot addresses the per-interface holder at the given class slot index.
	Slot(index int) any
}

// Owner is the engine-side contract a header needs from whoever registered
// it: a work queue for deferred hooks and a release path for Destroy.
type Owner interface {
	// Submit enqueues a deferred lifecycle job. It fails once the owner is
	// shutting down.
	Submit(job func()) error
	// Release reclaims the instance table slot after Destroy completes.
	Release(h *Header)
}

// Op identifies which operation an asynchronous completion reports.
type Op uint8

const (
	OpRealize Op = iota + 1
	OpResume
	OpAddInterface
	OpResumeInterface
)

func (o Op) String() string {
	switch o {
	case OpRealize:
		return "realize"
	case OpResume:
		return "resume"
	case OpAddInterface:
		return "add-interface"
	case OpResumeInterface:
		return "resume-interface"
	}
	return "unknown"
}

// Completion is invoked on a work-queue thread when an asynchronous
// operation finishes. err is nil on success, ErrAborted when the operation
// was cancelled before its hook ran, or the hook's own failure.
type Completion func(h *Header, op Op, err error)

// Header is the generic per-object state: every concrete instance embeds
// one as its first field. It is created by the engine's constructor,
// mutated only under its lock, and torn down by Destroy.
type Header struct {
	owner    Owner
	class    *capability.Class
	id       uint32
	instance Instance

	mu   sync.Mutex
	cond *sync.Cond

	state ObjectState
	slots []InterfaceState

	gottenMask        uint32
	lossOfControlMask uint32
	priority          int32
	preemptable       bool

	// asyncPending enforces the one-async-operation-per-object budget
	// across object-level and slot-level operations.
	asyncPending bool

	callback Completion
	context  any
}

// Init initializes a header in place. It is called exactly once by the
// constructor before the object is published; exposedMask marks the slots
// the constructor will initialize.
func Init(h *Header, owner Owner, class *capability.Class, inst Instance, id uint32, exposedMask uint32) {
	h.owner = owner
	h.class = class
	h.id = id
	h.instance = inst
	h.cond = sync.NewCond(&h.mu)
	h.state = StateUnrealized
	h.slots = make([]InterfaceState, len(class.Slots))
	for i := range h.slots {
		if exposedMask&(uint32(1)<<i) != 0 {
			h.slots[i] = SlotExposed
		} else {
			h.slots[i] = SlotUninitialized
		}
	}
}

// Class returns the immutable class descriptor.
func (h *Header) Class() *capability.Class { return h.class }

// ID returns the engine-assigned monotonic instance id.
func (h *Header) ID() uint32 { return h.id }

// Instance returns the concrete instance this header belongs to.
func (h *Header) Instance() Instance { return h.instance }

// State returns the current whole-object state.
func (h *Header) State() ObjectState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// WaitSettled blocks until the object leaves every transitional state and
// returns the state it settled in.
func (h *Header) WaitSettled() ObjectState {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.state.transitional() {
		h.cond.Wait()
	}
	return h.state
}

// SetCallback registers the completion callback and caller context reported
// by asynchronous operations.
func (h *Header) SetCallback(cb Completion, ctx any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = cb
	h.context = ctx
}

// Context returns the caller context registered with SetCallback.
func (h *Header) Context() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.context
}

// SetPriority records the object's scheduling priority and preemptable flag.
// A preemptable object runs slow interface hooks outside its lock, allowing
// concurrent use of already-added sibling interfaces.
func (h *Header) SetPriority(priority int32, preemptable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.priority = priority
	h.preemptable = preemptable
}

// Priority returns the priority and preemptable flag.
func (h *Header) Priority() (int32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.priority, h.preemptable
}

// SetLossOfControl marks the given slots for loss-of-control notification.
func (h *Header) SetLossOfControl(mask uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lossOfControlMask = mask
}

// GottenMask reports which slots have been handed out via GetInterface.
func (h *Header) GottenMask() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gottenMask
}

// setStateLocked records a whole-object transition and wakes waiters.
// Callers hold h.mu.
func (h *Header) setStateLocked(s ObjectState) {
	prev := h.state
	h.state = s
	h.cond.Broadcast()
	Logger().Debug("object state",
		zap.String("class", h.class.Name),
		zap.Uint32("id", h.id),
		zap.Stringer("from", prev),
		zap.Stringer("to", s))
}

// setSlotLocked records a per-slot transition and wakes waiters.
// Callers hold h.mu.
func (h *Header) setSlotLocked(i int, s InterfaceState) {
	prev := h.slots[i]
	h.slots[i] = s
	h.cond.Broadcast()
	Logger().Debug("interface state",
		zap.String("class", h.class.Name),
		zap.Uint32("id", h.id),
		zap.String("interface", string(h.class.Slots[i].ID)),
		zap.Stringer("from", prev),
		zap.Stringer("to", s))
}

// completion snapshots the registered callback; call without holding h.mu
// when invoking it.
func (h *Header) completion() Completion {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.callback
}

// notify reports an asynchronous outcome to the registered callback.
func (h *Header) notify(op Op, err error) {
	if cb := h.completion(); cb != nil {
		cb(h, op, err)
	}
}
