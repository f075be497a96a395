package object

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
)

// Realize runs the class realize hook, moving the object from Unrealized to
// Realized. The synchronous form blocks until the hook returns. The
// asynchronous form moves the object to Realizing1, enqueues the hook on
// the owner's work queue, and returns immediately; completion is reported
// through the callback registered with SetCallback.
//
// A failed hook parks the object in StateError; only Destroy is legal from
// there.
func (h *Header) Realize(async bool) error {
	h.mu.Lock()
	if h.state != StateUnrealized {
		defer h.mu.Unlock()
		return fmt.Errorf("realize %s #%d in state %s: %w",
			h.class.Name, h.id, h.state, api.ErrPreconditionViolation)
	}
	if async {
		return h.enqueueLocked(StateRealizing1, h.realizeJob)
	}

	h.setStateLocked(StateRealizing2)
	h.mu.Unlock()

	err := h.runClassHook(h.class.Realize, false)

	h.mu.Lock()
	h.settleLocked(err)
	h.mu.Unlock()
	return err
}

// Resume runs the class resume hook, moving the object from Suspended back
// to Realized and re-adding every suspended interface slot. Sync and async
// forms behave as for Realize.
func (h *Header) Resume(async bool) error {
	h.mu.Lock()
	if h.state != StateSuspended {
		defer h.mu.Unlock()
		return fmt.Errorf("resume %s #%d in state %s: %w",
			h.class.Name, h.id, h.state, api.ErrPreconditionViolation)
	}
	if async {
		return h.enqueueLocked(StateResuming1, h.resumeJob)
	}

	h.setStateLocked(StateResuming2)
	h.mu.Unlock()

	err := h.runClassHook(h.class.Resume, false)

	h.mu.Lock()
	if err == nil {
		err = h.resumeSlotsLocked()
	}
	h.settleLocked(err)
	h.mu.Unlock()
	return err
}

// Suspend moves a realized object to Suspended, suspending every Added
// interface slot. Suspend is synchronous only.
func (h *Header) Suspend() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateRealized {
		return fmt.Errorf("suspend %s #%d in state %s: %w",
			h.class.Name, h.id, h.state, api.ErrPreconditionViolation)
	}
	h.setStateLocked(StateSuspending)
	for i := range h.slots {
		if h.slots[i] == SlotAdded {
			h.setSlotLocked(i, SlotSuspending)
			h.setSlotLocked(i, SlotSuspended)
		}
	}
	h.setStateLocked(StateSuspended)
	return nil
}

// AbortAsync requests cancellation of the pending asynchronous operation.
// Cancellation is best-effort: it is guaranteed to suppress the hook only
// while the operation is still queued ("1" states). Once a worker has begun
// the hook, AbortAsync fails with ErrPreconditionViolation and the hook
// runs to completion.
func (h *Header) AbortAsync() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case StateRealizing1:
		h.setStateLocked(StateRealizing1Aborted)
		return nil
	case StateResuming1:
		h.setStateLocked(StateResuming1Aborted)
		return nil
	}
	for i := range h.slots {
		switch h.slots[i] {
		case SlotAdding1:
			h.setSlotLocked(i, SlotAdding1Aborted)
			return nil
		case SlotResuming1:
			h.setSlotLocked(i, SlotResuming1Aborted)
			return nil
		}
	}
	return fmt.Errorf("no abortable operation pending on %s #%d: %w",
		h.class.Name, h.id, api.ErrPreconditionViolation)
}

// Destroy tears the object down synchronously and unconditionally. It
// cancels or waits out any pending asynchronous work, forces every
// interface slot back to Uninitialized, runs the class destroy hook, and
// releases the owner's instance slot. Destroy never fails outward and is
// idempotent.
func (h *Header) Destroy() {
	h.mu.Lock()
	if h.state == StateDestroyed {
		h.mu.Unlock()
		return
	}

	switch h.state {
	case StateRealizing1:
		h.setStateLocked(StateRealizing1Aborted)
	case StateResuming1:
		h.setStateLocked(StateResuming1Aborted)
	}
	for i := range h.slots {
		switch h.slots[i] {
		case SlotAdding1:
			h.setSlotLocked(i, SlotAdding1Aborted)
		case SlotResuming1:
			h.setSlotLocked(i, SlotResuming1Aborted)
		}
	}
	for h.pendingWorkLocked() {
		h.cond.Wait()
	}

	for i := len(h.slots) - 1; i >= 0; i-- {
		if h.slots[i] == SlotUninitialized {
			continue
		}
		h.setSlotLocked(i, SlotRemoving)
		h.runSlotDeinit(i, false)
		h.setSlotLocked(i, SlotUninitialized)
	}
	h.gottenMask = 0
	h.setStateLocked(StateDestroyed)
	h.mu.Unlock()

	if h.class.Destroy != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Logger().Error("destroy hook panic",
						zap.String("class", h.class.Name),
						zap.Uint32("id", h.id),
						zap.Any("panic", r))
				}
			}()
			h.class.Destroy(h.instance)
		}()
	}
	h.owner.Release(h)
}

// pendingWorkLocked reports whether any queued job, in-flight hook, or
// unsettled slot can still mutate the object. Callers hold h.mu.
func (h *Header) pendingWorkLocked() bool {
	if h.asyncPending || h.state.transitional() {
		return true
	}
	for i := range h.slots {
		if !h.slots[i].settled() {
			return true
		}
	}
	return false
}

// enqueueLocked moves the object into the pending state and hands the job
// to the owner's work queue. Callers hold h.mu; the lock is released on
// return. A rejected submission restores the pre-operation state.
func (h *Header) enqueueLocked(pending ObjectState, job func()) error {
	if h.asyncPending {
		defer h.mu.Unlock()
		return fmt.Errorf("async operation already pending on %s #%d: %w",
			h.class.Name, h.id, api.ErrPreconditionViolation)
	}
	prev := h.state
	h.asyncPending = true
	h.setStateLocked(pending)
	h.mu.Unlock()

	if err := h.owner.Submit(job); err != nil {
		h.mu.Lock()
		h.asyncPending = false
		h.setStateLocked(prev)
		h.mu.Unlock()
		return fmt.Errorf("enqueue %s for %s #%d: %w", pending, h.class.Name, h.id, err)
	}
	return nil
}

// realizeJob is the work-queue half of asynchronous Realize. It checks for
// the abort marker before running the hook: an aborted job transitions
// straight back to Unrealized, closing the race between cancellation and
// hook execution.
func (h *Header) realizeJob() {
	h.mu.Lock()
	switch h.state {
	case StateRealizing1:
		h.setStateLocked(StateRealizing2)
		h.mu.Unlock()

		err := h.runClassHook(h.class.Realize, true)

		h.mu.Lock()
		h.settleLocked(err)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpRealize, err)
	case StateRealizing1Aborted:
		h.setStateLocked(StateUnrealized)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpRealize, api.ErrAborted)
	default:
		st := h.state
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		Logger().Warn("stale realize job",
			zap.String("class", h.class.Name),
			zap.Uint32("id", h.id),
			zap.Stringer("state", st))
	}
}

// resumeJob is the work-queue half of asynchronous Resume.
func (h *Header) resumeJob() {
	h.mu.Lock()
	switch h.state {
	case StateResuming1:
		h.setStateLocked(StateResuming2)
		h.mu.Unlock()

		err := h.runClassHook(h.class.Resume, true)

		h.mu.Lock()
		if err == nil {
			err = h.resumeSlotsLocked()
		}
		h.settleLocked(err)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpResume, err)
	case StateResuming1Aborted:
		h.setStateLocked(StateSuspended)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpResume, api.ErrAborted)
	default:
		st := h.state
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		Logger().Warn("stale resume job",
			zap.String("class", h.class.Name),
			zap.Uint32("id", h.id),
			zap.Stringer("state", st))
	}
}

// settleLocked records the outcome of a realize or resume hook: Realized on
// success, StateError on failure. Callers hold h.mu.
func (h *Header) settleLocked(err error) {
	if err != nil {
		h.setStateLocked(StateError)
		return
	}
	h.setStateLocked(StateRealized)
}

// resumeSlotsLocked re-adds every suspended slot, running its resume hook.
// Callers hold h.mu. Hooks go through runSlotResume, so a preemptable object
// drops the lock for each hook's duration; the Resuming2 object and slot
// states guard the object meanwhile.
func (h *Header) resumeSlotsLocked() error {
	for i := range h.slots {
		if h.slots[i] != SlotSuspended {
			continue
		}
		h.setSlotLocked(i, SlotResuming2)
		if err := h.runSlotResume(i); err != nil {
			h.setSlotLocked(i, SlotSuspended)
			return fmt.Errorf("resume interface %q: %w", h.class.Slots[i].ID, err)
		}
		h.setSlotLocked(i, SlotAdded)
	}
	return nil
}

// runClassHook executes a class-level hook outside the object lock. A
// panicking hook is converted into an error so the object still settles.
func (h *Header) runClassHook(hook capability.AsyncHook, async bool) (err error) {
	if hook == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("lifecycle hook panic",
				zap.String("class", h.class.Name),
				zap.Uint32("id", h.id),
				zap.Any("panic", r))
			err = fmt.Errorf("lifecycle hook panic: %v", r)
		}
	}()
	return hook(h.instance, async)
}

// runSlotDeinit tears down one slot's holder, swallowing hook panics so
// teardown stays best-effort. Callers hold h.mu; when unlocked is true and
// the object is preemptable, the lock is dropped for the hook's duration
// (the slot's transitional state guards it meanwhile).
func (h *Header) runSlotDeinit(i int, unlocked bool) {
	hooks, ok := capability.HooksFor(h.class.Slots[i].ID)
	if !ok || hooks.Deinit == nil {
		return
	}
	if unlocked && h.preemptable {
		h.mu.Unlock()
		defer h.mu.Lock()
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("deinit hook panic",
				zap.String("class", h.class.Name),
				zap.Uint32("id", h.id),
				zap.String("interface", string(h.class.Slots[i].ID)),
				zap.Any("panic", r))
		}
	}()
	hooks.Deinit(h.instance.Slot(i))
}
