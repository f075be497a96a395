package object

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
)

// slotFor resolves an interface id against the object's class.
func (h *Header) slotFor(id api.InterfaceID) (api.Relation, int, error) {
	rel, i, ok := h.class.Lookup(id)
	if !ok {
		return 0, 0, fmt.Errorf("class %s does not know interface %q: %w",
			h.class.Name, id, api.ErrInvalidParameter)
	}
	return rel, i, nil
}

// checkDynamic validates that id names a slot that may be toggled at all.
func (h *Header) checkDynamic(id api.InterfaceID) (int, error) {
	rel, i, err := h.slotFor(id)
	if err != nil {
		return 0, err
	}
	switch rel {
	case api.RelationDynamic:
		return i, nil
	case api.RelationUnavailable:
		return 0, fmt.Errorf("interface %q unavailable on class %s: %w",
			id, h.class.Name, api.ErrFeatureUnsupported)
	default:
		return 0, fmt.Errorf("interface %q has %s relation, only dynamic interfaces toggle: %w",
			id, rel, api.ErrPreconditionViolation)
	}
}

// AddInterface initializes a dynamic-relation slot on a realized object.
// The synchronous form blocks through the init hook; the asynchronous form
// moves the slot to Adding1, enqueues the hook, and returns. A preemptable
// object runs the hook outside its lock, so already-added sibling
// interfaces stay usable meanwhile.
func (h *Header) AddInterface(id api.InterfaceID, async bool) error {
	i, err := h.checkDynamic(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.state != StateRealized {
		defer h.mu.Unlock()
		return fmt.Errorf("add interface %q on %s #%d in state %s: %w",
			id, h.class.Name, h.id, h.state, api.ErrPreconditionViolation)
	}
	if h.slots[i] != SlotUninitialized {
		defer h.mu.Unlock()
		return fmt.Errorf("interface %q in state %s cannot be added: %w",
			id, h.slots[i], api.ErrPreconditionViolation)
	}

	if async {
		if h.asyncPending {
			defer h.mu.Unlock()
			return fmt.Errorf("async operation already pending on %s #%d: %w",
				h.class.Name, h.id, api.ErrPreconditionViolation)
		}
		h.asyncPending = true
		h.setSlotLocked(i, SlotAdding1)
		h.mu.Unlock()
		if err := h.owner.Submit(func() { h.addJob(i) }); err != nil {
			h.mu.Lock()
			h.asyncPending = false
			h.setSlotLocked(i, SlotUninitialized)
			h.mu.Unlock()
			return fmt.Errorf("enqueue add of %q: %w", id, err)
		}
		return nil
	}

	h.setSlotLocked(i, SlotAdding2)
	if err := h.runSlotInit(i); err != nil {
		h.setSlotLocked(i, SlotUninitialized)
		h.mu.Unlock()
		return fmt.Errorf("init interface %q: %w", id, err)
	}
	h.setSlotLocked(i, SlotAdded)
	h.mu.Unlock()
	return nil
}

// RemoveInterface deinitializes an added dynamic-relation slot and returns
// it to Uninitialized. Remove is synchronous only; the deinit hook runs in
// the unlocked Removing phase when the object is preemptable.
func (h *Header) RemoveInterface(id api.InterfaceID) error {
	i, err := h.checkDynamic(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.slots[i] != SlotAdded {
		return fmt.Errorf("interface %q in state %s cannot be removed: %w",
			id, h.slots[i], api.ErrPreconditionViolation)
	}
	h.setSlotLocked(i, SlotRemoving)
	h.runSlotDeinit(i, true)
	h.gottenMask &^= uint32(1) << i
	h.setSlotLocked(i, SlotUninitialized)
	return nil
}

// SuspendInterface moves an added slot to Suspended.
func (h *Header) SuspendInterface(id api.InterfaceID) error {
	_, i, err := h.slotFor(id)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.slots[i] != SlotAdded {
		return fmt.Errorf("interface %q in state %s cannot be suspended: %w",
			id, h.slots[i], api.ErrPreconditionViolation)
	}
	h.setSlotLocked(i, SlotSuspending)
	h.setSlotLocked(i, SlotSuspended)
	return nil
}

// ResumeInterface moves a suspended slot back to Added, running its resume
// hook. Sync and async forms behave as for AddInterface.
func (h *Header) ResumeInterface(id api.InterfaceID, async bool) error {
	_, i, err := h.slotFor(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.slots[i] != SlotSuspended {
		defer h.mu.Unlock()
		return fmt.Errorf("interface %q in state %s cannot be resumed: %w",
			id, h.slots[i], api.ErrPreconditionViolation)
	}

	if async {
		if h.asyncPending {
			defer h.mu.Unlock()
			return fmt.Errorf("async operation already pending on %s #%d: %w",
				h.class.Name, h.id, api.ErrPreconditionViolation)
		}
		h.asyncPending = true
		h.setSlotLocked(i, SlotResuming1)
		h.mu.Unlock()
		if err := h.owner.Submit(func() { h.resumeSlotJob(i) }); err != nil {
			h.mu.Lock()
			h.asyncPending = false
			h.setSlotLocked(i, SlotSuspended)
			h.mu.Unlock()
			return fmt.Errorf("enqueue resume of %q: %w", id, err)
		}
		return nil
	}

	h.setSlotLocked(i, SlotResuming2)
	if err := h.runSlotResume(i); err != nil {
		h.setSlotLocked(i, SlotSuspended)
		h.mu.Unlock()
		return fmt.Errorf("resume interface %q: %w", id, err)
	}
	h.setSlotLocked(i, SlotAdded)
	h.mu.Unlock()
	return nil
}

// GetInterface returns the holder for an exposed or added slot and records
// it in the gotten mask.
func (h *Header) GetInterface(id api.InterfaceID) (any, error) {
	rel, i, err := h.slotFor(id)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.slots[i] {
	case SlotExposed, SlotAdded:
		h.gottenMask |= uint32(1) << i
		return h.instance.Slot(i), nil
	}
	if rel == api.RelationUnavailable {
		return nil, fmt.Errorf("interface %q unavailable on class %s: %w",
			id, h.class.Name, api.ErrFeatureUnsupported)
	}
	return nil, fmt.Errorf("interface %q in state %s is not exposed: %w",
		id, h.slots[i], api.ErrFeatureUnsupported)
}

// SlotState reports the current state of the slot holding id.
func (h *Header) SlotState(id api.InterfaceID) (InterfaceState, error) {
	_, i, err := h.slotFor(id)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.slots[i], nil
}

// WaitInterfaceSettled blocks until the slot holding id leaves every
// transitional state and returns the state it settled in. Synchronous
// callers use this to observe an in-flight Adding1 reaching Added.
func (h *Header) WaitInterfaceSettled(id api.InterfaceID) (InterfaceState, error) {
	_, i, err := h.slotFor(id)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for !h.slots[i].settled() {
		h.cond.Wait()
	}
	return h.slots[i], nil
}

// addJob is the work-queue half of asynchronous AddInterface. An abort
// marker observed here returns the slot to Uninitialized without running
// the init hook.
func (h *Header) addJob(i int) {
	id := h.class.Slots[i].ID
	h.mu.Lock()
	switch h.slots[i] {
	case SlotAdding1:
		h.setSlotLocked(i, SlotAdding2)
		err := h.runSlotInit(i)
		if err != nil {
			h.setSlotLocked(i, SlotUninitialized)
			err = fmt.Errorf("init interface %q: %w", id, err)
		} else {
			h.setSlotLocked(i, SlotAdded)
		}
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		h.notify(OpAddInterface, err)
	case SlotAdding1Aborted:
		h.setSlotLocked(i, SlotUninitialized)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpAddInterface, api.ErrAborted)
	default:
		st := h.slots[i]
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		Logger().Warn("stale add-interface job",
			zap.String("class", h.class.Name),
			zap.Uint32("id", h.id),
			zap.String("interface", string(id)),
			zap.Stringer("state", st))
	}
}

// resumeSlotJob is the work-queue half of asynchronous ResumeInterface.
func (h *Header) resumeSlotJob(i int) {
	id := h.class.Slots[i].ID
	h.mu.Lock()
	switch h.slots[i] {
	case SlotResuming1:
		h.setSlotLocked(i, SlotResuming2)
		err := h.runSlotResume(i)
		if err != nil {
			h.setSlotLocked(i, SlotSuspended)
			err = fmt.Errorf("resume interface %q: %w", id, err)
		} else {
			h.setSlotLocked(i, SlotAdded)
		}
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		h.notify(OpResumeInterface, err)
	case SlotResuming1Aborted:
		h.setSlotLocked(i, SlotSuspended)
		h.asyncPending = false
		h.mu.Unlock()
		h.notify(OpResumeInterface, api.ErrAborted)
	default:
		st := h.slots[i]
		h.asyncPending = false
		h.cond.Broadcast()
		h.mu.Unlock()
		Logger().Warn("stale resume-interface job",
			zap.String("class", h.class.Name),
			zap.Uint32("id", h.id),
			zap.String("interface", string(id)),
			zap.Stringer("state", st))
	}
}

// runSlotInit runs a slot's init hook. Callers hold h.mu; on a preemptable
// object the lock is dropped for the hook's duration, the transitional slot
// state guarding the slot meanwhile. A panicking hook becomes an error.
func (h *Header) runSlotInit(i int) (err error) {
	hooks, ok := capability.HooksFor(h.class.Slots[i].ID)
	if !ok || hooks.Init == nil {
		return nil
	}
	if h.preemptable {
		h.mu.Unlock()
		defer h.mu.Lock()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init hook panic: %v", r)
		}
	}()
	return hooks.Init(h.instance.Slot(i))
}

// runSlotResume runs a slot's resume hook with the same locking rules as
// runSlotInit.
func (h *Header) runSlotResume(i int) (err error) {
	hooks, ok := capability.HooksFor(h.class.Slots[i].ID)
	if !ok || hooks.Resume == nil {
		return nil
	}
	if h.preemptable {
		h.mu.Unlock()
		defer h.mu.Lock()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resume hook panic: %v", r)
		}
	}()
	return hooks.Resume(h.instance.Slot(i))
}
