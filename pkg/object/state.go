package object

// ObjectState is the whole-object lifecycle state. The "1" states mark an
// asynchronous operation pending on the work queue; the "2" states mark a
// hook in flight (synchronous, or picked up by a worker); the "1 aborted"
// states mark a cancellation observed before the worker ran the hook.
type ObjectState uint8

const (
	StateUnrealized ObjectState = iota + 1
	StateRealized
	StateSuspended
	StateRealizing1
	StateRealizing2
	StateResuming1
	StateResuming2
	StateSuspending
	StateRealizing1Aborted
	StateResuming1Aborted
	StateDestroyed
	// StateError is terminal short of Destroy: a realize or resume hook
	// failed and the object carries the failure until it is destroyed.
	StateError
)

var objectStateNames = map[ObjectState]string{
	StateUnrealized:        "unrealized",
	StateRealized:          "realized",
	StateSuspended:         "suspended",
	StateRealizing1:        "realizing-1",
	StateRealizing2:        "realizing-2",
	StateResuming1:         "resuming-1",
	StateResuming2:         "resuming-2",
	StateSuspending:        "suspending",
	StateRealizing1Aborted: "realizing-1-aborted",
	StateResuming1Aborted:  "resuming-1-aborted",
	StateDestroyed:         "destroyed",
	StateError:             "error",
}

func (s ObjectState) String() string {
	if n, ok := objectStateNames[s]; ok {
		return n
	}
	return "invalid"
}

// transitional reports whether s is a state another thread will move the
// object out of without further caller action: a queued or in-flight
// lifecycle operation, or an abort awaiting worker pickup.
func (s ObjectState) transitional() bool {
	switch s {
	case StateRealizing1, StateRealizing2, StateResuming1, StateResuming2,
		StateSuspending, StateRealizing1Aborted, StateResuming1Aborted:
		return true
	}
	return false
}

// InterfaceState is the per-slot lifecycle state, tracked independently for
// every interface slot of an object.
type InterfaceState uint8

const (
	// SlotUninitialized: not requested at creation, storage left zeroed.
	SlotUninitialized InterfaceState = iota + 1
	// SlotExposed: requested at creation and initialized by the constructor.
	SlotExposed
	// SlotAdding1: part 1 of asynchronous AddInterface, pending.
	SlotAdding1
	// SlotAdding2: synchronous AddInterface, or part 2 of asynchronous.
	SlotAdding2
	// SlotAdded: AddInterface has completed.
	SlotAdded
	// SlotRemoving: unlocked phase of RemoveInterface.
	SlotRemoving
	// SlotSuspending: suspend in progress.
	SlotSuspending
	// SlotSuspended: suspend has completed.
	SlotSuspended
	// SlotResuming1: part 1 of asynchronous ResumeInterface, pending.
	SlotResuming1
	// SlotResuming2: synchronous ResumeInterface, or part 2 of asynchronous.
	SlotResuming2
	// SlotAdding1Aborted: asynchronous AddInterface cancelled while pending.
	SlotAdding1Aborted
	// SlotResuming1Aborted: asynchronous ResumeInterface cancelled while pending.
	SlotResuming1Aborted
)

var slotStateNames = map[InterfaceState]string{
	SlotUninitialized:    "uninitialized",
	SlotExposed:          "exposed",
	SlotAdding1:          "adding-1",
	SlotAdding2:          "adding-2",
	SlotAdded:            "added",
	SlotRemoving:         "removing",
	SlotSuspending:       "suspending",
	SlotSuspended:        "suspended",
	SlotResuming1:        "resuming-1",
	SlotResuming2:        "resuming-2",
	SlotAdding1Aborted:   "adding-1-aborted",
	SlotResuming1Aborted: "resuming-1-aborted",
}

func (s InterfaceState) String() string {
	if n, ok := slotStateNames[s]; ok {
		return n
	}
	return "invalid"
}

// settled reports whether s is stable, i.e. no worker or unlocked hook phase
// will move the slot further without a new request.
func (s InterfaceState) settled() bool {
	switch s {
	case SlotUninitialized, SlotExposed, SlotAdded, SlotSuspended:
		return true
	}
	return false
}
