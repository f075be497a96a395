// Package capability holds the static metadata the object runtime is driven
// by: a process-wide registry mapping interface identifiers to small integer
// indices, optional per-interface lifecycle hooks, and per-class descriptor
// tables consumed at construction time.
package capability

import (
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/gosles/slcore/api"
)

// InterfaceHooks are the per-interface lifecycle routines invoked by the
// runtime when a slot is initialized, resumed, or torn down. All fields are
// optional; a missing hook is a no-op. The holder argument is the per-slot
// storage returned by Instance.Slot.
type InterfaceHooks struct {
	Init   func(holder any) error
	Resume func(holder any) error
	Deinit func(holder any)
}

var (
	regMu   sync.Mutex
	indexes = cmap.New[int]()
	hookTab = cmap.New[InterfaceHooks]()
)

// Register assigns a process-wide small index to id, or returns the index
// already assigned. Registration order determines the index.
func Register(id api.InterfaceID) int {
	regMu.Lock()
	defer regMu.Unlock()
	if idx, ok := indexes.Get(string(id)); ok {
		return idx
	}
	idx := indexes.Count()
	indexes.Set(string(id), idx)
	return idx
}

// Index reports the registry index for id.
func Index(id api.InterfaceID) (int, bool) {
	return indexes.Get(string(id))
}

// MustIndex is Index for ids known to be registered; it panics otherwise.
func MustIndex(id api.InterfaceID) int {
	idx, ok := indexes.Get(string(id))
	if !ok {
		panic(fmt.Sprintf("capability: interface %q not registered", id))
	}
	return idx
}

// RegisterHooks attaches lifecycle hooks to a registered interface id.
// Registering hooks also marks the interface as available in this build,
// which CheckInterfaces consults for optional relations.
func RegisterHooks(id api.InterfaceID, h InterfaceHooks) error {
	if _, ok := indexes.Get(string(id)); !ok {
		return fmt.Errorf("register hooks for unregistered interface %q: %w", id, api.ErrInvalidParameter)
	}
	hookTab.Set(string(id), h)
	return nil
}

// HooksFor returns the lifecycle hooks registered for id, if any.
func HooksFor(id api.InterfaceID) (InterfaceHooks, bool) {
	return hookTab.Get(string(id))
}

// Available reports whether this build provides an implementation for id.
func Available(id api.InterfaceID) bool {
	return hookTab.Has(string(id))
}
