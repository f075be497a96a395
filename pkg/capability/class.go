package capability

import (
	"fmt"
	"math/bits"

	"github.com/gosles/slcore/api"
)

// MaxSlots bounds the number of interface slots a single class may declare.
// Exposed masks are one bit per slot.
const MaxSlots = 32

// Hook signatures supplied per class. The self argument is the concrete
// instance returned by Class.New.
type (
	// AsyncHook runs at realize or resume time; async reports whether the
	// hook is executing on a work-queue thread.
	AsyncHook func(self any, async bool) error
	// VoidHook runs at destroy time and cannot fail.
	VoidHook func(self any)
)

// Slot describes one interface position in a class table: which interface
// occupies it and how it relates to the class.
type Slot struct {
	ID       api.InterfaceID
	Relation api.Relation
}

// Class is the immutable per-class descriptor shared by every instance of
// the same class: the ordered slot table, the lifecycle hooks, and a factory
// for the concrete instance value.
type Class struct {
	Name     string
	ObjectID uint32
	Slots    []Slot

	Realize AsyncHook
	Resume  AsyncHook
	Destroy VoidHook

	// New allocates a zeroed concrete instance. The returned value must
	// satisfy the runtime's Instance contract: its first field is the
	// object header and Slot(i) addresses the i'th holder.
	New func() any
}

// Lookup resolves an interface id against the class table, returning its
// relation and slot index.
func (c *Class) Lookup(id api.InterfaceID) (api.Relation, int, bool) {
	for i := range c.Slots {
		if c.Slots[i].ID == id {
			return c.Slots[i].Relation, i, true
		}
	}
	return 0, 0, false
}

// CheckInterfaces validates a creation request against the class table and
// computes the exposed mask, one bit per slot:
//
//   - an id unknown to the class, a duplicate id, or mismatched argument
//     lengths fail with ErrInvalidParameter;
//   - an Unavailable relation fails with ErrFeatureUnsupported regardless
//     of the required flag;
//   - Optional and Dynamic interfaces absent from this build are tolerated
//     when not required, and fail with ErrFeatureUnsupported when required;
//   - Implicit interfaces are exposed whether or not they were requested.
func CheckInterfaces(c *Class, requested []api.InterfaceID, required []bool) (uint32, error) {
	if c == nil {
		return 0, fmt.Errorf("check interfaces: nil class: %w", api.ErrInvalidParameter)
	}
	if len(c.Slots) > MaxSlots {
		return 0, fmt.Errorf("class %s declares %d slots, limit %d: %w",
			c.Name, len(c.Slots), MaxSlots, api.ErrInvalidParameter)
	}
	if len(required) != len(requested) {
		return 0, fmt.Errorf("%d requested interfaces with %d required flags: %w",
			len(requested), len(required), api.ErrInvalidParameter)
	}

	var exposed uint32
	for i, id := range requested {
		relation, slot, ok := c.Lookup(id)
		if !ok {
			return 0, fmt.Errorf("class %s does not know interface %q: %w", c.Name, id, api.ErrInvalidParameter)
		}
		bit := uint32(1) << slot
		if exposed&bit != 0 {
			return 0, fmt.Errorf("interface %q requested twice: %w", id, api.ErrInvalidParameter)
		}
		switch relation {
		case api.RelationUnavailable:
			return 0, fmt.Errorf("class %s declares interface %q unavailable: %w", c.Name, id, api.ErrFeatureUnsupported)
		case api.RelationImplicit, api.RelationExplicit:
			exposed |= bit
		case api.RelationOptional, api.RelationDynamic:
			switch {
			case Available(id):
				exposed |= bit
			case required[i]:
				return 0, fmt.Errorf("interface %q not provided by this build: %w", id, api.ErrFeatureUnsupported)
			}
			// Tolerated: requested but neither required nor available.
		}
	}

	// Implicit interfaces are part of every object of the class.
	for i := range c.Slots {
		if c.Slots[i].Relation == api.RelationImplicit {
			exposed |= uint32(1) << i
		}
	}
	return exposed, nil
}

// ExposedCount reports how many slots a mask exposes.
func ExposedCount(mask uint32) int {
	return bits.OnesCount32(mask)
}
