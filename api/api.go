// Package api defines the public capability contract shared by the object
// runtime and its callers: interface identifiers, class relations, and the
// result taxonomy every operation reports through.
package api

import "errors"

// InterfaceID names an abstract capability, e.g. "sl.play". IDs are mapped
// to small integer indices by the capability registry at registration time.
type InterfaceID string

// Relation classifies how an interface attaches to a class. It is fixed per
// class at definition time and never changes for a live object.
type Relation uint8

const (
	// RelationImplicit interfaces are always exposed and never toggled.
	RelationImplicit Relation = iota
	// RelationExplicit interfaces must be requested at creation and are
	// never toggled afterwards.
	RelationExplicit
	// RelationOptional interfaces may be requested at creation if the
	// build provides them.
	RelationOptional
	// RelationDynamic interfaces may be requested at creation or added
	// and removed while the object is realized.
	RelationDynamic
	// RelationUnavailable interfaces are never usable on the class.
	RelationUnavailable
)

func (r Relation) String() string {
	switch r {
	case RelationImplicit:
		return "implicit"
	case RelationExplicit:
		return "explicit"
	case RelationOptional:
		return "optional"
	case RelationDynamic:
		return "dynamic"
	case RelationUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result taxonomy. Every failure reported by the runtime wraps exactly one
// of these sentinels; callers classify with errors.Is.
var (
	// ErrInvalidParameter reports an unknown interface id, a duplicate
	// request, or a malformed argument. Always detected synchronously.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrPreconditionViolation reports an operation that is illegal in the
	// current object or interface state.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrFeatureUnsupported reports an interface the class declares
	// unavailable, or one that cannot be obtained in the current state.
	ErrFeatureUnsupported = errors.New("feature unsupported")

	// ErrResourceExhausted reports a full engine instance table or a
	// failed allocation.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrAborted reports an asynchronous operation cancelled before its
	// hook ran.
	ErrAborted = errors.New("operation aborted")
)
