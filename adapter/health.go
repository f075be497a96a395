// Package adapter exposes the runtime to external monitoring: health
// endpoints backed by engine state and process statistics for operators.
package adapter

import (
	"fmt"

	"github.com/heptiolabs/healthcheck"

	"github.com/gosles/slcore/pkg/engine"
)

// NewHealthHandler builds an HTTP health handler reporting on e.
//
// Liveness fails once the engine's work queue has shut down: deferred
// lifecycle operations can no longer complete. Readiness fails while the
// instance table is full, since every creation would return resource
// exhaustion until an object is destroyed.
func NewHealthHandler(e *engine.Engine) healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("work-queue", func() error {
		if e.ShuttingDown() {
			return fmt.Errorf("work queue shut down")
		}
		return nil
	})
	h.AddReadinessCheck("instance-capacity", func() error {
		if live := e.LiveObjects(); live >= engine.MaxInstances {
			return fmt.Errorf("instance table full: %d/%d", live, engine.MaxInstances)
		}
		return nil
	})
	return h
}
