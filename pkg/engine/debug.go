package engine

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// Dump renders the engine's table and queue state, one block per live
// object, for diagnostics.
func (e *Engine) Dump() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	e.mu.Lock()
	fmt.Fprintf(buf, "engine objects:%d/%d mask:%#x queue:%d shutdown:%v\n",
		e.count, MaxInstances, e.instanceMask, e.wq.Len(), e.shutdown)
	e.mu.Unlock()

	for _, h := range e.Instances() {
		buf.WriteString(h.Dump())
	}
	return buf.String()
}
