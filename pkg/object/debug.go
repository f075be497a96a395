package object

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// Dump renders the object's whole state for diagnostics: object state,
// masks, and one line per interface slot.
func (h *Header) Dump() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(buf, "%s #%d state:%s gotten:%#x loc:%#x priority:%d preemptable:%v pending:%v\n",
		h.class.Name, h.id, h.state, h.gottenMask, h.lossOfControlMask,
		h.priority, h.preemptable, h.asyncPending)
	for i := range h.slots {
		fmt.Fprintf(buf, "  slot[%d] %s relation:%s state:%s\n",
			i, h.class.Slots[i].ID, h.class.Slots[i].Relation, h.slots[i])
	}
	return buf.String()
}
