// Package audio supplies the concrete material the object runtime hosts:
// thin per-interface holders (playback control, volume, seek, buffer queue,
// equalizer, 3D location), the class descriptors that arrange them into
// objects, and the data source/sink validation performed once at creation
// time. Actual decoding, mixing, and device I/O happen inside class hooks
// and are opaque to this package.
package audio

import (
	"fmt"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
)

// Interface identifiers known to this build.
const (
	IIDPlay        = api.InterfaceID("sl.play")
	IIDVolume      = api.InterfaceID("sl.volume")
	IIDSeek        = api.InterfaceID("sl.seek")
	IIDBufferQueue = api.InterfaceID("sl.bufferqueue")
	IIDEqualizer   = api.InterfaceID("sl.equalizer")
	IIDLocation3D  = api.InterfaceID("sl.3dlocation")
	IIDMIDIMessage = api.InterfaceID("sl.midimessage")
)

func init() {
	for _, id := range []api.InterfaceID{
		IIDPlay, IIDVolume, IIDSeek, IIDBufferQueue,
		IIDEqualizer, IIDLocation3D, IIDMIDIMessage,
	} {
		capability.Register(id)
	}
	mustHooks(IIDBufferQueue, capability.InterfaceHooks{
		Init: func(holder any) error {
			holder.(*BufferQueue).configure(defaultQueueBuffers)
			return nil
		},
		Deinit: func(holder any) {
			holder.(*BufferQueue).Clear()
		},
	})
	mustHooks(IIDEqualizer, capability.InterfaceHooks{
		Init: func(holder any) error {
			holder.(*Equalizer).reset()
			return nil
		},
		Deinit: func(holder any) {
			holder.(*Equalizer).SetEnabled(false)
		},
	})
	mustHooks(IIDLocation3D, capability.InterfaceHooks{
		Init: func(holder any) error {
			holder.(*Location3D).reset()
			return nil
		},
	})
}

func mustHooks(id api.InterfaceID, h capability.InterfaceHooks) {
	if err := capability.RegisterHooks(id, h); err != nil {
		panic(fmt.Sprintf("audio: %v", err))
	}
}
