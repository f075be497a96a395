package audio

import (
	"fmt"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/capability"
	"github.com/gosles/slcore/pkg/engine"
	"github.com/gosles/slcore/pkg/object"
)

// Object identifiers for the classes this build ships.
const (
	ObjectIDAudioPlayer uint32 = 0x1001
	ObjectIDOutputMix   uint32 = 0x1002
	ObjectIDListener    uint32 = 0x1003
)

// AudioPlayer plays one source into one sink. The header must stay the
// first field.
type AudioPlayer struct {
	Obj object.Header

	play        Play
	volume      Volume
	seek        Seek
	bufferQueue BufferQueue
	equalizer   Equalizer

	source DataSource
	sink   DataSink
}

// Slot indexes in AudioPlayerClass order.
const (
	playerSlotPlay = iota
	playerSlotVolume
	playerSlotSeek
	playerSlotBufferQueue
	playerSlotEqualizer
	playerSlotMIDIMessage
)

func (p *AudioPlayer) Header() *object.Header { return &p.Obj }

func (p *AudioPlayer) Slot(i int) any {
	switch i {
	case playerSlotPlay:
		return &p.play
	case playerSlotVolume:
		return &p.volume
	case playerSlotSeek:
		return &p.seek
	case playerSlotBufferQueue:
		return &p.bufferQueue
	case playerSlotEqualizer:
		return &p.equalizer
	}
	return nil
}

// Source returns the data source the player was created with.
func (p *AudioPlayer) Source() DataSource { return p.source }

// Sink returns the data sink the player was created with.
func (p *AudioPlayer) Sink() DataSink { return p.sink }

// AudioPlayerClass is the player's class table. MIDIMessage is declared but
// unavailable: players are not MIDI consumers in this build.
var AudioPlayerClass = &capability.Class{
	Name:     "AudioPlayer",
	ObjectID: ObjectIDAudioPlayer,
	Slots: []capability.Slot{
		{ID: IIDPlay, Relation: api.RelationImplicit},
		{ID: IIDVolume, Relation: api.RelationImplicit},
		{ID: IIDSeek, Relation: api.RelationExplicit},
		{ID: IIDBufferQueue, Relation: api.RelationExplicit},
		{ID: IIDEqualizer, Relation: api.RelationDynamic},
		{ID: IIDMIDIMessage, Relation: api.RelationUnavailable},
	},
	Realize: realizeAudioPlayer,
	Destroy: destroyAudioPlayer,
	New:     func() any { return &AudioPlayer{} },
}

// realizeAudioPlayer acquires the player's resources. For a buffer-queue
// source the ring is sized to the locator's request; other locators keep the
// default ring so the queue slot, if exposed, still works.
func realizeAudioPlayer(self any, async bool) error {
	p := self.(*AudioPlayer)
	if bq, ok := p.source.Locator.(BufferQueueLocator); ok {
		if err := p.bufferQueue.Resize(bq.NumBuffers); err != nil {
			return fmt.Errorf("size source buffer queue: %w", err)
		}
	}
	p.play.SetState(PlayStopped)
	return nil
}

func destroyAudioPlayer(self any) {
	p := self.(*AudioPlayer)
	p.play.SetState(PlayStopped)
	p.bufferQueue.Clear()
}

// CreateAudioPlayer validates src and snk, computes the exposed mask for the
// requested interfaces, and constructs an unrealized player.
func CreateAudioPlayer(e *engine.Engine, src DataSource, snk DataSink, requested []api.InterfaceID, required []bool) (*AudioPlayer, error) {
	if err := CheckSource(src); err != nil {
		return nil, fmt.Errorf("audio player source: %w", err)
	}
	if err := CheckSink(snk); err != nil {
		return nil, fmt.Errorf("audio player sink: %w", err)
	}
	mask, err := capability.CheckInterfaces(AudioPlayerClass, requested, required)
	if err != nil {
		return nil, err
	}
	h, err := e.Construct(AudioPlayerClass, mask)
	if err != nil {
		return nil, err
	}
	p := h.Instance().(*AudioPlayer)
	p.source = src
	p.sink = snk
	return p, nil
}

// Typed accessors route through the header so the gotten mask tracks use.

func (p *AudioPlayer) Play() (*Play, error) {
	holder, err := p.Obj.GetInterface(IIDPlay)
	if err != nil {
		return nil, err
	}
	return holder.(*Play), nil
}

func (p *AudioPlayer) Volume() (*Volume, error) {
	holder, err := p.Obj.GetInterface(IIDVolume)
	if err != nil {
		return nil, err
	}
	return holder.(*Volume), nil
}

func (p *AudioPlayer) Seek() (*Seek, error) {
	holder, err := p.Obj.GetInterface(IIDSeek)
	if err != nil {
		return nil, err
	}
	return holder.(*Seek), nil
}

func (p *AudioPlayer) BufferQueue() (*BufferQueue, error) {
	holder, err := p.Obj.GetInterface(IIDBufferQueue)
	if err != nil {
		return nil, err
	}
	return holder.(*BufferQueue), nil
}

func (p *AudioPlayer) Equalizer() (*Equalizer, error) {
	holder, err := p.Obj.GetInterface(IIDEqualizer)
	if err != nil {
		return nil, err
	}
	return holder.(*Equalizer), nil
}

// OutputMix is the shared mixing destination players route into.
type OutputMix struct {
	Obj object.Header

	volume    Volume
	equalizer Equalizer
}

const (
	mixSlotVolume = iota
	mixSlotEqualizer
)

func (m *OutputMix) Header() *object.Header { return &m.Obj }

func (m *OutputMix) Slot(i int) any {
	switch i {
	case mixSlotVolume:
		return &m.volume
	case mixSlotEqualizer:
		return &m.equalizer
	}
	return nil
}

// OutputMixClass is the mix's class table.
var OutputMixClass = &capability.Class{
	Name:     "OutputMix",
	ObjectID: ObjectIDOutputMix,
	Slots: []capability.Slot{
		{ID: IIDVolume, Relation: api.RelationImplicit},
		{ID: IIDEqualizer, Relation: api.RelationDynamic},
	},
	New: func() any { return &OutputMix{} },
}

// CreateOutputMix constructs an unrealized output mix.
func CreateOutputMix(e *engine.Engine, requested []api.InterfaceID, required []bool) (*OutputMix, error) {
	mask, err := capability.CheckInterfaces(OutputMixClass, requested, required)
	if err != nil {
		return nil, err
	}
	h, err := e.Construct(OutputMixClass, mask)
	if err != nil {
		return nil, err
	}
	return h.Instance().(*OutputMix), nil
}

func (m *OutputMix) Volume() (*Volume, error) {
	holder, err := m.Obj.GetInterface(IIDVolume)
	if err != nil {
		return nil, err
	}
	return holder.(*Volume), nil
}

func (m *OutputMix) Equalizer() (*Equalizer, error) {
	holder, err := m.Obj.GetInterface(IIDEqualizer)
	if err != nil {
		return nil, err
	}
	return holder.(*Equalizer), nil
}

// Listener is the single spatial listener for 3D-positioned sources.
type Listener struct {
	Obj object.Header

	location Location3D
}

func (l *Listener) Header() *object.Header { return &l.Obj }

func (l *Listener) Slot(i int) any {
	if i == 0 {
		return &l.location
	}
	return nil
}

// ListenerClass is the listener's class table.
var ListenerClass = &capability.Class{
	Name:     "Listener",
	ObjectID: ObjectIDListener,
	Slots: []capability.Slot{
		{ID: IIDLocation3D, Relation: api.RelationImplicit},
	},
	New: func() any { return &Listener{} },
}

// CreateListener constructs an unrealized listener.
func CreateListener(e *engine.Engine) (*Listener, error) {
	mask, err := capability.CheckInterfaces(ListenerClass, nil, nil)
	if err != nil {
		return nil, err
	}
	h, err := e.Construct(ListenerClass, mask)
	if err != nil {
		return nil, err
	}
	return h.Instance().(*Listener), nil
}

func (l *Listener) Location() (*Location3D, error) {
	holder, err := l.Obj.GetInterface(IIDLocation3D)
	if err != nil {
		return nil, err
	}
	return holder.(*Location3D), nil
}
