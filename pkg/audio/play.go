package audio

import (
	"sync"
	"time"
)

// PlayState is the playback control state.
type PlayState uint8

const (
	PlayStopped PlayState = iota
	PlayPaused
	PlayPlaying
)

func (s PlayState) String() string {
	switch s {
	case PlayStopped:
		return "stopped"
	case PlayPaused:
		return "paused"
	case PlayPlaying:
		return "playing"
	}
	return "unknown"
}

// Play is the playback control holder. Holders carry their own small lock:
// on a preemptable object, sibling interfaces stay usable while a slow hook
// runs, so the object lock alone does not serialize access.
type Play struct {
	mu       sync.Mutex
	state    PlayState
	duration time.Duration
	position time.Duration
	callback func(PlayState)
}

func (p *Play) State() PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetState changes the playback state and fires the registered callback on
// an actual change.
func (p *Play) SetState(s PlayState) {
	p.mu.Lock()
	changed := p.state != s
	p.state = s
	cb := p.callback
	p.mu.Unlock()
	if changed && cb != nil {
		cb(s)
	}
}

func (p *Play) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// SetDuration is called by realize hooks once the content length is known.
func (p *Play) SetDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = d
}

func (p *Play) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *Play) SetPosition(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

// SetCallback registers a state-change callback.
func (p *Play) SetCallback(cb func(PlayState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = cb
}
