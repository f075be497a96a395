package audio

import "sync"

// Millibel levels, matching the convention of expressing gain in 1/100 dB.
const (
	MillibelMin = -9600
	MillibelMax = 0
)

// Volume is the gain control holder.
type Volume struct {
	mu             sync.Mutex
	level          int32 // millibels
	muted          bool
	stereoEnabled  bool
	stereoPosition int32 // permille, -1000 full left .. 1000 full right
}

func (v *Volume) Level() int32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.level
}

// SetLevel clamps to the supported millibel range.
func (v *Volume) SetLevel(mb int32) {
	if mb < MillibelMin {
		mb = MillibelMin
	}
	if mb > MillibelMax {
		mb = MillibelMax
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.level = mb
}

func (v *Volume) Muted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

func (v *Volume) SetMuted(m bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = m
}

func (v *Volume) StereoPosition() (enabled bool, permille int32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stereoEnabled, v.stereoPosition
}

func (v *Volume) SetStereoPosition(enabled bool, permille int32) {
	if permille < -1000 {
		permille = -1000
	}
	if permille > 1000 {
		permille = 1000
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stereoEnabled = enabled
	v.stereoPosition = permille
}
