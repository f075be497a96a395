package audio

import (
	"fmt"
	"sync"

	"github.com/gosles/slcore/api"
)

// EqualizerBand describes one band's frequency range in milliHertz.
type EqualizerBand struct {
	Min    uint32
	Center uint32
	Max    uint32
}

// defaultBands is a 4-band layout covering the audible range.
var defaultBands = []EqualizerBand{
	{Min: 30_000, Center: 60_000, Max: 120_000},
	{Min: 120_001, Center: 230_000, Max: 460_000},
	{Min: 460_001, Center: 910_000, Max: 3_600_000},
	{Min: 3_600_001, Center: 14_000_000, Max: 20_000_000},
}

// Equalizer is the band gain holder.
type Equalizer struct {
	mu      sync.Mutex
	enabled bool
	bands   []EqualizerBand
	levels  []int32 // millibels, parallel to bands
}

// reset restores the default band layout; runs as the slot init hook.
func (e *Equalizer) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = false
	e.bands = append([]EqualizerBand(nil), defaultBands...)
	e.levels = make([]int32, len(e.bands))
}

func (e *Equalizer) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *Equalizer) SetEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = on
}

// NumBands reports the band count.
func (e *Equalizer) NumBands() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bands)
}

// Band returns the frequency range of one band.
func (e *Equalizer) Band(i int) (EqualizerBand, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.bands) {
		return EqualizerBand{}, fmt.Errorf("equalizer band %d of %d: %w", i, len(e.bands), api.ErrInvalidParameter)
	}
	return e.bands[i], nil
}

// Level returns one band's gain in millibels.
func (e *Equalizer) Level(i int) (int32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.levels) {
		return 0, fmt.Errorf("equalizer band %d of %d: %w", i, len(e.levels), api.ErrInvalidParameter)
	}
	return e.levels[i], nil
}

// SetLevel sets one band's gain in millibels.
func (e *Equalizer) SetLevel(i int, mb int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.levels) {
		return fmt.Errorf("equalizer band %d of %d: %w", i, len(e.levels), api.ErrInvalidParameter)
	}
	e.levels[i] = mb
	return nil
}
