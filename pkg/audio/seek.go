package audio

import (
	"sync"
	"time"
)

// Seek is the position and loop control holder.
type Seek struct {
	mu          sync.Mutex
	position    time.Duration
	loopEnabled bool
	loopStart   time.Duration
	loopEnd     time.Duration
}

func (s *Seek) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Seek) SetPosition(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = pos
}

func (s *Seek) Loop() (enabled bool, start, end time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopEnabled, s.loopStart, s.loopEnd
}

func (s *Seek) SetLoop(enabled bool, start, end time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopEnabled = enabled
	s.loopStart = start
	s.loopEnd = end
}
