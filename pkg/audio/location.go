package audio

import "sync"

// Vec3 is a position or direction in millimeters per axis.
type Vec3 struct {
	X, Y, Z int32
}

// Location3D is the spatial position holder used by listeners and
// positional sources.
type Location3D struct {
	mu          sync.Mutex
	position    Vec3
	front, up   Vec3
	orientation bool // front/up set explicitly
}

// reset restores the origin looking down -Z; runs as the slot init hook.
func (l *Location3D) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = Vec3{}
	l.front = Vec3{Z: -1000}
	l.up = Vec3{Y: 1000}
	l.orientation = false
}

func (l *Location3D) Position() Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *Location3D) SetPosition(p Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

// Orientation returns the front and up vectors.
func (l *Location3D) Orientation() (front, up Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.front, l.up
}

func (l *Location3D) SetOrientation(front, up Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.front = front
	l.up = up
	l.orientation = true
}
