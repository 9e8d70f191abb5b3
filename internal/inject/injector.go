// Package inject moves the system pointer on behalf of the controllers.
package inject

import "github.com/go-vgo/robotgo"

// Injector emits pointer movement.
type Injector interface {
	// MoveRelative moves the pointer by dx, dy pixels.
	MoveRelative(dx, dy int)

	// Position returns the current pointer location in screen pixels.
	Position() (x, y int)
}

// Robot injects movement into the operating system through robotgo.
type Robot struct{}

// NewRobot creates an Injector backed by robotgo.
func NewRobot() *Robot {
	return &Robot{}
}

// MoveRelative moves the system pointer by a relative offset.
func (r *Robot) MoveRelative(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	robotgo.MoveRelative(dx, dy)
}

// Position returns the system pointer location.
func (r *Robot) Position() (int, int) {
	return robotgo.Location()
}

// ScreenSize returns the primary display size.
func ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}
