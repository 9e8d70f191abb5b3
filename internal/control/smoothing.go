package control

import "github.com/ayusman/faceaim/internal/coords"

// Smoother is a moving-average low-pass filter over mapped screen points.
//
// The window holds the last N smoothed outputs, starting at the origin. Each
// update averages the window with the new sample (N+1 points), drops the
// oldest window entry and stores the new average. Larger N trades latency
// for less jitter.
type Smoother struct {
	window []coords.Point
	next   int // index of the oldest entry
}

// NewSmoother creates a Smoother with a window of n points. A window of zero
// passes samples through unchanged.
func NewSmoother(n int) *Smoother {
	if n < 0 {
		n = 0
	}
	return &Smoother{window: make([]coords.Point, n)}
}

// Size returns the window length.
func (s *Smoother) Size() int {
	return len(s.window)
}

// Update feeds one sample and returns the smoothed point.
func (s *Smoother) Update(p coords.Point) coords.Point {
	if len(s.window) == 0 {
		return p
	}

	sum := p
	for _, w := range s.window {
		sum.X += w.X
		sum.Y += w.Y
	}
	count := float64(len(s.window) + 1)
	avg := coords.Point{X: sum.X / count, Y: sum.Y / count}

	s.window[s.next] = avg
	s.next = (s.next + 1) % len(s.window)

	return avg
}
