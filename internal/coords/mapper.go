package coords

import "math"

// Normalize maps p into the unit square of the calibrated space.
// Points outside the calibrated bounds fall outside [0, 1].
func Normalize(p Point, s Space) Point {
	return Point{
		X: (p.X - s.XMin) / s.Width,
		Y: (p.Y - s.YMin) / s.Height,
	}
}

// ToResolution maps p to absolute screen pixels for a resX by resY screen.
// Overshoot beyond the calibrated bounds is clamped to the screen edges.
func ToResolution(p Point, s Space, resX, resY int) Point {
	n := Normalize(p, s)
	return Point{
		X: clamp(n.X*float64(resX), 0, float64(resX)),
		Y: clamp(n.Y*float64(resY), 0, float64(resY)),
	}
}

// Deflection returns the per-axis stick strength for p, or false when p lies
// inside the deadzone around the space center.
//
// Each axis is the signed offset from the center divided by the space size on
// that axis. The deadzone only gates movement; it is not subtracted from the
// magnitude.
func Deflection(p Point, s Space, deadzoneRadius float64) (Point, bool) {
	delta := p.Sub(s.Center)
	if math.Hypot(delta.X, delta.Y) <= deadzoneRadius {
		return Point{}, false
	}

	return Point{
		X: math.Copysign(math.Abs(delta.X)/s.Width, delta.X),
		Y: math.Copysign(math.Abs(delta.Y)/s.Height, delta.Y),
	}, true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
