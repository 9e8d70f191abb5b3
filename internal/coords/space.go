package coords

import (
	"errors"
	"fmt"
)

// ErrDegenerateSpace is returned when calibration samples do not span a
// rectangle with positive width and height.
var ErrDegenerateSpace = errors.New("degenerate pose space")

// Space is the calibrated bounding box of usable pose coordinates.
// It is built once from the four corner samples and never mutated.
type Space struct {
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	YMin   float64 `json:"y_min"`
	YMax   float64 `json:"y_max"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Center Point   `json:"center"`
}

// NewSpace derives the pose space from the top-left, top-right, bottom-right
// and bottom-left calibration samples.
//
// The left edge comes from the two left samples, the right edge from the two
// right samples, and likewise for top and bottom, so a slightly skewed
// quadrilateral still yields the widest usable rectangle.
func NewSpace(topLeft, topRight, bottomRight, bottomLeft Point) (Space, error) {
	s := Space{
		XMin: min(topLeft.X, bottomLeft.X),
		XMax: max(topRight.X, bottomRight.X),
		YMin: min(topLeft.Y, topRight.Y),
		YMax: max(bottomLeft.Y, bottomRight.Y),
	}
	s.Width = s.XMax - s.XMin
	s.Height = s.YMax - s.YMin

	if !(s.Width > 0) || !(s.Height > 0) {
		return Space{}, fmt.Errorf("%w: width=%.2f height=%.2f", ErrDegenerateSpace, s.Width, s.Height)
	}

	s.Center = Point{
		X: s.XMin + s.Width/2,
		Y: s.YMin + s.Height/2,
	}
	return s, nil
}

// DeadzoneRadius returns the stick deadzone radius for the given ratio of
// the pose-space height.
func (s Space) DeadzoneRadius(threshold float64) float64 {
	return s.Height * threshold
}
