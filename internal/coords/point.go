// Package coords provides the coordinate types and transforms that turn raw
// head-pose points into screen positions and stick deflections.
package coords

import "math"

// Point is a 2D coordinate. Depending on context it is an image-pixel
// location (pose or nose point) or a screen-pixel location.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NoFace is the sentinel pose point reported when no face was found in a frame.
var NoFace = Point{X: -1, Y: -1}

// IsNoFace reports whether p is the no-face sentinel.
func (p Point) IsNoFace() bool {
	return p == NoFace
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
