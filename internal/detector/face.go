// Package detector provides face detection interfaces and types for head
// pose tracking.
package detector

import (
	"image"

	"github.com/ayusman/faceaim/internal/coords"
)

// Facial landmark indices following the iBUG 300-W 68-point convention
// used by dlib's shape predictor.
const (
	JawStart       = 0
	JawEnd         = 16
	RightBrowStart = 17
	LeftBrowStart  = 22
	NoseBridge     = 27
	NoseTip        = 33
	RightEyeStart  = 36
	LeftEyeStart   = 42
	MouthStart     = 48
	MouthEnd       = 67
	NumLandmarks   = 68
)

// Face is one detected face.
type Face struct {
	Rect      image.Rectangle            `json:"rect"`
	Landmarks [NumLandmarks]coords.Point `json:"landmarks"`
	Score     float64                    `json:"score"`
}

// Nose returns the nose tip landmark.
func (f *Face) Nose() coords.Point {
	return f.Landmarks[NoseTip]
}

// Bounds returns the smallest rectangle containing every landmark.
func (f *Face) Bounds() image.Rectangle {
	minX, minY := f.Landmarks[0].X, f.Landmarks[0].Y
	maxX, maxY := minX, minY
	for _, p := range f.Landmarks[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(int(minX), int(minY), int(maxX+0.5), int(maxY+0.5))
}
