// Package testdata provides synthetic head poses and a scripted landmark
// detector for end-to-end tests.
package testdata

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/detector"
	"github.com/ayusman/faceaim/internal/pose"
)

// FrameWidth and FrameHeight are the size of the synthetic camera frames.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// Intrinsics is the camera model the tracker derives for synthetic frames.
var Intrinsics = pose.FromFrameSize(FrameWidth, FrameHeight)

var headTranslation = [3]float64{20, -10, 2000}

// Head poses two metres from the camera. The corner poses turn the head
// about 9 degrees sideways and 6 degrees up or down.
var (
	Straight = pose.Estimate{Rotation: [3]float64{3.0, 0.1, 0.05}, Translation: headTranslation}

	TopLeft     = pose.Estimate{Rotation: [3]float64{2.9, 0.1255, -0.1741}, Translation: headTranslation}
	TopRight    = pose.Estimate{Rotation: [3]float64{2.885, 0.0729, 0.2605}, Translation: headTranslation}
	BottomRight = pose.Estimate{Rotation: [3]float64{3.0824, 0.0954, 0.2883}, Translation: headTranslation}
	BottomLeft  = pose.Estimate{Rotation: [3]float64{3.1002, 0.1049, -0.1761}, Translation: headTranslation}

	LookingRight = pose.Estimate{Rotation: [3]float64{2.9883, 0.0871, 0.2295}, Translation: headTranslation}
	LookingLeft  = pose.Estimate{Rotation: [3]float64{3.0014, 0.1125, -0.1301}, Translation: headTranslation}
)

// Corners returns the corner poses in calibration order.
func Corners() []pose.Estimate {
	return []pose.Estimate{TopLeft, TopRight, BottomRight, BottomLeft}
}

// FaceFor renders the landmarks a detector would report for a head in pose e.
func FaceFor(e pose.Estimate) detector.Face {
	f := detector.Face{
		Landmarks: pose.ProjectModel(e, Intrinsics),
		Score:     1,
	}
	f.Rect = f.Bounds()
	return f
}

// SequenceDetector is a detector.Detector that replays a script of
// detections, one entry per Detect call. A nil entry means no face. The last
// entry repeats once the script is exhausted.
type SequenceDetector struct {
	mu     sync.Mutex
	script [][]detector.Face
	calls  int
}

// NewSequenceDetector creates a SequenceDetector from head poses. A nil pose
// produces a frame without a face.
func NewSequenceDetector(poses ...*pose.Estimate) *SequenceDetector {
	d := &SequenceDetector{}
	for _, p := range poses {
		if p == nil {
			d.script = append(d.script, nil)
			continue
		}
		d.script = append(d.script, []detector.Face{FaceFor(*p)})
	}
	return d
}

// Detect implements detector.Detector.
func (d *SequenceDetector) Detect(frame *gocv.Mat) ([]detector.Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.script) == 0 {
		return nil, nil
	}
	i := min(d.calls, len(d.script)-1)
	d.calls++
	return d.script[i], nil
}

// Calls returns how many frames were analyzed.
func (d *SequenceDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Close implements detector.Detector.
func (d *SequenceDetector) Close() error {
	return nil
}
