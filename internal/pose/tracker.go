// Package pose estimates where the user's head is pointing.
//
// A Tracker finds the face landmarks in a frame, fits a generic 3D head to
// them and projects a point straight ahead of the nose back into the image.
// That projected pose point is what calibration and the controllers consume.
package pose

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/detector"
	"github.com/ayusman/faceaim/internal/log"
)

// Observation is the result of tracking one frame. With no face, Nose and
// Pose are coords.NoFace and Face is nil.
type Observation struct {
	Nose coords.Point   `json:"nose"`
	Pose coords.Point   `json:"pose"`
	Face *detector.Face `json:"-"`
}

// Found reports whether a face was tracked.
func (o Observation) Found() bool {
	return !o.Pose.IsNoFace()
}

var noFace = Observation{Nose: coords.NoFace, Pose: coords.NoFace}

// Tracker turns frames into observations.
type Tracker struct {
	detector detector.Detector
	solver   Solver
	filter   Filter

	mu         sync.Mutex
	intrinsics Intrinsics
}

// NewTracker creates a Tracker. filter may be nil.
func NewTracker(d detector.Detector, s Solver, filter Filter) *Tracker {
	return &Tracker{detector: d, solver: s, filter: filter}
}

// SetIntrinsics fixes the camera model. Without it the Tracker derives one
// from the first frame it sees.
func (t *Tracker) SetIntrinsics(in Intrinsics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intrinsics = in
}

// Intrinsics returns the camera model in use.
func (t *Tracker) Intrinsics() Intrinsics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intrinsics
}

// Track finds the first face in frame and returns its nose and pose points.
// No face, or a pose that cannot be solved, yields the NoFace observation
// with a nil error; errors are reserved for detector failures.
func (t *Tracker) Track(frame *gocv.Mat) (Observation, error) {
	if frame == nil || frame.Empty() {
		return noFace, nil
	}

	t.mu.Lock()
	if t.intrinsics.IsZero() {
		t.intrinsics = FromFrameSize(frame.Cols(), frame.Rows())
		log.Debug("camera intrinsics derived", "focal", t.intrinsics.Focal, "cx", t.intrinsics.CX, "cy", t.intrinsics.CY)
	}
	t.mu.Unlock()

	faces, err := t.detector.Detect(frame)
	if err != nil {
		t.resetFilter()
		return noFace, fmt.Errorf("detect landmarks: %w", err)
	}
	return t.observe(faces), nil
}

func (t *Tracker) observe(faces []detector.Face) Observation {
	if len(faces) == 0 {
		t.resetFilter()
		return noFace
	}
	face := faces[0]

	in := t.Intrinsics()
	est, err := t.solver.Solve(&face.Landmarks, in)
	if err != nil {
		if !errors.Is(err, ErrSolveFailed) {
			log.Debug("pose solve error", "error", err)
		}
		t.resetFilter()
		return noFace
	}

	p := Project(est, in, gazeTarget)
	if p.IsNoFace() {
		t.resetFilter()
		return noFace
	}
	if t.filter != nil {
		p = t.filter.Apply(p)
	}

	return Observation{
		Nose: face.Nose(),
		Pose: p,
		Face: &face,
	}
}

func (t *Tracker) resetFilter() {
	if t.filter != nil {
		t.filter.Reset()
	}
}
