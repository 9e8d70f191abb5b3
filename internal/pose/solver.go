package pose

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/detector"
)

// ErrSolveFailed is returned when no pose fits the landmarks.
var ErrSolveFailed = errors.New("pose solve failed")

// Solver recovers a head pose from 2D landmarks.
type Solver interface {
	Solve(landmarks *[detector.NumLandmarks]coords.Point, in Intrinsics) (Estimate, error)
}

// CVSolver solves the perspective-n-point problem with OpenCV's iterative
// method against the generic head model.
type CVSolver struct {
	mu    sync.Mutex
	model gocv.Point3fVector
	ready bool
}

// NewCVSolver creates a CVSolver. Close releases its native memory.
func NewCVSolver() *CVSolver {
	return &CVSolver{}
}

// Solve implements Solver.
func (s *CVSolver) Solve(landmarks *[detector.NumLandmarks]coords.Point, in Intrinsics) (Estimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		pts := make([]gocv.Point3f, len(modelPoints))
		for i, p := range modelPoints {
			pts[i] = gocv.Point3f{X: float32(p[0]), Y: float32(p[1]), Z: float32(p[2])}
		}
		s.model = gocv.NewPoint3fVectorFromPoints(pts)
		s.ready = true
	}

	img := make([]gocv.Point2f, len(landmarks))
	for i, p := range landmarks {
		img[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	imagePoints := gocv.NewPoint2fVectorFromPoints(img)
	defer imagePoints.Close()

	camera := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer camera.Close()
	m := in.Matrix()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			camera.SetDoubleAt(r, c, m.At(r, c))
		}
	}

	dist := gocv.Zeros(4, 1, gocv.MatTypeCV64F)
	defer dist.Close()

	rvec := gocv.NewMat()
	defer rvec.Close()
	tvec := gocv.NewMat()
	defer tvec.Close()

	if !gocv.SolvePnP(s.model, imagePoints, camera, dist, &rvec, &tvec, false, 0) {
		return Estimate{}, ErrSolveFailed
	}
	if rvec.Rows()*rvec.Cols() < 3 || tvec.Rows()*tvec.Cols() < 3 {
		return Estimate{}, ErrSolveFailed
	}

	var e Estimate
	for i := 0; i < 3; i++ {
		e.Rotation[i] = rvec.GetDoubleAt(i, 0)
		e.Translation[i] = tvec.GetDoubleAt(i, 0)
	}
	return e, nil
}

// Close releases the model point buffer.
func (s *CVSolver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		s.model.Close()
		s.ready = false
	}
	return nil
}

// MockSolver is a test implementation of Solver that returns a fixed
// estimate.
type MockSolver struct {
	mu       sync.Mutex
	estimate Estimate
	err      error
	calls    int
}

// NewMockSolver creates a MockSolver returning e.
func NewMockSolver(e Estimate) *MockSolver {
	return &MockSolver{estimate: e}
}

// SetError sets the error that will be returned by Solve.
func (m *MockSolver) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Solve has been called.
func (m *MockSolver) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Solve implements Solver.
func (m *MockSolver) Solve(landmarks *[detector.NumLandmarks]coords.Point, in Intrinsics) (Estimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Estimate{}, m.err
	}
	return m.estimate, nil
}
