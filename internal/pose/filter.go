package pose

import (
	kalman_filter "github.com/LdDl/kalman-filter"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/log"
)

// Filter smooths the raw pose point stream before it reaches a controller.
type Filter interface {
	// Apply feeds one pose point and returns the filtered point.
	Apply(p coords.Point) coords.Point

	// Reset forgets all history. It is called whenever the face is lost.
	Reset()
}

// KalmanFilter tracks the pose point with a constant-acceleration 2D
// Kalman filter.
type KalmanFilter struct {
	dt       float64
	stdDevA  float64
	stdDevMx float64
	stdDevMy float64

	kf *kalman_filter.Kalman2D
}

// NewKalmanFilter creates a filter for a stream sampled every dt seconds.
func NewKalmanFilter(dt float64) *KalmanFilter {
	return &KalmanFilter{
		dt:       dt,
		stdDevA:  2.0,
		stdDevMx: 0.1,
		stdDevMy: 0.1,
	}
}

// Apply implements Filter.
func (f *KalmanFilter) Apply(p coords.Point) coords.Point {
	if f.kf == nil {
		// No control input: the head is not driven by anything we know.
		f.kf = kalman_filter.NewKalman2D(f.dt, 0, 0, f.stdDevA, f.stdDevMx, f.stdDevMy, kalman_filter.WithState2D(p.X, p.Y))
		return p
	}

	f.kf.Predict()
	if err := f.kf.Update(p.X, p.Y); err != nil {
		log.Debug("kalman update failed, restarting filter", "error", err)
		f.kf = nil
		return p
	}
	x, y := f.kf.GetState()
	return coords.Point{X: x, Y: y}
}

// Reset implements Filter.
func (f *KalmanFilter) Reset() {
	f.kf = nil
}
