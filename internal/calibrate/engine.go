// Package calibrate records the pose points the user aims at the four screen
// corners and derives the pose space the controllers map from.
package calibrate

import (
	"errors"
	"fmt"

	"github.com/ayusman/faceaim/internal/coords"
)

var (
	// ErrSampleRejected is returned when a confirmed sample has no face.
	// The engine stays on the same corner and the user may retry.
	ErrSampleRejected = errors.New("no face in calibration sample")

	// ErrAborted is returned when the user quits during calibration.
	ErrAborted = errors.New("calibration aborted")

	// ErrComplete is returned by Confirm once all corners are recorded.
	ErrComplete = errors.New("calibration already complete")

	// ErrIncomplete is returned by Finish before all corners are recorded.
	ErrIncomplete = errors.New("calibration incomplete")
)

// Corner is a calibration target on the screen.
type Corner int

// Corners are visited in this order.
const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
	numCorners
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top left"
	case TopRight:
		return "top right"
	case BottomRight:
		return "bottom right"
	case BottomLeft:
		return "bottom left"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// Result is a finished calibration.
type Result struct {
	Space          coords.Space    `json:"space"`
	DeadzoneRadius float64         `json:"deadzone_radius"`
	Samples        [4]coords.Point `json:"samples"`
}

// Engine is the calibration state machine: one accepted sample per corner,
// in order.
type Engine struct {
	samples []coords.Point
}

// NewEngine creates an Engine waiting for the top-left sample.
func NewEngine() *Engine {
	return &Engine{samples: make([]coords.Point, 0, numCorners)}
}

// Corner returns the corner awaiting a sample, or false when all four are
// recorded.
func (e *Engine) Corner() (Corner, bool) {
	if e.Done() {
		return 0, false
	}
	return Corner(len(e.samples)), true
}

// Done reports whether all corners are recorded.
func (e *Engine) Done() bool {
	return len(e.samples) == int(numCorners)
}

// Confirm records p for the current corner and advances. A no-face sample
// returns ErrSampleRejected and leaves the engine unchanged.
func (e *Engine) Confirm(p coords.Point) error {
	if e.Done() {
		return ErrComplete
	}
	if p.IsNoFace() {
		return ErrSampleRejected
	}
	e.samples = append(e.samples, p)
	return nil
}

// Finish derives the pose space and deadzone radius from the four samples.
// A degenerate space fails with coords.ErrDegenerateSpace.
func (e *Engine) Finish(deadzoneThreshold float64) (Result, error) {
	if !e.Done() {
		return Result{}, fmt.Errorf("%w: %d of %d corners", ErrIncomplete, len(e.samples), numCorners)
	}

	space, err := coords.NewSpace(
		e.samples[TopLeft],
		e.samples[TopRight],
		e.samples[BottomRight],
		e.samples[BottomLeft],
	)
	if err != nil {
		return Result{}, fmt.Errorf("finish calibration: %w", err)
	}

	r := Result{
		Space:          space,
		DeadzoneRadius: space.DeadzoneRadius(deadzoneThreshold),
	}
	copy(r.Samples[:], e.samples)
	return r, nil
}
