package calibrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
)

// Prompt describes what the user is asked to do on the current frame.
type Prompt struct {
	Corner   Corner
	Rejected bool // the last confirmation for this corner had no face
}

// Step is the user input gathered for one frame. Pose is only read when
// Action is input.Confirm.
type Step struct {
	Action input.Action
	Pose   coords.Point
}

// Driver supplies frames and user input to Run.
type Driver interface {
	// Next shows the prompt and returns the input for one frame. It
	// blocks for as long as the user takes.
	Next(ctx context.Context, p Prompt) (Step, error)

	// Rejected is called each time a confirmation is rejected.
	Rejected(c Corner)
}

// Run drives an Engine until all four corners are recorded, the user quits
// (ErrAborted) or ctx is cancelled.
func Run(ctx context.Context, d Driver, deadzoneThreshold float64) (Result, error) {
	e := NewEngine()
	rejected := false

	for {
		c, ok := e.Corner()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		step, err := d.Next(ctx, Prompt{Corner: c, Rejected: rejected})
		if err != nil {
			return Result{}, fmt.Errorf("calibration input: %w", err)
		}

		switch step.Action {
		case input.Quit:
			return Result{}, ErrAborted
		case input.Confirm:
			err := e.Confirm(step.Pose)
			if errors.Is(err, ErrSampleRejected) {
				log.Warn("no face found, try again", "corner", c.String())
				rejected = true
				d.Rejected(c)
				continue
			}
			if err != nil {
				return Result{}, err
			}
			rejected = false
			log.Info("calibration point recorded", "corner", c.String(), "x", step.Pose.X, "y", step.Pose.Y)
		}
	}

	r, err := e.Finish(deadzoneThreshold)
	if err != nil {
		return Result{}, err
	}
	log.Info("calibration complete",
		"width", r.Space.Width,
		"height", r.Space.Height,
		"deadzone", r.DeadzoneRadius,
	)
	return r, nil
}
