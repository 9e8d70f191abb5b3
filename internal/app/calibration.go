package app

import (
	"context"
	"errors"

	"github.com/ayusman/faceaim/internal/calibrate"
	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
	"github.com/ayusman/faceaim/internal/store"
	"github.com/ayusman/faceaim/internal/ui"
)

// calibrationDriver feeds camera frames and window keys to calibrate.Run.
type calibrationDriver struct {
	app *App
}

func (d *calibrationDriver) Next(ctx context.Context, p calibrate.Prompt) (calibrate.Step, error) {
	frame, obs, err := d.app.capture()
	if err != nil {
		return calibrate.Step{}, err
	}
	defer frame.Close()

	action := d.app.present(frame, ui.View{
		Calibrating: true,
		Corner:      p.Corner.String(),
		Rejected:    p.Rejected,
		Observation: obs,
	})

	switch action {
	case input.Confirm, input.Quit:
		return calibrate.Step{Action: action, Pose: obs.Pose}, nil
	case input.None:
		return calibrate.Step{}, nil
	default:
		// Toggles from the tray or the status server apply once control starts.
		log.Debug("action deferred until control starts", "action", action.String())
		d.app.deferred = append(d.app.deferred, action)
		return calibrate.Step{}, nil
	}
}

func (d *calibrationDriver) Rejected(c calibrate.Corner) {
	d.app.journal(store.EventCalibrationRejected, map[string]string{"corner": c.String()})
}

// Calibrate asks the user to aim at each screen corner and derives the pose
// space. Quitting returns calibrate.ErrAborted.
func (a *App) Calibrate(ctx context.Context) (calibrate.Result, error) {
	a.setPhase(PhaseCalibrating)
	log.Info("calibration started")

	res, err := calibrate.Run(ctx, &calibrationDriver{app: a}, a.config.Settings.DeadzoneThreshold)
	if err != nil {
		switch {
		case errors.Is(err, calibrate.ErrAborted):
			a.setEndReason(EndQuit)
			a.journal(store.EventQuit, map[string]string{"phase": PhaseCalibrating})
		case ctx.Err() != nil:
			a.setEndReason(EndCancelled)
		default:
			a.setEndReason(EndError)
		}
		a.setPhase(PhaseIdle)
		return calibrate.Result{}, err
	}

	a.mu.Lock()
	a.result = res
	a.calibrated = true
	a.mu.Unlock()
	a.journal(store.EventCalibrated, res)
	a.setPhase(PhaseIdle)

	return res, nil
}
