package app

import (
	"context"

	"github.com/ayusman/faceaim/internal/control"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
	"github.com/ayusman/faceaim/internal/store"
	"github.com/ayusman/faceaim/internal/ui"
)

// controllerFactory builds controllers for the calibrated pose space.
func (a *App) controllerFactory() control.Factory {
	a.mu.RLock()
	res := a.result
	a.mu.RUnlock()

	s := a.config.Settings
	return func(m control.Mode) control.Controller {
		if m == control.ModeMouse {
			return control.NewMouse(res.Space, s, a.box, a.config.Injector)
		}
		return control.NewStick(res.Space, res.DeadzoneRadius, s, a.box, a.config.Injector)
	}
}

// startControl launches the controller for the configured mode.
func (a *App) startControl() error {
	a.mu.Lock()
	if !a.calibrated {
		a.mu.Unlock()
		return ErrNotCalibrated
	}
	if a.supervisor == nil {
		a.supervisor = control.NewSupervisor(a.controllerFactory())
	}
	sup, mode := a.supervisor, a.mode
	a.phase = PhaseRunning
	a.mu.Unlock()

	a.box.Drain()
	if err := sup.Start(mode); err != nil {
		return err
	}
	a.notify()
	return nil
}

// Run feeds pose points to the active controller until the user quits, ctx
// is cancelled or the camera fails. It requires a successful Calibrate.
func (a *App) Run(ctx context.Context) error {
	if err := a.startControl(); err != nil {
		return err
	}
	log.Info("control started", "mode", string(a.mode))

	if a.replayDeferred() {
		a.setEndReason(EndQuit)
		a.stopControl()
		return nil
	}

	for {
		if ctx.Err() != nil {
			a.setEndReason(EndCancelled)
			a.stopControl()
			return nil
		}

		frame, obs, err := a.capture()
		if err != nil {
			a.setEndReason(EndError)
			a.stopControl()
			return err
		}

		a.mu.RLock()
		paused, mode := a.paused, a.mode
		res := a.result
		a.mu.RUnlock()

		if paused {
			a.box.Put(coords.NoFace)
		} else {
			a.box.Put(obs.Pose)
		}

		action := a.present(frame, ui.View{
			Mode:        string(mode),
			Paused:      paused,
			Observation: obs,
			Space:       res.Space,
			Deadzone:    res.DeadzoneRadius,
		})
		frame.Close()

		if quit := a.handle(action); quit {
			a.setEndReason(EndQuit)
			a.stopControl()
			return nil
		}
	}
}

// handle applies one action and reports whether the loop should end.
func (a *App) handle(action input.Action) bool {
	switch action {
	case input.None:
		return false

	case input.Quit:
		a.journal(store.EventQuit, map[string]string{"phase": PhaseRunning})
		return true

	case input.ToggleMode:
		a.mu.RLock()
		sup := a.supervisor
		a.mu.RUnlock()
		if sup == nil {
			return false
		}
		next := sup.Switch()
		a.mu.Lock()
		a.mode = next
		a.mu.Unlock()
		log.Info("control mode switched", "mode", string(next))
		a.journal(store.EventModeSwitched, map[string]string{"mode": string(next)})

	case input.Confirm, input.TogglePause:
		a.mu.Lock()
		a.paused = !a.paused
		paused := a.paused
		a.mu.Unlock()
		if paused {
			log.Info("control paused")
			a.journal(store.EventPaused, nil)
		} else {
			log.Info("control resumed")
			a.journal(store.EventResumed, nil)
		}

	case input.ToggleOverlay:
		a.overlay.ToggleText()
		a.mu.Lock()
		a.textHidden = !a.overlay.ShowText
		hidden := a.textHidden
		a.mu.Unlock()
		a.journal(store.EventOverlayToggled, map[string]bool{"hidden": hidden})

	default:
		return false
	}

	a.notify()
	return false
}

// replayDeferred applies the actions that arrived during calibration and
// reports whether one of them ends the loop.
func (a *App) replayDeferred() bool {
	pending := a.deferred
	a.deferred = nil
	for _, action := range pending {
		if a.handle(action) {
			return true
		}
	}
	return false
}

func (a *App) stopControl() {
	a.mu.RLock()
	sup := a.supervisor
	a.mu.RUnlock()
	if sup != nil {
		sup.Stop()
	}
	a.box.Drain()
}
