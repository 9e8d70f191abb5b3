package app

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
	"github.com/ayusman/faceaim/internal/pose"
	"github.com/ayusman/faceaim/internal/ui"
)

// capture reads one frame and tracks it. The caller closes the frame.
// Detector failures are logged and reported as no face.
func (a *App) capture() (*gocv.Mat, pose.Observation, error) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		return nil, pose.Observation{}, fmt.Errorf("read frame: %w", err)
	}

	obs, err := a.config.Tracker.Track(frame)
	if err != nil {
		if !a.detectFailing {
			log.Warn("tracking failed", "error", err)
		} else {
			log.Debug("tracking failed", "error", err)
		}
		a.detectFailing = true
	} else {
		a.detectFailing = false
	}
	if !obs.Found() {
		log.Debug("no face detected")
	}

	a.mu.Lock()
	a.lastObs = obs
	a.mu.Unlock()

	return frame, obs, nil
}

// present draws the overlay, shows the frame and returns the action for
// this frame. A window key takes precedence over queued actions.
func (a *App) present(frame *gocv.Mat, v ui.View) input.Action {
	a.overlay.Draw(frame, v)
	if a.config.Frames != nil {
		a.config.Frames.Set(frame)
	}

	if action := input.FromKey(a.config.Display.Show(frame)); action != input.None {
		return action
	}
	return a.actions.Poll()
}
