// Package app runs faceaim: it opens the camera, walks the user through
// calibration and then feeds tracked pose points to the active controller
// until the user quits.
package app

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/calibrate"
	"github.com/ayusman/faceaim/internal/capture"
	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/control"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/inject"
	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
	"github.com/ayusman/faceaim/internal/pose"
	"github.com/ayusman/faceaim/internal/server"
	"github.com/ayusman/faceaim/internal/store"
	"github.com/ayusman/faceaim/internal/ui"
)

// Phases reported in Status.
const (
	PhaseIdle        = "idle"
	PhaseCalibrating = "calibrating"
	PhaseRunning     = "running"
	PhaseStopped     = "stopped"
)

// Session end reasons.
const (
	EndQuit      = "quit"
	EndCancelled = "cancelled"
	EndError     = "error"
)

// ErrNotCalibrated is returned by Run before a successful Calibrate.
var ErrNotCalibrated = errors.New("not calibrated")

// Tracker turns camera frames into observations.
type Tracker interface {
	Track(frame *gocv.Mat) (pose.Observation, error)
}

// Config holds the collaborators of an App. Store, Actions, Frames and
// OnChange are optional.
type Config struct {
	Settings config.Settings
	Debug    bool

	Camera   capture.Camera
	Tracker  Tracker
	Display  ui.Display
	Injector inject.Injector

	Store    *store.Store
	Actions  *input.Queue
	Frames   *server.FrameBuffer
	OnChange func(server.Status)
}

// App is the control loop.
type App struct {
	config  Config
	overlay *ui.Overlay
	box     *control.Mailbox
	actions *input.Queue

	mu         sync.RWMutex
	phase      string
	mode       control.Mode
	paused     bool
	textHidden bool
	calibrated bool
	result     calibrate.Result
	lastObs    pose.Observation
	sessionID  string
	endReason  string
	supervisor *control.Supervisor

	// Main loop only.
	detectFailing bool
	deferred      []input.Action
}

// New creates an App. The camera is not opened until Open.
func New(cfg Config) (*App, error) {
	if cfg.Camera == nil || cfg.Tracker == nil || cfg.Display == nil || cfg.Injector == nil {
		return nil, errors.New("app: camera, tracker, display and injector are required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	mode, err := control.ParseMode(cfg.Settings.DefaultControlMode)
	if err != nil {
		return nil, err
	}

	actions := cfg.Actions
	if actions == nil {
		actions = input.NewQueue(input.DefaultQueueSize)
	}

	return &App{
		config:  cfg,
		overlay: ui.NewOverlay(cfg.Settings, cfg.Debug),
		box:     control.NewMailbox(),
		actions: actions,
		phase:   PhaseIdle,
		mode:    mode,
		lastObs: pose.Observation{Nose: coords.NoFace, Pose: coords.NoFace},
	}, nil
}

// Actions returns the queue asynchronous sources push onto.
func (a *App) Actions() *input.Queue {
	return a.actions
}

// Open acquires the camera and starts a journal session.
func (a *App) Open() error {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	log.Info("camera opened", "camera", a.config.Settings.CameraID)

	if a.config.Store != nil {
		sess, err := a.config.Store.Sessions().Start(string(a.mode))
		if err != nil {
			log.Warn("session journal unavailable", "error", err)
		} else {
			a.mu.Lock()
			a.sessionID = sess.ID
			a.mu.Unlock()
			log.Debug("session started", "session", sess.ID)
		}
	}
	return nil
}

// Close stops the controller and releases the camera and the display. The
// journal session is ended with the recorded end reason.
func (a *App) Close() error {
	a.mu.Lock()
	sup := a.supervisor
	a.phase = PhaseStopped
	reason := a.endReason
	if reason == "" {
		reason = EndQuit
	}
	sessionID := a.sessionID
	a.mu.Unlock()

	if sup != nil {
		sup.Stop()
	}
	a.box.Drain()

	var errs []error
	if err := a.config.Camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if err := a.config.Display.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close display: %w", err))
	}

	if a.config.Store != nil && sessionID != "" {
		if err := a.config.Store.Sessions().End(sessionID, reason); err != nil {
			log.Warn("end session", "session", sessionID, "error", err)
		}
	}

	a.notify()
	log.Info("stopped", "reason", reason)
	return errors.Join(errs...)
}

// Status returns a snapshot for the status server.
func (a *App) Status() server.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := server.Status{
		Phase:      a.phase,
		Mode:       string(a.mode),
		Paused:     a.paused,
		TextHidden: a.textHidden,
		FaceFound:  a.lastObs.Found(),
		SessionID:  a.sessionID,
	}
	if a.calibrated {
		space := a.result.Space
		st.Space = &space
		st.Deadzone = a.result.DeadzoneRadius
	}
	if a.supervisor != nil {
		if s, ok := a.supervisor.State(); ok {
			st.Controller = &s
		}
	}
	return st
}

// Calibration returns the last successful calibration.
func (a *App) Calibration() (calibrate.Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result, a.calibrated
}

func (a *App) setPhase(phase string) {
	a.mu.Lock()
	a.phase = phase
	a.mu.Unlock()
	a.notify()
}

func (a *App) setEndReason(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.endReason == "" {
		a.endReason = reason
	}
}

func (a *App) notify() {
	if a.config.OnChange != nil {
		a.config.OnChange(a.Status())
	}
}

// journal appends an event to the current session. Failures are logged and
// otherwise ignored.
func (a *App) journal(kind store.EventKind, data any) {
	if a.config.Store == nil {
		return
	}
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()
	if sessionID == "" {
		return
	}
	if _, err := a.config.Store.Events().Append(sessionID, kind, data); err != nil {
		log.Warn("journal event", "kind", string(kind), "error", err)
	}
}
