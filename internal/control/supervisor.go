package control

import (
	"errors"
	"sync"

	"github.com/ayusman/faceaim/internal/log"
)

// ErrRunning is returned by Start when a controller is already active.
var ErrRunning = errors.New("controller already running")

// Factory builds a fresh controller for a mode. Each call must return a new
// instance so that per-run state such as smoothing history starts clean.
type Factory func(Mode) Controller

// Supervisor runs at most one controller at a time.
type Supervisor struct {
	factory Factory

	mu     sync.Mutex
	active Controller
	stop   chan struct{}
	done   chan struct{}
}

// NewSupervisor creates a Supervisor that builds controllers with factory.
func NewSupervisor(factory Factory) *Supervisor {
	return &Supervisor{factory: factory}
}

// Start launches a fresh controller for mode on its own goroutine.
func (s *Supervisor) Start(mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return ErrRunning
	}
	s.startLocked(mode)
	return nil
}

// Stop signals the active controller and waits until its goroutine has
// returned. Stopping with no active controller is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Switch stops the active controller, waits for it to exit and starts a
// fresh controller for the other mode. It returns the new mode. With no
// active controller it starts the default mouse controller.
func (s *Supervisor) Switch() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ModeMouse
	if s.active != nil {
		next = s.active.Mode().Other()
	}
	s.stopLocked()
	s.startLocked(next)
	return next
}

// Mode returns the active mode, or false if nothing is running.
func (s *Supervisor) Mode() (Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return "", false
	}
	return s.active.Mode(), true
}

// State returns the active controller's state, or false if nothing is
// running.
func (s *Supervisor) State() (State, bool) {
	s.mu.Lock()
	c := s.active
	s.mu.Unlock()
	if c == nil {
		return State{}, false
	}
	return c.State(), true
}

func (s *Supervisor) startLocked(mode Mode) {
	c := s.factory(mode)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		c.Run(stop)
	}()

	s.active, s.stop, s.done = c, stop, done
	log.Info("controller started", "mode", mode)
}

func (s *Supervisor) stopLocked() {
	if s.active == nil {
		return
	}
	close(s.stop)
	<-s.done
	log.Info("controller stopped", "mode", s.active.Mode())
	s.active, s.stop, s.done = nil, nil, nil
}
