// Package control turns pose points into pointer movement.
//
// A controller runs on its own goroutine at a fixed cadence, polls the
// Mailbox for the newest pose point and drives an inject.Injector. Exactly
// one controller is active at a time; the Supervisor owns its lifecycle.
package control

import (
	"fmt"
	"time"

	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/coords"
)

// Mode selects the control scheme.
type Mode string

const (
	// ModeMouse moves the pointer to an absolute screen target.
	ModeMouse Mode = config.ModeMouse
	// ModeStick deflects the pointer like an analog stick.
	ModeStick Mode = config.ModeStick
)

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMouse, ModeStick:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown control mode %q", s)
}

// Other returns the mode a toggle switches to.
func (m Mode) Other() Mode {
	if m == ModeMouse {
		return ModeStick
	}
	return ModeMouse
}

func (m Mode) String() string {
	return string(m)
}

// State is a snapshot of what a controller is doing.
type State struct {
	Mode   Mode         `json:"mode"`
	Target coords.Point `json:"target"`
	Moving bool         `json:"moving"`
}

// Controller is a movement generator run by the Supervisor.
type Controller interface {
	// Mode reports which scheme the controller implements.
	Mode() Mode

	// Run executes the control loop until stop is closed. It must observe
	// stop within one cycle.
	Run(stop <-chan struct{})

	// State returns the current target and whether movement is enabled.
	State() State
}

// periodFor converts a refresh rate in Hz into a cycle period.
func periodFor(hz float64) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / hz)
}

// runEvery calls step at a fixed cadence until stop is closed. Stop is
// checked before each cycle; a cycle shorter than period sleeps the
// remainder, an overrun starts the next cycle immediately.
func runEvery(period time.Duration, stop <-chan struct{}, step func()) {
	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}

		start := time.Now()
		step()

		rest := period - time.Since(start)
		if rest <= 0 {
			continue
		}
		timer.Reset(rest)
		select {
		case <-stop:
			return
		case <-timer.C:
		}
	}
}
