package control

import (
	"sync"
	"time"

	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/inject"
)

// Stick treats head deflection from the pose-space center like an analog
// stick: outside the deadzone the pointer turns at a rate proportional to
// the deflection, every cycle, until the head returns or the face is lost.
type Stick struct {
	space    coords.Space
	deadzone float64
	period   time.Duration
	turnH    float64
	turnV    float64

	box      *Mailbox
	injector inject.Injector

	mu     sync.Mutex
	target coords.Point
	moving bool
}

// NewStick creates a stick-mode controller bound to a calibrated space and
// deadzone radius.
func NewStick(space coords.Space, deadzone float64, s config.Settings, box *Mailbox, injector inject.Injector) *Stick {
	return &Stick{
		space:    space,
		deadzone: deadzone,
		period:   periodFor(s.StickRefreshRate),
		turnH:    s.TurnSpeedH,
		turnV:    s.TurnSpeedV,
		box:      box,
		injector: injector,
		target:   space.Center,
	}
}

// Mode implements Controller.
func (c *Stick) Mode() Mode { return ModeStick }

// Run implements Controller.
func (c *Stick) Run(stop <-chan struct{}) {
	runEvery(c.period, stop, c.step)
}

// State implements Controller.
func (c *Stick) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Mode: ModeStick, Target: c.target, Moving: c.moving}
}

func (c *Stick) step() {
	c.mu.Lock()
	if p, ok := c.box.Poll(); ok {
		if p.IsNoFace() {
			c.target = c.space.Center
			c.moving = false
		} else {
			c.target = p
			c.moving = true
		}
	}
	target, moving := c.target, c.moving
	c.mu.Unlock()

	if !moving {
		return
	}

	d, ok := coords.Deflection(target, c.space, c.deadzone)
	if !ok {
		return
	}
	dx := int(d.X * c.turnH)
	dy := int(d.Y * c.turnV)
	if dx == 0 && dy == 0 {
		return
	}
	c.injector.MoveRelative(dx, dy)
}
