package control

import (
	"sync"
	"time"

	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/inject"
)

// Mouse steers the pointer toward the screen position the head points at.
// Targets are mapped to screen pixels and smoothed; each cycle the pointer
// moves a fraction of the remaining distance.
type Mouse struct {
	space  coords.Space
	resX   int
	resY   int
	period time.Duration
	speed  float64

	box      *Mailbox
	injector inject.Injector
	smoother *Smoother

	mu     sync.Mutex
	target coords.Point
	moving bool
}

// NewMouse creates a mouse-mode controller bound to a calibrated space.
func NewMouse(space coords.Space, s config.Settings, box *Mailbox, injector inject.Injector) *Mouse {
	return &Mouse{
		space:    space,
		resX:     s.ResX,
		resY:     s.ResY,
		period:   periodFor(s.MouseRefreshRate),
		speed:    s.MoveSpeed,
		box:      box,
		injector: injector,
		smoother: NewSmoother(s.MoveSmoothing),
		target:   space.Center,
	}
}

// Mode implements Controller.
func (m *Mouse) Mode() Mode { return ModeMouse }

// Run implements Controller.
func (m *Mouse) Run(stop <-chan struct{}) {
	runEvery(m.period, stop, m.step)
}

// State implements Controller.
func (m *Mouse) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Mode: ModeMouse, Target: m.target, Moving: m.moving}
}

func (m *Mouse) step() {
	m.mu.Lock()
	if p, ok := m.box.Poll(); ok {
		if p.IsNoFace() {
			m.target = m.space.Center
			m.moving = false
		} else {
			pix := coords.ToResolution(p, m.space, m.resX, m.resY)
			m.target = m.smoother.Update(pix)
			m.moving = true
		}
	}
	target, moving := m.target, m.moving
	m.mu.Unlock()

	if !moving {
		return
	}

	x, y := m.injector.Position()
	factor := m.speed * m.period.Seconds()
	dx := int((target.X - float64(x)) * factor)
	dy := int((target.Y - float64(y)) * factor)
	if dx == 0 && dy == 0 {
		return
	}
	m.injector.MoveRelative(dx, dy)
}
