package control

import "github.com/ayusman/faceaim/internal/coords"

// Mailbox is a single-slot hand-off between the capture loop and the active
// controller. Put never blocks and replaces any unread point, so the
// controller always sees the newest pose.
type Mailbox struct {
	ch chan coords.Point
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan coords.Point, 1)}
}

// Put stores p, discarding any point the controller has not read yet.
func (m *Mailbox) Put(p coords.Point) {
	for {
		select {
		case m.ch <- p:
			return
		default:
		}
		// Slot is full: drop the stale point and retry.
		select {
		case <-m.ch:
		default:
		}
	}
}

// Poll returns the pending point, if any, without blocking.
func (m *Mailbox) Poll() (coords.Point, bool) {
	select {
	case p := <-m.ch:
		return p, true
	default:
		return coords.Point{}, false
	}
}

// Drain discards any pending point.
func (m *Mailbox) Drain() {
	m.Poll()
}
