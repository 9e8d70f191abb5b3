package input

// DefaultQueueSize is the number of pending actions a Queue holds.
const DefaultQueueSize = 16

// Queue collects actions from asynchronous sources such as the tray menu and
// the status server. The main loop drains it without blocking.
type Queue struct {
	ch chan Action
}

// NewQueue creates a Queue holding up to size pending actions.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Action, size)}
}

// Push enqueues an action. It reports false when the queue is full and the
// action was dropped.
func (q *Queue) Push(a Action) bool {
	if a == None {
		return true
	}
	select {
	case q.ch <- a:
		return true
	default:
		return false
	}
}

// Poll returns the oldest pending action, or None when the queue is empty.
func (q *Queue) Poll() Action {
	select {
	case a := <-q.ch:
		return a
	default:
		return None
	}
}
