package inject

import (
	"sync"
	"time"
)

// Move is one recorded MoveRelative call.
type Move struct {
	Source string
	DX, DY int
	At     time.Time
}

// Recorder is an Injector that logs every move with a timestamp and keeps a
// virtual pointer position. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	source string
	x, y   int
	moves  []Move
}

// NewRecorder creates a Recorder with the virtual pointer at x, y.
func NewRecorder(x, y int) *Recorder {
	return &Recorder{x: x, y: y}
}

// Tagged returns an Injector that records into r under the given source name
// while sharing r's pointer position.
func (r *Recorder) Tagged(source string) Injector {
	return &taggedRecorder{rec: r, source: source}
}

// MoveRelative records the move and updates the virtual pointer.
func (r *Recorder) MoveRelative(dx, dy int) {
	r.record(r.source, dx, dy)
}

// Position returns the virtual pointer position.
func (r *Recorder) Position() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y
}

// SetPosition places the virtual pointer.
func (r *Recorder) SetPosition(x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x, r.y = x, y
}

// Moves returns a copy of the recorded moves in call order.
func (r *Recorder) Moves() []Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Move, len(r.moves))
	copy(out, r.moves)
	return out
}

// Len returns the number of recorded moves.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.moves)
}

// Reset clears the recorded moves.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = nil
}

func (r *Recorder) record(source string, dx, dy int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x += dx
	r.y += dy
	r.moves = append(r.moves, Move{Source: source, DX: dx, DY: dy, At: time.Now()})
}

type taggedRecorder struct {
	rec    *Recorder
	source string
}

func (t *taggedRecorder) MoveRelative(dx, dy int) { t.rec.record(t.source, dx, dy) }
func (t *taggedRecorder) Position() (int, int)    { return t.rec.Position() }
