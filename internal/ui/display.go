package ui

import (
	"sync"

	"gocv.io/x/gocv"
)

// WindowTitle names the preview window.
const WindowTitle = "Face Aimer"

// Display shows annotated frames and reports key presses.
type Display interface {
	// Show presents frame and pumps window events for up to a millisecond.
	// It returns the key pressed, or -1.
	Show(frame *gocv.Mat) int
	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window. It must be used
// from a single goroutine.
type Window struct {
	win *gocv.Window
}

// NewWindow opens the preview window.
func NewWindow() *Window {
	w := gocv.NewWindow(WindowTitle)
	w.SetWindowProperty(gocv.WindowPropertyFullscreen, gocv.WindowNormal)
	return &Window{win: w}
}

// Show implements Display.
func (w *Window) Show(frame *gocv.Mat) int {
	w.win.IMShow(*frame)
	return w.win.WaitKey(1)
}

// Close implements Display.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless is a Display with no window. Keys can be injected for tests.
type Headless struct {
	mu     sync.Mutex
	keys   []int
	shown  int
	closed bool
}

// NewHeadless creates a Headless display.
func NewHeadless() *Headless {
	return &Headless{}
}

// PressKey queues a key to be returned by a later Show.
func (h *Headless) PressKey(key int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, key)
}

// Show implements Display.
func (h *Headless) Show(frame *gocv.Mat) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
	if len(h.keys) == 0 {
		return -1
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

// Shown returns how many frames were shown.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Close implements Display.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
