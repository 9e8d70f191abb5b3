// Package tray provides a system tray menu for faceaim. Menu clicks are
// pushed as input actions; the tray never changes control state itself.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
)

// Tray represents the system tray application.
type Tray struct {
	queue *input.Queue

	mu     sync.RWMutex
	mode   string
	paused bool
	hidden bool

	// Menu items stored for later updates
	menuPause   *systray.MenuItem
	menuMode    *systray.MenuItem
	menuOverlay *systray.MenuItem
}

// New creates a new Tray that pushes menu actions onto q.
func New(q *input.Queue, mode string) *Tray {
	return &Tray{queue: q, mode: mode}
}

// Run starts the system tray application.
// This function blocks until Quit is called or the Quit item is clicked.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(title(t.mode))
	systray.SetTooltip("Face Aimer head tracking")

	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Stop or resume control input")
	t.menuMode = systray.AddMenuItem("Switch mode", "Switch between mouse and stick control")
	t.menuOverlay = systray.AddMenuItem(overlayTitle(t.hidden), "Hide or show the help text")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Face Aimer")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuPause.ClickedCh:
				t.push(input.TogglePause)
			case <-t.menuMode.ClickedCh:
				t.push(input.ToggleMode)
			case <-t.menuOverlay.ClickedCh:
				t.push(input.ToggleOverlay)
			case <-menuQuit.ClickedCh:
				t.push(input.Quit)
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	log.Debug("tray exited")
}

func (t *Tray) push(a input.Action) {
	if !t.queue.Push(a) {
		log.Warn("action dropped", "action", a.String(), "source", "tray")
	}
}

// SetMode updates the tray title with the active control mode.
func (t *Tray) SetMode(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == mode {
		return
	}
	t.mode = mode
	if t.menuMode != nil {
		systray.SetTitle(title(mode))
	}
}

// SetPaused updates the pause item label.
func (t *Tray) SetPaused(paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused == paused {
		return
	}
	t.paused = paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
}

// SetOverlayHidden updates the overlay item label.
func (t *Tray) SetOverlayHidden(hidden bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden == hidden {
		return
	}
	t.hidden = hidden
	if t.menuOverlay != nil {
		t.menuOverlay.SetTitle(overlayTitle(hidden))
	}
}

// Mode returns the mode shown in the title.
func (t *Tray) Mode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func title(mode string) string {
	if mode == "" {
		return "Face Aimer"
	}
	return "Face Aimer | " + mode
}

func pauseTitle(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}

func overlayTitle(hidden bool) string {
	if hidden {
		return "Show controls"
	}
	return "Hide controls"
}
