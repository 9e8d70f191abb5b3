// Package input maps user input from the preview window, the tray and the
// status server onto a small set of actions.
package input

import "fmt"

// Action is a user command understood by the calibration and control loops.
type Action int

const (
	// None means no input this iteration.
	None Action = iota
	// Confirm captures a calibration sample. Outside calibration it toggles pause.
	Confirm
	// Quit ends the program from any state.
	Quit
	// ToggleMode switches between mouse and stick control.
	ToggleMode
	// TogglePause stops or resumes movement output.
	TogglePause
	// ToggleOverlay hides or shows the help text.
	ToggleOverlay
)

// Key codes reported by the preview window.
const (
	KeyTab   = 9
	KeyEsc   = 27
	KeySpace = 32
	KeyH     = 'H'
	KeyLowH  = 'h'
)

var actionNames = map[Action]string{
	None:          "none",
	Confirm:       "confirm",
	Quit:          "quit",
	ToggleMode:    "toggle-mode",
	TogglePause:   "toggle-pause",
	ToggleOverlay: "toggle-overlay",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Parse converts a wire name back into an Action.
func Parse(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name && a != None {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", name)
}

// FromKey maps a window key code to an action. Unbound keys map to None.
func FromKey(key int) Action {
	switch key {
	case KeyEsc:
		return Quit
	case KeyTab:
		return ToggleMode
	case KeySpace:
		return Confirm
	case KeyH, KeyLowH:
		return ToggleOverlay
	}
	return None
}
