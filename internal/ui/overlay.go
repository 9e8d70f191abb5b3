// Package ui draws the preview window: the mirrored camera frame with the
// key help, calibration prompts and the tracking overlay.
package ui

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/pose"
)

// Help texts.
const (
	QuitText     = "'ESC' to quit"
	PauseText    = "'SPACEBAR' to pause control input"
	UnpauseText  = "'SPACEBAR' to resume control input"
	HideText     = "'H' to hide controls"
	RejectedText = "COULDN'T FIND FACE, TRY AGAIN"
)

// SwitchModeText is the mode toggle hint for the active mode.
func SwitchModeText(mode string) string {
	return fmt.Sprintf("'TAB' to switch control modes | %s", mode)
}

// CalibrationText asks the user to aim at corner.
func CalibrationText(corner string) string {
	return fmt.Sprintf("CALIBRATING: Point your nose at the %s corner of your monitor, then press spacebar...", corner)
}

const (
	fontFace   = gocv.FontHersheyPlain
	fontScale  = 0.85
	fontThick  = 1
	lineFactor = 1.4
	markerSize = 20
)

var (
	textColor  = color.RGBA{}
	debugColor = color.RGBA{R: 255}
	origin     = image.Pt(10, 10)
)

// View is everything the overlay needs to know about one frame.
type View struct {
	Calibrating bool
	Corner      string // calibration target, while calibrating
	Rejected    bool   // last calibration sample had no face

	Mode   string
	Paused bool

	Observation pose.Observation
	Space       coords.Space // zero until calibrated
	Deadzone    float64
}

// Overlay renders Views onto frames.
type Overlay struct {
	ShowText bool
	Debug    bool

	marker    color.RGBA
	gazeLine  color.RGBA
	deadzone  color.RGBA
	landmarks color.RGBA
}

// NewOverlay creates an Overlay using the configured colors.
func NewOverlay(s config.Settings, debug bool) *Overlay {
	return &Overlay{
		ShowText:  true,
		Debug:     debug,
		marker:    s.MarkerColor.RGBA(),
		gazeLine:  s.GazeLineColor.RGBA(),
		deadzone:  s.DeadzoneColor.RGBA(),
		landmarks: s.LandmarksColor.RGBA(),
	}
}

// ToggleText shows or hides the help text.
func (o *Overlay) ToggleText() {
	o.ShowText = !o.ShowText
}

// Lines returns the text lines drawn for v, top to bottom.
func (o *Overlay) Lines(v View) []string {
	if v.Calibrating {
		lines := []string{QuitText, CalibrationText(v.Corner)}
		if v.Rejected {
			lines = append(lines, RejectedText)
		}
		return lines
	}

	if !o.ShowText {
		return nil
	}
	pause := PauseText
	if v.Paused {
		pause = UnpauseText
	}
	return []string{QuitText, SwitchModeText(v.Mode), pause, HideText}
}

// Draw renders v onto frame in place.
func (o *Overlay) Draw(frame *gocv.Mat, v View) {
	o.drawText(frame, o.Lines(v))

	if v.Calibrating || !v.Observation.Found() {
		return
	}
	obs := v.Observation

	if obs.Face != nil {
		for _, p := range obs.Face.Landmarks {
			gocv.Circle(frame, toPixel(p), 1, o.landmarks, -1)
		}
	}

	posePt := toPixel(obs.Pose)
	switch v.Mode {
	case config.ModeStick:
		gocv.Line(frame, toPixel(obs.Nose), posePt, o.gazeLine, 2)
		gocv.Circle(frame, toPixel(v.Space.Center), int(v.Deadzone), o.deadzone, 2)
	case config.ModeMouse:
		drawCross(frame, posePt, o.marker)
	}

	if o.Debug {
		gocv.PutText(frame, fmt.Sprintf("X: %v", obs.Pose.X), image.Pt(20, 100), gocv.FontHersheySimplex, 0.75, debugColor, 2)
		gocv.PutText(frame, fmt.Sprintf("Y: %v", obs.Pose.Y), image.Pt(20, 130), gocv.FontHersheySimplex, 0.75, debugColor, 2)
	}
}

func (o *Overlay) drawText(frame *gocv.Mat, lines []string) {
	if len(lines) == 0 {
		return
	}
	height := gocv.GetTextSize(QuitText, fontFace, fontScale, fontThick).Y
	step := int(float64(height) * lineFactor)

	pt := origin
	for _, line := range lines {
		gocv.PutText(frame, line, pt, fontFace, fontScale, textColor, fontThick)
		pt.Y += step
	}
}

func drawCross(frame *gocv.Mat, at image.Point, c color.RGBA) {
	half := markerSize / 2
	gocv.Line(frame, image.Pt(at.X-half, at.Y), image.Pt(at.X+half, at.Y), c, 2)
	gocv.Line(frame, image.Pt(at.X, at.Y-half), image.Pt(at.X, at.Y+half), c, 2)
}

func toPixel(p coords.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}
