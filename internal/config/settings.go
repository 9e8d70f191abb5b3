// Package config loads and validates faceaim settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"net"
	"os"
	"path/filepath"
)

// Control mode names accepted by DefaultControlMode.
const (
	ModeMouse = "mouse"
	ModeStick = "stick"
)

// Pose filter names accepted by PoseFilter.
const (
	PoseFilterNone   = "none"
	PoseFilterKalman = "kalman"
)

// maxFileSize caps the settings file size.
const maxFileSize = 1 << 20

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// BGR is an overlay color in blue, green, red order.
type BGR [3]uint8

// RGBA converts the color for gocv drawing calls.
func (c BGR) RGBA() color.RGBA {
	return color.RGBA{R: c[2], G: c[1], B: c[0], A: 0}
}

// Settings holds every recognized option. Keys omitted from a settings file
// keep their default values.
type Settings struct {
	// Control
	DefaultControlMode string  `json:"default_control_mode"` // "stick" or "mouse"
	ResX               int     `json:"res_x"`                // horizontal screen resolution
	ResY               int     `json:"res_y"`                // vertical screen resolution
	DeadzoneThreshold  float64 `json:"controller_deadzone_threshold"`
	StickRefreshRate   float64 `json:"stick_refresh_rate"` // Hz
	MouseRefreshRate   float64 `json:"mouse_refresh_rate"` // Hz
	TurnSpeedH         float64 `json:"turn_speed_h"`
	TurnSpeedV         float64 `json:"turn_speed_v"`
	MoveSpeed          float64 `json:"move_speed"`
	MoveSmoothing      int     `json:"move_smoothing"` // frames buffered by the mouse smoother

	// Overlay colors
	MarkerColor    BGR `json:"marker_color_bgr"`
	GazeLineColor  BGR `json:"gaze_line_color_bgr"`
	DeadzoneColor  BGR `json:"deadzone_color_bgr"`
	LandmarksColor BGR `json:"facial_landmarks_color_bgr"`

	// Capture and tracking
	CameraID      int    `json:"camera_id"`
	Mirror        bool   `json:"mirror"`
	PoseFilter    string `json:"pose_filter"`
	LandmarkModel string `json:"landmark_model"`

	// Surfaces
	ListenAddr string `json:"listen_addr"` // loopback only; empty disables the status server
	DataDir    string `json:"data_dir"`    // empty disables the session journal
	Tray       bool   `json:"tray"`
	LogLevel   string `json:"log_level"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		DefaultControlMode: ModeStick,
		ResX:               2560,
		ResY:               1440,
		DeadzoneThreshold:  0.30,
		StickRefreshRate:   250,
		MouseRefreshRate:   250,
		TurnSpeedH:         35,
		TurnSpeedV:         30,
		MoveSpeed:          80,
		MoveSmoothing:      4,

		MarkerColor:    BGR{255, 255, 0},
		GazeLineColor:  BGR{255, 255, 0},
		DeadzoneColor:  BGR{0, 255, 0},
		LandmarksColor: BGR{0, 0, 255},

		CameraID:      0,
		Mirror:        true,
		PoseFilter:    PoseFilterNone,
		LandmarkModel: "shape_predictor_68_face_landmarks.dat",

		ListenAddr: "127.0.0.1:8080",
		DataDir:    defaultDataDir(),
		Tray:       false,
		LogLevel:   "info",
	}
}

// Load reads a JSON settings file on top of DefaultSettings and validates
// the result.
func Load(path string) (Settings, error) {
	s := DefaultSettings()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return s, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return s, fmt.Errorf("stat settings file: %w", err)
	}
	if info.Size() > maxFileSize {
		return s, fmt.Errorf("settings file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return s, fmt.Errorf("read settings file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings file: %w", err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks that the settings describe a usable configuration.
func (s Settings) Validate() error {
	switch s.DefaultControlMode {
	case ModeMouse, ModeStick:
	default:
		return fmt.Errorf("%w: unknown control mode %q", ErrInvalid, s.DefaultControlMode)
	}

	if s.ResX <= 0 || s.ResY <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalid, s.ResX, s.ResY)
	}
	if s.DeadzoneThreshold < 0 || s.DeadzoneThreshold >= 1 {
		return fmt.Errorf("%w: deadzone threshold must be in [0, 1), got %v", ErrInvalid, s.DeadzoneThreshold)
	}
	if s.StickRefreshRate <= 0 || s.MouseRefreshRate <= 0 {
		return fmt.Errorf("%w: refresh rates must be positive", ErrInvalid)
	}
	if s.MoveSmoothing < 0 {
		return fmt.Errorf("%w: move smoothing must not be negative, got %d", ErrInvalid, s.MoveSmoothing)
	}

	if s.ListenAddr != "" {
		if err := checkLoopback(s.ListenAddr); err != nil {
			return fmt.Errorf("%w: listen_addr: %v", ErrInvalid, err)
		}
	}

	switch s.PoseFilter {
	case "", PoseFilterNone, PoseFilterKalman:
	default:
		return fmt.Errorf("%w: unknown pose filter %q", ErrInvalid, s.PoseFilter)
	}

	return nil
}

// checkLoopback accepts host:port addresses on the loopback interface.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%q is not a loopback address", host)
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".faceaim")
}
