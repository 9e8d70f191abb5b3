package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for face landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the faces found in it with
	// their 68 landmarks in image pixels. Returns an empty slice if no face
	// is detected.
	Detect(frame *gocv.Mat) ([]Face, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// ModelPath is the dlib 68-point shape predictor file.
	ModelPath string

	// MaxFaces is the maximum number of faces to report (default: 1).
	MaxFaces int

	// Upsample is how many times the detector upsamples the image before
	// looking for faces. Higher values find smaller faces but run slower.
	Upsample int

	// IdleTimeout shuts the helper process down after this long without a
	// request (default: 30s).
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "shape_predictor_68_face_landmarks.dat",
		MaxFaces:    1,
		Upsample:    0,
		IdleTimeout: 30 * time.Second,
	}
}
