package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/coords"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	faces []Face
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []Face) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.faces, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FrontalFace returns a preset Face looking straight at a 640x480 camera,
// roughly centered in the frame.
func FrontalFace() Face {
	// Landmark layout on a 10x10 unit grid, scaled and offset into the frame.
	grid := [NumLandmarks][2]float64{
		// jaw
		{0, 3}, {0.1, 4.3}, {0.3, 5.6}, {0.6, 6.8}, {1.1, 7.9}, {1.8, 8.8}, {2.7, 9.5}, {3.8, 9.9},
		{5, 10},
		{6.2, 9.9}, {7.3, 9.5}, {8.2, 8.8}, {8.9, 7.9}, {9.4, 6.8}, {9.7, 5.6}, {9.9, 4.3}, {10, 3},
		// brows
		{1, 1.8}, {1.7, 1.3}, {2.5, 1.2}, {3.3, 1.3}, {4.1, 1.6},
		{5.9, 1.6}, {6.7, 1.3}, {7.5, 1.2}, {8.3, 1.3}, {9, 1.8},
		// nose bridge and base
		{5, 2.6}, {5, 3.5}, {5, 4.4}, {5, 5.3},
		{4, 5.9}, {4.5, 6.1}, {5, 6.2}, {5.5, 6.1}, {6, 5.9},
		// eyes
		{1.9, 2.9}, {2.5, 2.6}, {3.2, 2.6}, {3.8, 3}, {3.2, 3.2}, {2.5, 3.2},
		{6.2, 3}, {6.8, 2.6}, {7.5, 2.6}, {8.1, 2.9}, {7.5, 3.2}, {6.8, 3.2},
		// mouth
		{3.3, 7.6}, {3.9, 7.2}, {4.6, 7}, {5, 7.1}, {5.4, 7}, {6.1, 7.2}, {6.7, 7.6},
		{6.1, 8.1}, {5.4, 8.3}, {5, 8.3}, {4.6, 8.3}, {3.9, 8.1},
		{3.5, 7.6}, {4.6, 7.4}, {5, 7.4}, {5.4, 7.4}, {6.5, 7.6},
		{5.4, 7.8}, {5, 7.9}, {4.6, 7.8},
	}

	const scale, offX, offY = 20.0, 220.0, 140.0

	f := Face{Score: 0.99}
	for i, g := range grid {
		f.Landmarks[i] = coords.Point{X: offX + g[0]*scale, Y: offY + g[1]*scale}
	}
	f.Rect = image.Rect(int(offX), int(offY), int(offX+10*scale), int(offY+10*scale))
	return f
}
