package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/log"
)

// ErrServiceUnavailable is returned when the landmark helper script cannot
// be found.
var ErrServiceUnavailable = errors.New("landmark service unavailable")

const serviceScript = "landmark_service.py"

// LandmarkService implements Detector using a Python dlib subprocess.
//
// Frames are sent as a 4-byte big-endian length followed by a grayscale
// JPEG; the service answers each frame with one JSON line.
type LandmarkService struct {
	config  Config
	command func() *exec.Cmd

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewLandmarkService creates a new landmark service detector.
// The Python process is started lazily on first detection.
func NewLandmarkService(config Config) (*LandmarkService, error) {
	scriptPath := findServiceScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("%w: %s not found", ErrServiceUnavailable, serviceScript)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	s := &LandmarkService{config: config}
	s.command = func() *exec.Cmd {
		pythonPath := findVenvPython()
		if pythonPath == "" {
			pythonPath = "python3"
		}
		return exec.Command(pythonPath, scriptPath,
			"--model", config.ModelPath,
			"--upsample", strconv.Itoa(config.Upsample),
			"--max-faces", strconv.Itoa(config.MaxFaces),
		)
	}
	return s, nil
}

// Detect analyzes a frame and returns detected faces.
func (s *LandmarkService) Detect(frame *gocv.Mat) ([]Face, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, gray)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return s.detectEncoded(buf.GetBytes())
}

// detectEncoded sends one encoded frame and reads the reply.
func (s *LandmarkService) detectEncoded(data []byte) ([]Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	if err := writeFrame(s.stdin, data); err != nil {
		s.kill()
		return nil, err
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		s.kill()
		return nil, fmt.Errorf("read response: %w", err)
	}

	faces, err := parseResponse(line)
	if err != nil {
		return nil, err
	}

	s.lastUsed = time.Now()
	s.resetIdleTimer()

	return faces, nil
}

// Close shuts down the Python process.
func (s *LandmarkService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *LandmarkService) ensureStarted() error {
	if s.started {
		return nil
	}

	s.cmd = s.command()

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	s.lastUsed = time.Now()
	log.Info("landmark service started", "pid", s.cmd.Process.Pid)

	return nil
}

func (s *LandmarkService) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	log.Info("landmark service stopped")

	return err
}

// kill tears the process down after a broken exchange so the next frame
// starts a fresh one.
func (s *LandmarkService) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	if err := s.shutdown(); err != nil {
		log.Debug("landmark service exit", "error", err)
	}
}

func (s *LandmarkService) resetIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(s.config.IdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown()
	})
}

// writeFrame writes data with its 4-byte big-endian length prefix.
func writeFrame(w io.Writer, data []byte) error {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// parseResponse decodes one JSON reply line into faces.
func parseResponse(line []byte) ([]Face, error) {
	var response struct {
		Faces []jsonFace `json:"faces"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", response.Error)
	}

	faces := make([]Face, 0, len(response.Faces))
	for _, f := range response.Faces {
		if len(f.Points) != NumLandmarks {
			return nil, fmt.Errorf("parse response: got %d landmarks, want %d", len(f.Points), NumLandmarks)
		}
		faces = append(faces, f.toFace())
	}
	return faces, nil
}

func findServiceScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
		filepath.Join("..", "..", "scripts", serviceScript),
		filepath.Join(execDir, "scripts", serviceScript),
		filepath.Join(os.Getenv("HOME"), ".faceaim", "scripts", serviceScript),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	// Get executable directory to find project root
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".faceaim/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonFace represents the JSON structure from the Python service.
type jsonFace struct {
	Rect   jsonRect     `json:"rect"`
	Points [][2]float64 `json:"points"`
	Score  float64      `json:"score"`
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (f jsonFace) toFace() Face {
	face := Face{
		Rect:  image.Rect(f.Rect.X, f.Rect.Y, f.Rect.X+f.Rect.W, f.Rect.Y+f.Rect.H),
		Score: f.Score,
	}
	for i := 0; i < NumLandmarks && i < len(f.Points); i++ {
		face.Landmarks[i] = coords.Point{X: f.Points[i][0], Y: f.Points[i][1]}
	}
	return face
}
