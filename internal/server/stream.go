package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned by FrameBuffer.JPEG before the first frame is set.
var ErrNoFrame = errors.New("no frame available")

// FrameBuffer holds the latest annotated preview frame for streaming.
type FrameBuffer struct {
	mu    sync.Mutex
	frame gocv.Mat
	seq   uint64
}

// NewFrameBuffer creates an empty FrameBuffer. Close releases it.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{frame: gocv.NewMat()}
}

// Set copies frame into the buffer.
func (b *FrameBuffer) Set(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	frame.CopyTo(&b.frame)
	b.seq++
}

// Seq returns the number of frames set so far.
func (b *FrameBuffer) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// JPEG encodes the latest frame and returns it with its sequence number.
func (b *FrameBuffer) JPEG() ([]byte, uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq == 0 {
		return nil, 0, ErrNoFrame
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, b.frame)
	if err != nil {
		return nil, b.seq, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), b.seq, nil
}

// Close releases the buffered frame.
func (b *FrameBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame.Close()
}

// StreamHandler serves MJPEG frames from a FrameBuffer.
type StreamHandler struct {
	frames   *FrameBuffer
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames, interval: 66 * time.Millisecond} // ~15 FPS
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if h.frames.Seq() == last {
			continue
		}
		data, seq, err := h.frames.JPEG()
		if err != nil {
			continue
		}
		last = seq

		if err := writePart(w, data); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
