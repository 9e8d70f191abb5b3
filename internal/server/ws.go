package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/faceaim/internal/log"
)

// DefaultStateInterval is how often status is pushed to websocket clients.
const DefaultStateInterval = 100 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes Status snapshots to websocket clients.
type StateHandler struct {
	source   StatusSource
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewStateHandler creates a StateHandler and starts broadcasting.
func NewStateHandler(source StatusSource, interval time.Duration) *StateHandler {
	h := &StateHandler{
		source:   source,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		done:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clog := log.With("client", r.RemoteAddr)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		clog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	clog.Debug("state client connected")

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		clog.Debug("state client disconnected")
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting.
func (h *StateHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// broadcast sends status to all connected clients.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		msg, err := json.Marshal(h.source.Status())
		if err != nil {
			log.Error("encode status", "error", err)
			continue
		}

		// Writes are serialized by the write lock; the handler goroutines
		// only read.
		h.mu.Lock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", "error", err)
			}
		}
		h.mu.Unlock()
	}
}
