package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
)

// ActionHandler accepts remote control actions and forwards them to the
// control loop.
type ActionHandler struct {
	queue *input.Queue
}

// NewActionHandler creates a new ActionHandler pushing onto q.
func NewActionHandler(q *input.Queue) *ActionHandler {
	return &ActionHandler{queue: q}
}

type actionRequest struct {
	Action string `json:"action"`
}

type actionResponse struct {
	Action string `json:"action"`
	Queued bool   `json:"queued"`
}

// ServeHTTP handles POST /api/actions.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action, err := input.Parse(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Confirm only means something to a calibration prompt, which reads the
	// window keyboard.
	if action == input.Confirm {
		writeError(w, http.StatusBadRequest, "confirm is only accepted from the preview window")
		return
	}

	if !h.queue.Push(action) {
		log.Warn("action dropped", "action", action.String(), "source", "http")
		writeError(w, http.StatusServiceUnavailable, "Action queue is full")
		return
	}

	writeJSON(w, http.StatusAccepted, actionResponse{Action: action.String(), Queued: true})
}
