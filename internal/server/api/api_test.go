package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestActionHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantAction input.Action
	}{
		{"toggle mode", http.MethodPost, `{"action":"toggle-mode"}`, http.StatusAccepted, input.ToggleMode},
		{"toggle pause", http.MethodPost, `{"action":"toggle-pause"}`, http.StatusAccepted, input.TogglePause},
		{"toggle overlay", http.MethodPost, `{"action":"toggle-overlay"}`, http.StatusAccepted, input.ToggleOverlay},
		{"quit", http.MethodPost, `{"action":"quit"}`, http.StatusAccepted, input.Quit},
		{"confirm is window only", http.MethodPost, `{"action":"confirm"}`, http.StatusBadRequest, input.None},
		{"unknown action", http.MethodPost, `{"action":"jump"}`, http.StatusBadRequest, input.None},
		{"malformed body", http.MethodPost, `{`, http.StatusBadRequest, input.None},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed, input.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := input.NewQueue(4)
			h := NewActionHandler(q)

			req := httptest.NewRequest(tt.method, "/api/actions", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := q.Poll(); got != tt.wantAction {
				t.Errorf("queued action = %v, want %v", got, tt.wantAction)
			}
		})
	}
}

func TestActionHandler_QueueFull(t *testing.T) {
	q := input.NewQueue(1)
	q.Push(input.TogglePause)
	h := NewActionHandler(q)

	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewBufferString(`{"action":"quit"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSessionHandler(t *testing.T) {
	s := setupTestStore(t)
	h := NewSessionHandler(s)

	sess, err := s.Sessions().Start("mouse")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.Events().Append(sess.ID, store.EventModeSwitched, map[string]string{"mode": "stick"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Sessions().End(sess.ID, "quit"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Sessions) != 1 || resp.Sessions[0].ID != sess.ID {
			t.Fatalf("sessions = %+v, want one session %s", resp.Sessions, sess.ID)
		}
		if resp.Sessions[0].EndReason != "quit" || resp.Sessions[0].EndedAt == "" {
			t.Errorf("session = %+v, want ended with reason quit", resp.Sessions[0])
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions?limit=x", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/events", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp listEventsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Events) != 1 || resp.Events[0].Kind != string(store.EventModeSwitched) {
			t.Errorf("events = %+v, want one mode switch", resp.Events)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/events"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET after delete status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
