package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names something that happened during a session.
type EventKind string

const (
	EventCalibrationRejected EventKind = "calibration_rejected"
	EventCalibrated          EventKind = "calibrated"
	EventModeSwitched        EventKind = "mode_switched"
	EventPaused              EventKind = "paused"
	EventResumed             EventKind = "resumed"
	EventOverlayToggled      EventKind = "overlay_toggled"
	EventQuit                EventKind = "quit"
)

// Event represents a journal entry stored in the database.
type Event struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	Kind      EventKind       `json:"kind"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventRepository provides append and query operations for events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records an event. data is encoded as JSON; nil stores an empty
// object.
func (r *EventRepository) Append(sessionID string, kind EventKind, data any) (*Event, error) {
	raw := json.RawMessage("{}")
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode event data: %w", err)
		}
		raw = b
	}

	e := &Event{
		SessionID: sessionID,
		Kind:      kind,
		Data:      raw,
		CreatedAt: time.Now(),
	}

	result, err := r.db.Exec(
		`INSERT INTO events (session_id, kind, data, created_at) VALUES (?, ?, ?, ?)`,
		e.SessionID, string(e.Kind), string(e.Data), e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListBySession retrieves all events of a session in the order they
// happened.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, data, created_at
		 FROM events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind, data string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		e.Data = json.RawMessage(data)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByKind returns how many events of each kind a session has.
func (r *EventRepository) CountByKind(sessionID string) (map[EventKind]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[EventKind(kind)] = n
	}

	return counts, rows.Err()
}
