package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/polinaozhigova/eqmon-be/internal/models"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(eventType, level, message string, uploadID *int64) error
	Recent(limit int) ([]models.Event, error)
	PruneOlderThan(age time.Duration) (int64, error)
}

// EventService keeps an audit trail of uploads, user registrations and
// system alerts in the database.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event to the database.
func (s *EventService) Record(eventType, level, message string, uploadID *int64) error {
	event := models.Event{
		ID:       uuid.New().String(),
		Type:     eventType,
		Level:    level,
		Message:  message,
		UploadID: uploadID,
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message, upload_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UploadID)
	return err
}

// Recent retrieves the most recent events from the database.
func (s *EventService) Recent(limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, upload_id, created_at FROM events ORDER BY created_at DESC, id LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UploadID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PruneOlderThan deletes events recorded before now-age and returns how many
// rows were removed. CURRENT_TIMESTAMP stores UTC, so the cutoff is UTC too.
func (s *EventService) PruneOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age).Format("2006-01-02 15:04:05")
	res, err := s.db.Exec("DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
