package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
)

// CreateEvent creates a new booking event
func (s *Storage) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, user_id, title, date, end_date, color,
			google_event_id, staff_info, pet_breed, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.Title,
		event.Date,
		event.EndDate,
		event.Color,
		event.GoogleEventID,
		event.StaffInfo,
		event.PetBreed,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetUserEvents retrieves all events of a user ordered by date ascending
func (s *Storage) GetUserEvents(ctx context.Context, userID string) ([]*models.Event, error) {
	query := `
		SELECT id, user_id, title, date, end_date, color,
			google_event_id, staff_info, pet_breed, status, created_at, updated_at
		FROM events
		WHERE user_id = ?
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []*models.Event

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}

// GetEvent retrieves an event by ID scoped to its owner
func (s *Storage) GetEvent(ctx context.Context, eventID, userID string) (*models.Event, error) {
	query := `
		SELECT id, user_id, title, date, end_date, color,
			google_event_id, staff_info, pet_breed, status, created_at, updated_at
		FROM events
		WHERE id = ? AND user_id = ?
	`

	return s.getEventRow(ctx, query, eventID, userID)
}

// GetEventByGoogleID retrieves an event by its calendar mirror ID
func (s *Storage) GetEventByGoogleID(ctx context.Context, googleEventID string) (*models.Event, error) {
	query := `
		SELECT id, user_id, title, date, end_date, color,
			google_event_id, staff_info, pet_breed, status, created_at, updated_at
		FROM events
		WHERE google_event_id = ? AND google_event_id != ''
	`

	return s.getEventRow(ctx, query, googleEventID)
}

func (s *Storage) getEventRow(ctx context.Context, query string, args ...any) (*models.Event, error) {
	event, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// UpdateEventStatus sets status and color of an event
func (s *Storage) UpdateEventStatus(ctx context.Context, eventID, status, color string) error {
	query := `UPDATE events SET status = ?, color = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, status, color, time.Now(), eventID)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

// DeleteEvent deletes an event by ID
func (s *Storage) DeleteEvent(ctx context.Context, eventID string) error {
	query := `DELETE FROM events WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

// scanner покрывает *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	var endDate sql.NullTime

	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Date,
		&endDate,
		&event.Color,
		&event.GoogleEventID,
		&event.StaffInfo,
		&event.PetBreed,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	if endDate.Valid {
		event.EndDate = &endDate.Time
	}

	return event, nil
}
