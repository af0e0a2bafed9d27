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

// SaveRefreshToken stores the refresh token for a user.
// Запись auth создается лениво при первой выдаче токена,
// повторная выдача перезаписывает прежний токен (upsert).
func (s *Storage) SaveRefreshToken(ctx context.Context, userID, refreshToken string) error {
	query := `
		INSERT INTO auth_records (user_id, refresh_token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, userID, refreshToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetAuthRecord retrieves the auth record for a user
func (s *Storage) GetAuthRecord(ctx context.Context, userID string) (*models.AuthRecord, error) {
	query := `
		SELECT user_id, refresh_token, updated_at
		FROM auth_records
		WHERE user_id = ?
	`

	record := &models.AuthRecord{}
	var refreshToken sql.NullString

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&record.UserID,
		&refreshToken,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAuthRecordNotFound
		}
		return nil, fmt.Errorf("failed to get auth record: %w", err)
	}

	if refreshToken.Valid {
		record.RefreshToken = &refreshToken.String
	}

	return record, nil
}

// ClearRefreshToken sets the stored refresh token to NULL.
// Сама запись сохраняется — это след того, что пользователь логинился.
func (s *Storage) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `UPDATE auth_records SET refresh_token = NULL, updated_at = ? WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrAuthRecordNotFound
	}

	return nil
}

// CreateSession stores a session for an issued access token
func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a non-expired session by exact (token, userID)
func (s *Storage) GetSession(ctx context.Context, token, userID string) (*models.Session, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = ? AND user_id = ? AND expires_at > ?
	`

	session := &models.Session{}

	err := s.db.QueryRowContext(ctx, query, token, userID, time.Now()).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteExpiredSessions removes all expired sessions
func (s *Storage) DeleteExpiredSessions(ctx context.Context) (int, error) {
	query := `DELETE FROM sessions WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
