package storage

import (
	"context"

	"github.com/maxzer/booking/internal/models"
)

// AuthStorage defines interface for refresh token persistence.
// Each user has at most one auth record, and therefore at most one
// live refresh token: saving a new token overwrites the previous one.
type AuthStorage interface {
	// SaveRefreshToken stores the refresh token for a user,
	// creating the auth record if it doesn't exist yet
	SaveRefreshToken(ctx context.Context, userID, refreshToken string) error

	// GetAuthRecord retrieves the auth record for a user
	// Returns ErrAuthRecordNotFound if no record exists
	GetAuthRecord(ctx context.Context, userID string) (*models.AuthRecord, error)

	// ClearRefreshToken sets the stored refresh token to NULL
	// Returns ErrAuthRecordNotFound if no record exists, the record
	// itself is retained
	ClearRefreshToken(ctx context.Context, userID string) error
}

// SessionStorage defines interface for server-side session records
type SessionStorage interface {
	// CreateSession stores a session for an issued access token
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a non-expired session by exact (token, userID)
	// Returns ErrSessionNotFound if missing or expired
	GetSession(ctx context.Context, token, userID string) (*models.Session, error)

	// DeleteExpiredSessions removes all expired sessions
	// Returns number of deleted sessions
	DeleteExpiredSessions(ctx context.Context) (int, error)
}
