package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
)

func TestAuthStorage_SaveOverwritesRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "100")

	require.NoError(t, s.SaveRefreshToken(ctx, userID, "token-one"))

	record, err := s.GetAuthRecord(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, record.RefreshToken)
	assert.Equal(t, "token-one", *record.RefreshToken)

	// Повторная выдача перезаписывает прежний токен
	require.NoError(t, s.SaveRefreshToken(ctx, userID, "token-two"))

	record, err = s.GetAuthRecord(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, record.RefreshToken)
	assert.Equal(t, "token-two", *record.RefreshToken)
}

func TestAuthStorage_ClearRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "200")
	require.NoError(t, s.SaveRefreshToken(ctx, userID, "token"))

	require.NoError(t, s.ClearRefreshToken(ctx, userID))

	// Запись остается, но токен обнулен
	record, err := s.GetAuthRecord(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, record.RefreshToken)
}

func TestAuthStorage_ClearMissingRecord(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.ClearRefreshToken(ctx, "no-such-user")
	assert.ErrorIs(t, err, storage.ErrAuthRecordNotFound)
}

func TestAuthStorage_GetMissingRecord(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetAuthRecord(ctx, "no-such-user")
	assert.ErrorIs(t, err, storage.ErrAuthRecordNotFound)
}

func TestSessionStorage_GetSession(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "300")

	session := &models.Session{
		Token:     "access-token",
		UserID:    userID,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "access-token", userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	// Чужой userID не подходит, даже если токен совпал
	_, err = s.GetSession(ctx, "access-token", "another-user")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_ExpiredSessionIsAbsent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "400")

	session := &models.Session{
		Token:     "expired-token",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-16 * time.Minute),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	_, err := s.GetSession(ctx, "expired-token", userID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "500")

	require.NoError(t, s.CreateSession(ctx, &models.Session{
		Token:     "live",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		Token:     "dead",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}))

	deleted, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = s.GetSession(ctx, "live", userID)
	assert.NoError(t, err)
}
