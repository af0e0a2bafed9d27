package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/maxzer/booking/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

// createTestUser вставляет пользователя и возвращает его ID
func createTestUser(t *testing.T, ctx context.Context, s *Storage, telegramID string) string {
	t.Helper()

	now := time.Now()
	user := &models.User{
		ID:         uuid.New().String(),
		TelegramID: telegramID,
		Username:   "tester",
		FirstName:  "Test",
		Email:      telegramID + "@telegram.user",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateUser(ctx, user))

	return user.ID
}
