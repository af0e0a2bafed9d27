package storage

import (
	"context"

	"github.com/maxzer/booking/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if telegram id is already taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByTelegramID retrieves user by telegram id (string form)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByTelegramID(ctx context.Context, telegramID string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateUser updates user information
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUser(ctx context.Context, user *models.User) error
}
