package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, telegram_id, username, first_name, last_name, photo_url,
			email, real_name, real_last_name, real_patronymic, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhotoURL,
		user.Email,
		user.RealName,
		user.RealLastName,
		user.RealPatronymic,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Дубликат telegram_id: гонка двух первых логинов одного пользователя
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.telegram_id") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByTelegramID retrieves user by telegram id
func (s *Storage) GetUserByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return s.getUser(ctx, "telegram_id", telegramID)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id", userID)
}

func (s *Storage) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, telegram_id, username, first_name, last_name, photo_url,
			email, real_name, real_last_name, real_patronymic, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, column)

	user := &models.User{}

	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PhotoURL,
		&user.Email,
		&user.RealName,
		&user.RealLastName,
		&user.RealPatronymic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateUser updates user information
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = ?, first_name = ?, last_name = ?, photo_url = ?,
			real_name = ?, real_last_name = ?, real_patronymic = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhotoURL,
		user.RealName,
		user.RealLastName,
		user.RealPatronymic,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}
