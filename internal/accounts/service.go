// Package accounts реализует поиск-или-создание локального пользователя
// по личности из Telegram. Единственный натуральный ключ — telegram_id.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/internal/telegram"
	"github.com/maxzer/booking/internal/validation"
)

// ErrUserCreation означает сбой хранилища при создании или обновлении
// пользователя.
var ErrUserCreation = errors.New("failed to create or update user")

// RealNameOverrides — настоящие ФИО, вводимые пользователем вручную.
// Пустое значение означает "не трогать сохраненное", а не "стереть".
type RealNameOverrides struct {
	RealName       string
	RealLastName   string
	RealPatronymic string
}

// Service находит и обновляет пользователей по данным Telegram.
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
}

// NewService создает Service.
func NewService(logger *slog.Logger, users storage.UserStorage) *Service {
	return &Service{
		logger: logger,
		users:  users,
	}
}

// FindOrCreate возвращает пользователя для данной личности Telegram,
// создавая запись при первом входе. Отображаемые поля (username, имя,
// фамилия, аватар) всегда обновляются из свежей initData, настоящие ФИО —
// только непустыми значениями. Двух записей на один telegram_id не бывает.
func (s *Service) FindOrCreate(ctx context.Context, identity *telegram.UserIdentity, overrides RealNameOverrides) (*models.User, error) {
	telegramID := strconv.FormatInt(identity.TelegramID, 10)

	user, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	if user == nil {
		created, err := s.create(ctx, telegramID, identity, overrides)
		if err == nil || !errors.Is(err, storage.ErrUserAlreadyExists) {
			return created, err
		}
		// Гонка двух первых логинов: запись только что создал
		// параллельный запрос, перечитываем и обновляем ее.
		s.logger.WarnContext(ctx, "concurrent first login detected, falling back to update",
			slog.String("telegram_id", telegramID))
		user, err = s.users.GetUserByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
		}
	}

	return s.update(ctx, user, identity, overrides)
}

// UpdateRealNames применяет непустые настоящие ФИО к существующему
// пользователю.
func (s *Service) UpdateRealNames(ctx context.Context, userID string, overrides RealNameOverrides) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	applyOverrides(user, overrides)
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	return user, nil
}

// Exists сообщает, зарегистрирован ли telegram_id. Невалидный вход
// (пустая строка, "undefined", "null") — это false, а не ошибка.
func (s *Service) Exists(ctx context.Context, telegramID string) (bool, error) {
	user, err := s.Lookup(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Lookup возвращает пользователя по telegram_id или nil, если такого
// нет. Невалидный вход трактуется как "не зарегистрирован".
func (s *Service) Lookup(ctx context.Context, telegramID string) (*models.User, error) {
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		s.logger.DebugContext(ctx, "lookup with invalid telegram id",
			slog.String("telegram_id", telegramID))
		return nil, nil
	}

	user, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	return user, nil
}

func (s *Service) create(ctx context.Context, telegramID string, identity *telegram.UserIdentity, overrides RealNameOverrides) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		ID:         uuid.New().String(),
		TelegramID: telegramID,
		Username:   identity.Username,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		PhotoURL:   identity.PhotoURL,
		// Синтетический email для совместимости схемы, не канал связи
		Email:     telegramID + "@telegram.user",
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyOverrides(user, overrides)

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("telegram_id", telegramID))

	return user, nil
}

func (s *Service) update(ctx context.Context, user *models.User, identity *telegram.UserIdentity, overrides RealNameOverrides) (*models.User, error) {
	user.Username = identity.Username
	user.FirstName = identity.FirstName
	user.LastName = identity.LastName
	user.PhotoURL = identity.PhotoURL
	applyOverrides(user, overrides)
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	return user, nil
}

// applyOverrides применяет только непустые значения: пустой ввод
// никогда не стирает ранее сохраненные настоящие ФИО.
func applyOverrides(user *models.User, overrides RealNameOverrides) {
	if overrides.RealName != "" {
		user.RealName = overrides.RealName
	}
	if overrides.RealLastName != "" {
		user.RealLastName = overrides.RealLastName
	}
	if overrides.RealPatronymic != "" {
		user.RealPatronymic = overrides.RealPatronymic
	}
}
