// Package notify отправляет подтверждения бронирований клиенту и
// администратору через Telegram бота.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/maxzer/booking/internal/models"
)

// Notifier уведомляет администратора о событиях бронирования
type Notifier interface {
	BookingCreated(ctx context.Context, user *models.User, event *models.Event) error
	BookingCancelled(ctx context.Context, user *models.User, event *models.Event) error
}

// TelegramNotifier шлет сообщение клиенту (чат с ботом) и копию в
// admin-чат, если он настроен
type TelegramNotifier struct {
	bot         *tgbotapi.BotAPI
	logger      *slog.Logger
	adminChatID int64
}

// NewTelegram создает нотификатор поверх Bot API.
// Используется тот же бот, что и для WebApp авторизации: клиент уже
// открывал WebApp этого бота, значит чат с ним существует.
func NewTelegram(botToken string, adminChatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &TelegramNotifier{
		bot:         bot,
		adminChatID: adminChatID,
		logger:      logger,
	}, nil
}

func (n *TelegramNotifier) BookingCreated(ctx context.Context, user *models.User, event *models.Event) error {
	text := fmt.Sprintf(
		"Вы записаны!\n\nУслуга: %s\nДата: %s",
		event.Title,
		event.Date.Format("02.01.2006 15:04"),
	)
	if event.PetBreed != "" {
		text += "\nПорода: " + event.PetBreed
	}

	adminText := fmt.Sprintf(
		"Новая запись\n\nУслуга: %s\nДата: %s\nКлиент: %s",
		event.Title,
		event.Date.Format("02.01.2006 15:04"),
		displayName(user),
	)

	return n.send(ctx, user, text, adminText)
}

func (n *TelegramNotifier) BookingCancelled(ctx context.Context, user *models.User, event *models.Event) error {
	text := fmt.Sprintf(
		"Запись отменена\n\nУслуга: %s\nДата: %s",
		event.Title,
		event.Date.Format("02.01.2006 15:04"),
	)

	adminText := fmt.Sprintf(
		"Запись отменена\n\nУслуга: %s\nДата: %s\nКлиент: %s",
		event.Title,
		event.Date.Format("02.01.2006 15:04"),
		displayName(user),
	)

	return n.send(ctx, user, text, adminText)
}

func (n *TelegramNotifier) send(ctx context.Context, user *models.User, userText, adminText string) error {
	if user != nil {
		chatID, err := strconv.ParseInt(user.TelegramID, 10, 64)
		if err != nil {
			n.logger.WarnContext(ctx, "Invalid telegram id, skipping user notification",
				"telegram_id", user.TelegramID)
		} else if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, userText)); err != nil {
			n.logger.ErrorContext(ctx, "Failed to notify user", "error", err,
				"telegram_id", user.TelegramID)
			return fmt.Errorf("send notification: %w", err)
		}
	}

	// Копия администратору, если admin-чат настроен
	if n.adminChatID != 0 {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.adminChatID, adminText)); err != nil {
			n.logger.ErrorContext(ctx, "Failed to notify admin", "error", err)
		}
	}

	return nil
}

func displayName(user *models.User) string {
	if user == nil {
		return "неизвестный клиент"
	}
	name := user.RealName
	if name == "" {
		name = user.FirstName
	}
	if user.RealLastName != "" {
		name += " " + user.RealLastName
	}
	if user.Username != "" {
		name += " (@" + user.Username + ")"
	}
	return name
}

// Nop — нотификатор-заглушка, когда admin-чат не настроен
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (n *Nop) BookingCreated(_ context.Context, _ *models.User, _ *models.Event) error {
	return nil
}

func (n *Nop) BookingCancelled(_ context.Context, _ *models.User, _ *models.Event) error {
	return nil
}
