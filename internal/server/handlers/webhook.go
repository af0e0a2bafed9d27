package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/maxzer/booking/internal/calendar"
	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/pkg/api"
)

// changedWindow — насколько глубоко назад вытягивать изменения календаря
// при обработке одного уведомления
const changedWindow = 5 * time.Minute

// WebhookHandler принимает push-уведомления внешнего календаря.
// Уведомление не несет полезной нагрузки: по нему вытягиваются
// недавние изменения и синхронизируются в БД.
type WebhookHandler struct {
	logger      *slog.Logger
	events      storage.EventStorage
	calendar    calendar.Syncer
	secretToken string
}

func NewWebhookHandler(
	logger *slog.Logger,
	events storage.EventStorage,
	syncer calendar.Syncer,
	secretToken string,
) *WebhookHandler {
	return &WebhookHandler{
		logger:      logger,
		events:      events,
		calendar:    syncer,
		secretToken: secretToken,
	}
}

// CalendarNotification обрабатывает POST /api/webhook/calendar
func (h *WebhookHandler) CalendarNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelToken := r.Header.Get("X-Goog-Channel-Token")
	if h.secretToken == "" ||
		subtle.ConstantTimeCompare([]byte(channelToken), []byte(h.secretToken)) != 1 {
		h.logger.WarnContext(ctx, "webhook with invalid channel token",
			slog.String("remote_addr", r.RemoteAddr))
		sendError(h.logger, w, "invalid channel token", "auth", http.StatusForbidden)
		return
	}

	state := r.Header.Get("X-Goog-Resource-State")
	if state == "sync" {
		// Подтверждение подписки на канал, изменений нет
		w.WriteHeader(http.StatusOK)
		return
	}

	changed, err := h.calendar.ChangedSince(ctx, time.Now().Add(-changedWindow))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch calendar changes", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	for _, entry := range changed {
		if entry.Status != calendar.StatusCancelled {
			continue
		}

		event, err := h.events.GetEventByGoogleID(ctx, entry.EventID)
		if err != nil {
			if errors.Is(err, storage.ErrEventNotFound) {
				continue
			}
			h.logger.ErrorContext(ctx, "failed to look up event by calendar id",
				slog.String("google_event_id", entry.EventID), slog.Any("error", err))
			continue
		}

		if event.Status == models.EventStatusCancelled {
			continue
		}

		if err := h.events.UpdateEventStatus(ctx, event.ID,
			models.EventStatusCancelled, models.EventColorCancelled); err != nil {
			h.logger.ErrorContext(ctx, "failed to sync cancelled status",
				slog.String("event_id", event.ID), slog.Any("error", err))
			continue
		}

		h.logger.InfoContext(ctx, "event cancelled via calendar",
			slog.String("event_id", event.ID),
			slog.String("google_event_id", entry.EventID))
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "Notification processed"}, http.StatusOK)
}
