package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maxzer/booking/internal/calendar"
	"github.com/maxzer/booking/internal/metrics"
	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/notify"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/pkg/api"
)

// EventsHandler обрабатывает CRUD бронирований.
// База — источник истины, календарь и уведомления зеркалируются
// best-effort: их сбои логируются, но не валят операцию.
type EventsHandler struct {
	logger   *slog.Logger
	events   storage.EventStorage
	calendar calendar.Syncer
	notifier notify.Notifier
	metrics  metrics.MetricsCollector
}

// NewEventsHandler создает новый handler для бронирований
func NewEventsHandler(
	logger *slog.Logger,
	events storage.EventStorage,
	syncer calendar.Syncer,
	notifier notify.Notifier,
	collector metrics.MetricsCollector,
) *EventsHandler {
	return &EventsHandler{
		logger:   logger,
		events:   events,
		calendar: syncer,
		notifier: notifier,
		metrics:  collector,
	}
}

// Create обрабатывает POST /api/events
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	var req api.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", "validation", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		sendError(h.logger, w, "title is required", "validation", http.StatusBadRequest)
		return
	}
	if req.Date.IsZero() {
		sendError(h.logger, w, "date is required", "validation", http.StatusBadRequest)
		return
	}

	color := req.Color
	if color == "" {
		color = models.EventColorDefault
	}

	now := time.Now()
	event := &models.Event{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		Title:         req.Title,
		Date:          req.Date,
		EndDate:       req.EndDate,
		Color:         color,
		GoogleEventID: req.GoogleEventID,
		StaffInfo:     req.StaffInfo,
		PetBreed:      req.PetBreed,
		Status:        models.EventStatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Зеркалируем в календарь до записи в БД, чтобы сохранить внешний ID.
	// Отказ календаря бронирование не отменяет.
	if event.GoogleEventID == "" {
		googleID, err := h.calendar.Insert(ctx, calendar.Entry{
			Title:     event.Title,
			Start:     event.Date,
			End:       event.EndDate,
			StaffInfo: event.StaffInfo,
			PetBreed:  event.PetBreed,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "calendar insert failed",
				slog.String("event_id", event.ID), slog.Any("error", err))
		} else {
			event.GoogleEventID = googleID
		}
	}

	if err := h.events.CreateEvent(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to create event",
			slog.String("user_id", user.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.BookingCreated(ctx, user, event); err != nil {
		h.logger.WarnContext(ctx, "booking notification failed",
			slog.String("event_id", event.ID), slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "event created",
		slog.String("event_id", event.ID),
		slog.String("user_id", user.ID))
	h.metrics.RecordBookingCreated()

	sendJSON(h.logger, w, api.EventResponse{
		Success: true,
		Event:   toEventView(event),
	}, http.StatusCreated)
}

// List обрабатывает GET /api/events
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	events, err := h.events.GetUserEvents(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			slog.String("user_id", user.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	views := make([]api.EventView, 0, len(events))
	for _, event := range events {
		views = append(views, *toEventView(event))
	}

	sendJSON(h.logger, w, api.EventsResponse{Success: true, Events: views}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/events/{id}
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "id")

	event, err := h.events.GetEvent(ctx, eventID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			sendError(h.logger, w, "event not found", "not_found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get event", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	if event.GoogleEventID != "" {
		if err := h.calendar.Delete(ctx, event.GoogleEventID); err != nil {
			h.logger.ErrorContext(ctx, "calendar delete failed",
				slog.String("google_event_id", event.GoogleEventID), slog.Any("error", err))
		}
	}

	if err := h.events.DeleteEvent(ctx, eventID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete event",
			slog.String("event_id", eventID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "event deleted",
		slog.String("event_id", eventID),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "Event deleted"}, http.StatusOK)
}

// Cancel обрабатывает PATCH /api/events/{id}/cancel
// Запись остается в истории со статусом cancelled и красным цветом
func (h *EventsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "id")

	event, err := h.events.GetEvent(ctx, eventID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			sendError(h.logger, w, "event not found", "not_found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get event", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	if err := h.events.UpdateEventStatus(ctx, eventID, models.EventStatusCancelled, models.EventColorCancelled); err != nil {
		h.logger.ErrorContext(ctx, "failed to cancel event",
			slog.String("event_id", eventID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	if event.GoogleEventID != "" {
		if err := h.calendar.Delete(ctx, event.GoogleEventID); err != nil {
			h.logger.ErrorContext(ctx, "calendar delete failed",
				slog.String("google_event_id", event.GoogleEventID), slog.Any("error", err))
		}
	}

	if err := h.notifier.BookingCancelled(ctx, user, event); err != nil {
		h.logger.WarnContext(ctx, "cancel notification failed",
			slog.String("event_id", eventID), slog.Any("error", err))
	}

	event.Status = models.EventStatusCancelled
	event.Color = models.EventColorCancelled

	h.logger.InfoContext(ctx, "event cancelled",
		slog.String("event_id", eventID),
		slog.String("user_id", user.ID))
	h.metrics.RecordBookingCancelled()

	sendJSON(h.logger, w, api.EventResponse{
		Success: true,
		Event:   toEventView(event),
	}, http.StatusOK)
}

func toEventView(event *models.Event) *api.EventView {
	return &api.EventView{
		ID:            event.ID,
		Title:         event.Title,
		Date:          event.Date,
		EndDate:       event.EndDate,
		Color:         event.Color,
		GoogleEventID: event.GoogleEventID,
		StaffInfo:     event.StaffInfo,
		PetBreed:      event.PetBreed,
		Status:        event.Status,
		CreatedAt:     event.CreatedAt,
	}
}
