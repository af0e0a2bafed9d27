package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/pkg/api"
)

// PriceListsHandler отмечает просмотры прайс-листов.
// Фронтенд по этим отметкам решает, показывать ли онбординг услуги.
type PriceListsHandler struct {
	logger     *slog.Logger
	priceLists storage.PriceListStorage
}

func NewPriceListsHandler(logger *slog.Logger, priceLists storage.PriceListStorage) *PriceListsHandler {
	return &PriceListsHandler{
		logger:     logger,
		priceLists: priceLists,
	}
}

// Viewed обрабатывает GET /api/price-lists/viewed (защищенный)
func (h *PriceListsHandler) Viewed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	views, err := h.priceLists.GetViewedPriceLists(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get viewed price lists",
			slog.String("user_id", user.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	titles := make([]string, 0, len(views))
	for _, v := range views {
		titles = append(titles, v.ServiceTitle)
	}

	sendJSON(h.logger, w, api.ViewedPriceListsResponse{
		Success: true,
		Viewed:  titles,
	}, http.StatusOK)
}

// MarkViewed обрабатывает POST /api/price-lists/mark-viewed (защищенный)
// Идемпотентен: повторная отметка той же услуги — тоже успех
func (h *PriceListsHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	var req api.MarkPriceListViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", "validation", http.StatusBadRequest)
		return
	}

	if req.ServiceTitle == "" {
		sendError(h.logger, w, "serviceTitle is required", "validation", http.StatusBadRequest)
		return
	}

	if err := h.priceLists.MarkPriceListViewed(ctx, user.ID, req.ServiceTitle); err != nil {
		h.logger.ErrorContext(ctx, "failed to mark price list viewed",
			slog.String("user_id", user.ID),
			slog.String("service_title", req.ServiceTitle),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "Price list marked as viewed"}, http.StatusOK)
}
