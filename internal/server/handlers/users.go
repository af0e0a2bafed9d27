package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/pkg/api"
)

// UsersHandler отдает данные пользователей
type UsersHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
}

func NewUsersHandler(logger *slog.Logger, users storage.UserStorage) *UsersHandler {
	return &UsersHandler{
		logger: logger,
		users:  users,
	}
}

// Get обрабатывает GET /api/users/{id} (защищенный)
// Пользователь может смотреть только собственную запись
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authUser, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	userID := chi.URLParam(r, "id")
	if userID != authUser.ID {
		sendError(h.logger, w, "access denied", "auth", http.StatusForbidden)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, "user not found", "not_found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user",
			slog.String("user_id", userID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.UserResponse{
		Success: true,
		User:    toAuthUser(user),
	}, http.StatusOK)
}
