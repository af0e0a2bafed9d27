package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/internal/server/token"
	"github.com/maxzer/booking/pkg/api"
)

type contextKey string

// userContextKey — ключ, под которым авторизованный пользователь лежит в контексте запроса
const userContextKey contextKey = "authUser"

// UserFromContext возвращает пользователя, положенного в контекст AuthMiddleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// ContextWithUser кладет пользователя в контекст так же, как это делает
// AuthMiddleware
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// AuthMiddleware создает middleware строгой проверки доступа.
// Access token должен быть валидным, постоянным (не temp) и иметь
// живую серверную сессию. Любое нарушение — 401 без деталей.
func AuthMiddleware(
	logger *slog.Logger,
	tokens *token.Service,
	sessions storage.SessionStorage,
	users storage.UserStorage,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "authorization required")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				writeAuthError(w, "invalid token format")
				return
			}

			tokenString := parts[1]

			claims, err := tokens.ValidateAccess(tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid access token", "error", err)
				writeAuthError(w, "invalid or expired token")
				return
			}

			// Временные токены не дают доступа к защищенным ресурсам
			if claims.Kind == token.KindTemp {
				logger.WarnContext(r.Context(), "Temporary token used on protected route",
					"user_id", claims.UserID)
				writeAuthError(w, "permanent token required")
				return
			}

			// Токен криптографически валиден, но сессия могла быть
			// отозвана через logout или истечь на сервере.
			_, err = sessions.GetSession(r.Context(), tokenString, claims.UserID)
			if err != nil {
				if !errors.Is(err, storage.ErrSessionNotFound) {
					logger.ErrorContext(r.Context(), "Session lookup failed", "error", err)
				}
				writeAuthError(w, "session missing or expired")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				logger.WarnContext(r.Context(), "User from token not found",
					"user_id", claims.UserID, "error", err)
				writeAuthError(w, "session missing or expired")
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, api.ErrorResponse{
		Success:   false,
		Error:     msg,
		ErrorType: "auth",
	})
}
