package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/maxzer/booking/pkg/api"
)

// RecoveryMiddleware создает middleware для восстановления после паники.
// Перехватывает panic, логирует стек вызовов и возвращает 500 без деталей.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "Panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
						"stack", string(debug.Stack()),
					)

					writeJSONError(w, http.StatusInternalServerError, api.ErrorResponse{
						Success:   false,
						Error:     "internal server error",
						ErrorType: "server",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
