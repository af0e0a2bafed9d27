// Package server собирает HTTP API из хендлеров и middleware.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxzer/booking/internal/metrics"
	"github.com/maxzer/booking/internal/server/handlers"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/internal/server/token"
)

// RouterDeps собирает зависимости всех маршрутов
type RouterDeps struct {
	Logger *slog.Logger

	Auth       *handlers.AuthHandler
	Users      *handlers.UsersHandler
	Events     *handlers.EventsHandler
	PriceLists *handlers.PriceListsHandler
	Webhook    *handlers.WebhookHandler
	Health     *handlers.HealthHandler

	Tokens       *token.Service
	Sessions     storage.SessionStorage
	UserStorage  storage.UserStorage
	AuthLimiter  *middleware.RateLimiter
	WriteLimiter *middleware.RateLimiter

	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

// NewRouter строит полный роутер API.
//
// Порядок middleware: Recovery → Logging → CORS, далее по группам:
// эндпоинты авторизации под лимитом "authentication", защищенные
// маршруты за строгим session gate, запись профиля дополнительно
// под лимитом "profile-write".
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(deps.Logger))
	r.Use(middleware.LoggingWithSkip(deps.Logger, []string{"/ping", "/metrics"}))
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	authGate := middleware.AuthMiddleware(deps.Logger, deps.Tokens, deps.Sessions, deps.UserStorage)

	r.Get("/ping", deps.Health.Ping)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// Вход, обновление и выход: без gate, под жестким лимитом по IP
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthLimiter.Middleware)
			r.Post("/telegram", deps.Auth.TelegramAuth)
			r.Post("/check-user", deps.Auth.CheckUser)
			r.Post("/refresh-token", deps.Auth.RefreshToken)
			r.Post("/logout", deps.Auth.Logout)
		})

		// Профиль защищен и лимитирован отдельно от входа
		r.Group(func(r chi.Router) {
			r.Use(authGate)
			r.Use(deps.WriteLimiter.Middleware)
			r.Post("/profile", deps.Auth.UpdateProfile)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authGate)

		r.Route("/api/events", func(r chi.Router) {
			r.Post("/", deps.Events.Create)
			r.Get("/", deps.Events.List)
			r.Delete("/{id}", deps.Events.Delete)
			r.Patch("/{id}/cancel", deps.Events.Cancel)
		})

		r.Get("/api/users/{id}", deps.Users.Get)

		r.Route("/api/price-lists", func(r chi.Router) {
			r.Get("/viewed", deps.PriceLists.Viewed)
			r.Post("/mark-viewed", deps.PriceLists.MarkViewed)
		})
	})

	// Webhook аутентифицируется собственным channel token
	r.Post("/api/webhook/calendar", deps.Webhook.CalendarNotification)

	return r
}

// Server — HTTP сервер с фоновой чисткой истекших сессий
type Server struct {
	httpServer      *http.Server
	logger          *slog.Logger
	sessions        storage.SessionStorage
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
}

// Config настраивает Server
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SweepInterval   time.Duration
}

// New создает Server поверх готового роутера
func New(cfg Config, handler http.Handler, logger *slog.Logger, sessions storage.SessionStorage) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger:          logger,
		sessions:        sessions,
		sweepInterval:   cfg.SweepInterval,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run запускает сервер и блокируется до отмены контекста.
// Отмена контекста запускает graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go s.sweepSessions(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// sweepSessions периодически удаляет истекшие сессии
func (s *Server) sweepSessions(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := s.sessions.DeleteExpiredSessions(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to sweep expired sessions", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				s.logger.InfoContext(ctx, "expired sessions removed", slog.Int("count", deleted))
			}
		case <-ctx.Done():
			return
		}
	}
}
