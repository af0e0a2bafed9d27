package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/maxzer/booking/internal/accounts"
	"github.com/maxzer/booking/internal/metrics"
	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/token"
	"github.com/maxzer/booking/internal/telegram"
	"github.com/maxzer/booking/internal/validation"
	"github.com/maxzer/booking/pkg/api"
)

// refreshCookieName — имя HttpOnly cookie с refresh token
const refreshCookieName = "refreshToken"

// CookieConfig определяет атрибуты refresh cookie
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler обрабатывает запросы авторизации через Telegram WebApp
type AuthHandler struct {
	logger   *slog.Logger
	resolver *telegram.Resolver
	accounts *accounts.Service
	tokens   *token.Service
	metrics  metrics.MetricsCollector
	cookie   CookieConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	resolver *telegram.Resolver,
	accountsSvc *accounts.Service,
	tokens *token.Service,
	collector metrics.MetricsCollector,
	cookie CookieConfig,
) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		resolver: resolver,
		accounts: accountsSvc,
		tokens:   tokens,
		metrics:  collector,
		cookie:   cookie,
	}
}

// TelegramAuth обрабатывает POST /api/auth/telegram
// Вход через initData от Telegram WebApp. Полный профиль получает пару
// access+refresh (refresh уходит в HttpOnly cookie), профиль-заглушка —
// временный токен без cookie.
func (h *AuthHandler) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req api.TelegramAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode auth request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", "validation", http.StatusBadRequest)
		return
	}

	identity, err := h.resolver.Resolve(req.InitData)
	if err != nil {
		h.logger.WarnContext(ctx, "initData verification failed", slog.Any("error", err))
		h.metrics.RecordAuthFailure("invalid_initdata")
		sendError(h.logger, w, "invalid telegram authentication data", "auth", http.StatusUnauthorized)
		return
	}

	user, err := h.accounts.FindOrCreate(ctx, identity, accounts.RealNameOverrides{
		RealName:       req.RealName,
		RealLastName:   req.RealLastname,
		RealPatronymic: req.RealPatronymic,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to find or create user",
			slog.Int64("telegram_id", identity.TelegramID), slog.Any("error", err))
		h.metrics.RecordAuthFailure("storage")
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	if !user.HasProfile() {
		// Личность без отображаемого имени: Telegram скрыл профиль или
		// аккаунт-заглушка. Выдаем временный токен без сессии.
		tempToken, err := h.tokens.IssueTemporary(user)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to issue temporary token", slog.Any("error", err))
			h.metrics.RecordAuthFailure("token")
			sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
			return
		}

		h.logger.InfoContext(ctx, "temporary credential issued",
			slog.String("user_id", user.ID),
			slog.String("telegram_id", user.TelegramID))
		h.metrics.RecordAuthSuccess(token.KindTemp)
		h.metrics.RecordAuthLatency(time.Since(start))

		sendJSON(h.logger, w, api.TelegramAuthResponse{
			AccessToken: tempToken,
			User:        toAuthUser(user),
			Temp:        true,
			Success:     true,
		}, http.StatusOK)
		return
	}

	pair, err := h.tokens.Issue(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		h.metrics.RecordAuthFailure("token")
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)

	h.logger.InfoContext(ctx, "user authenticated",
		slog.String("user_id", user.ID),
		slog.String("telegram_id", user.TelegramID))
	h.metrics.RecordAuthSuccess(token.KindFull)
	h.metrics.RecordAuthLatency(time.Since(start))

	sendJSON(h.logger, w, api.TelegramAuthResponse{
		AccessToken: pair.AccessToken,
		User:        toAuthUser(user),
		Success:     true,
	}, http.StatusOK)
}

// CheckUser обрабатывает POST /api/auth/check-user
// Предварительная проверка перед входом: есть ли аккаунт и дорос ли он
// до полного профиля. Всегда отвечает 200: фронтенд по exists решает,
// показывать форму регистрации или сразу логинить.
func (h *AuthHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CheckUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode check-user request", slog.Any("error", err))
		sendJSON(h.logger, w, api.CheckUserResponse{
			Success:   true,
			Timestamp: time.Now().UnixMilli(),
		}, http.StatusOK)
		return
	}

	telegramID := strconv.FormatInt(req.TelegramData.ID, 10)
	resp := api.CheckUserResponse{
		TelegramID: telegramID,
		Success:    true,
		Timestamp:  time.Now().UnixMilli(),
	}

	if err := validation.ValidateTelegramID(telegramID); err != nil {
		h.logger.WarnContext(ctx, "invalid telegram id in check-user",
			slog.String("telegram_id", telegramID))
		sendJSON(h.logger, w, resp, http.StatusOK)
		return
	}

	user, err := h.accounts.Lookup(ctx, telegramID)
	if err != nil {
		h.logger.ErrorContext(ctx, "check-user lookup failed", slog.Any("error", err))
		sendJSON(h.logger, w, resp, http.StatusOK)
		return
	}

	if user != nil {
		resp.Exists = true
		resp.IsFullyAuthorized = user.HasProfile()
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// RefreshToken обрабатывает POST /api/auth/refresh-token
// Обменивает refresh token из HttpOnly cookie на новый access token.
// Все причины отказа сведены к одному ответу, чтобы не давать оракула.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		h.metrics.RecordTokenRefresh(false)
		sendError(h.logger, w, "invalid refresh token", "auth", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.tokens.Refresh(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, token.ErrInvalidRefreshToken) {
			h.logger.ErrorContext(ctx, "refresh exchange failed", slog.Any("error", err))
		}
		h.metrics.RecordTokenRefresh(false)
		sendError(h.logger, w, "invalid refresh token", "auth", http.StatusUnauthorized)
		return
	}

	h.metrics.RecordTokenRefresh(true)
	sendJSON(h.logger, w, api.RefreshResponse{AccessToken: accessToken}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Отзывает refresh token и гасит cookie. Идемпотентен: повторный
// logout без cookie — тоже успех.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		sendJSON(h.logger, w, api.MessageResponse{Message: "Already logged out"}, http.StatusOK)
		return
	}

	h.clearRefreshCookie(w)

	claims, err := h.tokens.ParseRefresh(cookie.Value)
	if err != nil {
		// Протухший или чужой токен: cookie уже погашена, этого достаточно
		h.logger.WarnContext(ctx, "logout with invalid refresh token", slog.Any("error", err))
		sendJSON(h.logger, w, api.MessageResponse{Message: "Already logged out"}, http.StatusOK)
		return
	}

	if err := h.tokens.Invalidate(ctx, claims.UserID); err != nil {
		h.logger.ErrorContext(ctx, "failed to invalidate refresh token",
			slog.String("user_id", claims.UserID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out", slog.String("user_id", claims.UserID))
	sendJSON(h.logger, w, api.MessageResponse{Message: "Successfully logged out"}, http.StatusOK)
}

// UpdateProfile обрабатывает POST /api/auth/profile (защищенный)
// Обновляет настоящие ФИО пользователя, пустые поля не затирают сохраненное
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "authorization required", "auth", http.StatusUnauthorized)
		return
	}

	var req api.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", "validation", http.StatusBadRequest)
		return
	}

	updated, err := h.accounts.UpdateRealNames(ctx, user.ID, accounts.RealNameOverrides{
		RealName:       req.RealName,
		RealLastName:   req.RealLastname,
		RealPatronymic: req.RealPatronymic,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update profile",
			slog.String("user_id", user.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", "server", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ProfileUpdateResponse{
		Success: true,
		User:    toAuthUser(updated),
	}, http.StatusOK)
}

// setRefreshCookie выставляет HttpOnly cookie с refresh token.
// SameSite=Strict: cookie нужна только на наших эндпоинтах refresh/logout.
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// toAuthUser конвертирует модель в представление API
func toAuthUser(user *models.User) *api.AuthUser {
	if user == nil {
		return nil
	}
	return &api.AuthUser{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Username:       user.Username,
		PhotoURL:       user.PhotoURL,
		RealName:       user.RealName,
		RealLastName:   user.RealLastName,
		RealPatronymic: user.RealPatronymic,
	}
}
