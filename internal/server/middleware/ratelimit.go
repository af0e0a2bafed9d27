package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/maxzer/booking/pkg/api"
)

// RateLimiter ограничивает частоту запросов по фиксированным окнам.
// Каждому ключу (обычно IP клиента) соответствует счетчик в текущем окне,
// по истечении окна счетчик сбрасывается.
type RateLimiter struct {
	windows  map[string]*window
	logger   *slog.Logger
	cleanupC chan struct{}
	limit    int
	interval time.Duration
	now      func() time.Time
	onLimit  func()
	mu       sync.Mutex
}

// window представляет окно подсчета для конкретного ключа
type window struct {
	start time.Time
	count int
}

// RateLimitResult — результат проверки одного запроса
type RateLimitResult struct {
	ResetAt   time.Time
	Remaining int
	Allowed   bool
}

// NewRateLimiter создает новый rate limiter.
// limit - максимальное количество запросов за окно
// interval - длина окна (например, 60 секунд)
func NewRateLimiter(limit int, interval time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		windows:  make(map[string]*window),
		limit:    limit,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	// Периодическая очистка истекших окон, чтобы map не рос бесконечно
	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.removeExpired()
		case <-rl.cleanupC:
			return
		}
	}
}

func (rl *RateLimiter) removeExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, win := range rl.windows {
		if now.Sub(win.start) >= rl.interval {
			delete(rl.windows, key)
		}
	}
}

// Stop останавливает cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.cleanupC)
}

// OnLimit задает callback, вызываемый на каждый отклоненный запрос.
// Используется для счетчиков метрик.
func (rl *RateLimiter) OnLimit(fn func()) {
	rl.onLimit = fn
}

// Check регистрирует запрос для ключа и возвращает вердикт.
// Первый запрос в окне всегда разрешен.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, exists := rl.windows[key]
	if !exists || now.Sub(win.start) >= rl.interval {
		win = &window{start: now}
		rl.windows[key] = win
	}

	resetAt := win.start.Add(rl.interval)

	if win.count >= rl.limit {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	win.count++
	return RateLimitResult{
		Allowed:   true,
		Remaining: rl.limit - win.count,
		ResetAt:   resetAt,
	}
}

// Middleware оборачивает handler проверкой лимита по IP клиента.
// Ответ всегда несет заголовки X-RateLimit-*, при отказе — 429 с retryAfter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)
		result := rl.Check(key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"ip", key,
				"method", r.Method,
				"path", r.URL.Path,
			)
			if rl.onLimit != nil {
				rl.onLimit()
			}

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSONError(w, http.StatusTooManyRequests, api.ErrorResponse{
				Success:    false,
				Error:      fmt.Sprintf("too many requests, retry in %d seconds", retryAfter),
				ErrorType:  "rate_limit",
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP извлекает IP адрес клиента из запроса.
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		for idx := 0; idx < len(xff); idx++ {
			if xff[idx] == ',' {
				return xff[:idx]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
