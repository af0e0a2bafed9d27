package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// ErrInvalidInitData означает, что initData пуста, не подписана,
// устарела или не содержит данных пользователя.
var ErrInvalidInitData = errors.New("invalid telegram init data")

// UserIdentity — личность пользователя из поля user в initData.
// До прохождения проверки подписи данным доверять нельзя.
type UserIdentity struct {
	TelegramID int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	PhotoURL   string `json:"photo_url"`
}

// HasDisplayName сообщает, прислал ли Telegram хоть какие-то
// отображаемые данные. Без них выдается только временный токен.
func (u *UserIdentity) HasDisplayName() bool {
	return u.FirstName != "" || u.LastName != "" || u.Username != ""
}

// ResolverConfig настраивает Resolver.
type ResolverConfig struct {
	// BotToken — токен бота, которым Telegram подписывает initData.
	BotToken string
	// MaxAge задает максимальный возраст auth_date (0 = DefaultMaxAge).
	MaxAge time.Duration
	// AllowUnverifiedFallback разрешает принимать НЕПРОВЕРЕННУЮ initData,
	// когда токен бота не сконфигурирован. Это осознанное ослабление
	// контракта безопасности, требующее явного включения оператором.
	AllowUnverifiedFallback bool
	// Now подменяет источник текущего времени (nil = time.Now).
	Now func() time.Time
}

// Resolver извлекает личность пользователя из initData
// после проверки подписи.
type Resolver struct {
	logger *slog.Logger
	cfg    ResolverConfig
}

// NewResolver создает Resolver.
func NewResolver(logger *slog.Logger, cfg ResolverConfig) *Resolver {
	return &Resolver{
		logger: logger,
		cfg:    cfg,
	}
}

// Resolve проверяет подпись initData и возвращает личность пользователя.
// Любая причина отказа заворачивается в ErrInvalidInitData.
func (r *Resolver) Resolve(initData string) (*UserIdentity, error) {
	if initData == "" {
		return nil, fmt.Errorf("%w: empty init data", ErrInvalidInitData)
	}

	if r.cfg.BotToken == "" {
		if !r.cfg.AllowUnverifiedFallback {
			return nil, fmt.Errorf("%w: bot token is not configured", ErrInvalidInitData)
		}
		// Деградированный режим: структурная проверка без криптографии.
		r.logger.Warn("accepting UNVERIFIED telegram init data: bot token is not configured",
			slog.Bool("allow_unverified_fallback", true))
		return r.resolveUnverified(initData)
	}

	if !VerifyWithConfig(initData, r.cfg.BotToken, VerifyConfig{MaxAge: r.cfg.MaxAge, Now: r.cfg.Now}) {
		return nil, fmt.Errorf("%w: signature check failed", ErrInvalidInitData)
	}

	return parseUser(initData)
}

// resolveUnverified принимает initData без проверки подписи, но требует
// структурной полноты: hash, auth_date и user должны присутствовать.
func (r *Resolver) resolveUnverified(initData string) (*UserIdentity, error) {
	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed query string", ErrInvalidInitData)
	}
	if params.Get("hash") == "" {
		return nil, fmt.Errorf("%w: hash is missing", ErrInvalidInitData)
	}
	if params.Get("auth_date") == "" {
		return nil, fmt.Errorf("%w: auth_date is missing", ErrInvalidInitData)
	}
	return parseUser(initData)
}

// parseUser извлекает и декодирует поле user из initData.
func parseUser(initData string) (*UserIdentity, error) {
	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed query string", ErrInvalidInitData)
	}

	userJSON := params.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: user field is missing", ErrInvalidInitData)
	}

	var identity UserIdentity
	if err := json.Unmarshal([]byte(userJSON), &identity); err != nil {
		return nil, fmt.Errorf("%w: user field is not valid JSON", ErrInvalidInitData)
	}
	if identity.TelegramID <= 0 {
		return nil, fmt.Errorf("%w: user id is missing or not positive", ErrInvalidInitData)
	}

	return &identity, nil
}
