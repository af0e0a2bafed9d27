// Package config загружает конфигурацию сервера из переменных окружения.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	JWT      JWTConfig
	Limits   RateLimitConfig
	Webhook  WebhookConfig
	Notify   NotifyConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// Origins фронтенда через запятую, помимо доменов Telegram
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"https://maxzer.ru"`
	// Domain для refresh cookie, пустой в локальной разработке
	CookieDomain string `env:"COOKIE_DOMAIN" env-default:""`
	CookieSecure bool   `env:"COOKIE_SECURE" env-default:"true"`
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" env-default:"booking.db"`
}

type TelegramConfig struct {
	// Токен бота, владеющего WebApp. Без него проверка initData невозможна.
	BotToken string `env:"TELEGRAM_BOT_TOKEN" env-required:"true"`
	// Максимальный возраст initData
	InitDataMaxAge time.Duration `env:"INITDATA_MAX_AGE" env-default:"24h"`
	// Принимать initData без криптографической проверки. Только для
	// локальной разработки, в проде обязан быть false.
	AllowUnverified bool `env:"AUTH_ALLOW_UNVERIFIED" env-default:"false"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
	TempTTL       time.Duration `env:"JWT_TEMP_TTL" env-default:"24h"`
}

type RateLimitConfig struct {
	AuthLimit     int           `env:"RATE_LIMIT_AUTH" env-default:"15"`
	ProfileLimit  int           `env:"RATE_LIMIT_PROFILE" env-default:"10"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"60s"`
	SessionsSweep time.Duration `env:"SESSIONS_SWEEP_INTERVAL" env-default:"1h"`
}

type WebhookConfig struct {
	// Секрет из X-Goog-Channel-Token, пустой отключает webhook
	SecretToken string `env:"WEBHOOK_SECRET_TOKEN" env-default:""`
}

type NotifyConfig struct {
	// Чат администратора для уведомлений о записях, 0 отключает
	AdminChatID int64 `env:"NOTIFY_ADMIN_CHAT_ID" env-default:"0"`
}

// MustLoad читает конфигурацию из переменных окружения
func MustLoad() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}

	return &cfg
}
