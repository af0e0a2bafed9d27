// Package telegram реализует проверку подписи Telegram WebApp initData
// и извлечение личности пользователя из проверенных данных.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxAge задает максимальный возраст auth_date по умолчанию (24 часа).
const DefaultMaxAge = 24 * time.Hour

// webAppSecretSeed — константный ключ первой ступени HMAC по схеме Telegram WebApp.
// Секрет проверки подписи — это БАЙТЫ HMAC-SHA256(key="WebAppData", msg=botToken),
// а не сам токен бота.
const webAppSecretSeed = "WebAppData"

// VerifyConfig настраивает поведение VerifyWithConfig.
type VerifyConfig struct {
	// MaxAge задает максимальный возраст auth_date.
	// Нулевое значение означает DefaultMaxAge.
	MaxAge time.Duration
	// Now подменяет источник текущего времени.
	// nil означает time.Now.
	Now func() time.Time
}

// Verify проверяет подпись и свежесть initData с настройками по умолчанию.
func Verify(initData, botToken string) bool {
	return VerifyWithConfig(initData, botToken, VerifyConfig{})
}

// VerifyWithConfig проверяет, что initData действительно выдана Telegram
// для данного бота и не устарела. Любой дефект входа (пустая строка,
// битый percent-encoding, нечисловой auth_date, отсутствующий hash)
// дает false, функция никогда не паникует и не возвращает ошибок.
func VerifyWithConfig(initData, botToken string, cfg VerifyConfig) bool {
	if initData == "" || botToken == "" {
		return false
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	params, err := url.ParseQuery(initData)
	if err != nil {
		return false
	}

	hash := params.Get("hash")
	authDateValue := params.Get("auth_date")
	if hash == "" || authDateValue == "" {
		return false
	}

	// Проверка свежести: это не криптографическое свойство,
	// а защита от повторного использования старой initData.
	authDate, err := strconv.ParseInt(authDateValue, 10, 64)
	if err != nil {
		return false
	}
	if nowFn().Unix()-authDate > int64(maxAge.Seconds()) {
		return false
	}

	expected, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}

	calculated := calculateHash(params, botToken)

	// hmac.Equal дает сравнение за постоянное время.
	return hmac.Equal(calculated, expected)
}

// calculateHash вычисляет подпись initData по схеме Telegram WebApp:
// HMAC-SHA256(key=HMAC-SHA256("WebAppData", botToken), msg=dataCheckString).
func calculateHash(params url.Values, botToken string) []byte {
	seed := hmac.New(sha256.New, []byte(webAppSecretSeed))
	seed.Write([]byte(botToken))
	secret := seed.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(dataCheckString(params)))
	return mac.Sum(nil)
}

// dataCheckString строит каноническое представление initData:
// пары key=value без hash, отсортированные по ключу и склеенные через \n.
func dataCheckString(params url.Values) string {
	pairs := make([]string, 0, len(params))
	for key := range params {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+params.Get(key))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// Sign подписывает произвольный набор параметров initData токеном бота.
// Используется инструментом cmd/initdata и тестами для генерации
// валидных тестовых данных, продакшен-код подпись только проверяет.
func Sign(params url.Values, botToken string) string {
	signed := url.Values{}
	for key, values := range params {
		if key == "hash" {
			continue
		}
		for _, v := range values {
			signed.Add(key, v)
		}
	}
	hash := hex.EncodeToString(calculateHash(signed, botToken))
	signed.Set("hash", hash)
	return signed.Encode()
}
