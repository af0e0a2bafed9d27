// Package token выдает и проверяет учетные данные: короткоживущий access
// token и долгоживущий refresh token с отдельным секретом, хранимый на
// сервере для возможности отзыва.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
)

// Вид access-учетки. Временная выдается личностям без профиля и
// не пропускается строгим auth middleware.
const (
	KindFull = "full"
	KindTemp = "temp"
)

// refreshTokenType — обязательное значение tokenType в refresh-учетке.
const refreshTokenType = "refresh"

var (
	// ErrTokenGeneration означает сбой подписи или сохранения токена.
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidRefreshToken покрывает ЛЮБОЙ отказ обмена refresh token:
	// битая подпись, не тот tokenType, отозванный или несовпавший токен.
	// Причина наружу не раскрывается, чтобы не давать оракула.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Claims представляет payload access token.
type Claims struct {
	UserID     string `json:"userId"`
	TelegramID string `json:"telegramId,omitempty"`
	Kind       string `json:"kind"`
	jwt.RegisteredClaims
}

// RefreshClaims представляет payload refresh token.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Pair — пара учетных данных, выдаваемая при входе.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Config содержит секреты и сроки жизни токенов.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration // 15 минут
	RefreshTTL    time.Duration // 7 дней
	TempTTL       time.Duration // 1 день, для временных учеток
}

// Service выдает, обменивает и отзывает учетные данные.
type Service struct {
	logger   *slog.Logger
	cfg      Config
	auth     storage.AuthStorage
	sessions storage.SessionStorage
	now      func() time.Time
}

// NewService создает Service.
func NewService(logger *slog.Logger, cfg Config, auth storage.AuthStorage, sessions storage.SessionStorage) *Service {
	return &Service{
		logger:   logger,
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		now:      time.Now,
	}
}

// Issue выдает пару access+refresh для пользователя с полным профилем.
// Refresh token сохраняется в auth-записи (перезаписывая прежний — у
// пользователя не бывает двух живых refresh token), для access token
// создается серверная сессия.
func (s *Service) Issue(ctx context.Context, user *models.User) (*Pair, error) {
	accessToken, err := s.issueAccess(ctx, user.ID, user.TelegramID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	refreshClaims := RefreshClaims{
		UserID:    user.ID,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString(s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}

	if err := s.auth.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// IssueTemporary выдает временную access-учетку личности без профиля.
// Сессия и refresh token не создаются: временная учетка не проходит
// строгий auth middleware и не подлежит обмену.
func (s *Service) IssueTemporary(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		Kind:       KindTemp,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TempTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(s.cfg.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}

	return token, nil
}

// Refresh обменивает refresh token на новый access token.
// Токен обязан иметь валидную подпись refresh-секретом, tokenType
// "refresh" и ПОБАЙТОВО совпадать с сохраненным в auth-записи — так
// отлавливаются отозванные и ротированные учетки. Любой отказ дает
// единый ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ParseRefresh(refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh token rejected", slog.Any("error", err))
		return "", ErrInvalidRefreshToken
	}

	record, err := s.auth.GetAuthRecord(ctx, claims.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh rejected: no auth record",
			slog.String("user_id", claims.UserID))
		return "", ErrInvalidRefreshToken
	}

	if record.RefreshToken == nil || *record.RefreshToken != refreshToken {
		s.logger.WarnContext(ctx, "refresh rejected: token revoked or rotated",
			slog.String("user_id", claims.UserID))
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.issueAccess(ctx, claims.UserID, "")
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

// Invalidate обнуляет сохраненный refresh token пользователя.
// Отсутствие auth-записи — не ошибка: отзывать нечего.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	err := s.auth.ClearRefreshToken(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrAuthRecordNotFound) {
		return fmt.Errorf("failed to invalidate refresh token: %w", err)
	}
	return nil
}

// ValidateAccess проверяет подпись и срок действия access token.
func (s *Service) ValidateAccess(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.AccessSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid access token")
}

// ParseRefresh проверяет подпись refresh token и его tokenType.
func (s *Service) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.RefreshSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh token: %w", err)
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid refresh token")
	}

	if claims.TokenType != refreshTokenType {
		return nil, fmt.Errorf("token is not a refresh token")
	}

	return claims, nil
}

// issueAccess подписывает access token и создает для него сессию.
func (s *Service) issueAccess(ctx context.Context, userID, telegramID string) (string, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)

	claims := Claims{
		UserID:     userID,
		TelegramID: telegramID,
		Kind:       KindFull,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(s.cfg.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}

	session := &models.Session{
		Token:     accessToken,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}

	return accessToken, nil
}
