package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/maxzer/booking/internal/accounts"
	"github.com/maxzer/booking/internal/calendar"
	"github.com/maxzer/booking/internal/metrics"
	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/storage"
	"github.com/maxzer/booking/internal/server/token"
	"github.com/maxzer/booking/internal/telegram"
)

const testBotToken = "1234567890:TEST-bot-token-for-handlers"

// mockUserStorage — in-memory реализация UserStorage для тестов
type mockUserStorage struct {
	users map[string]*models.User
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.TelegramID == user.TelegramID {
			return storage.ErrUserAlreadyExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserStorage) GetUserByTelegramID(_ context.Context, telegramID string) (*models.User, error) {
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

// mockAuthStorage — in-memory реализация AuthStorage
type mockAuthStorage struct {
	tokens map[string]string
}

func newMockAuthStorage() *mockAuthStorage {
	return &mockAuthStorage{tokens: make(map[string]string)}
}

func (m *mockAuthStorage) SaveRefreshToken(_ context.Context, userID, refreshToken string) error {
	m.tokens[userID] = refreshToken
	return nil
}

func (m *mockAuthStorage) GetAuthRecord(_ context.Context, userID string) (*models.AuthRecord, error) {
	tok, ok := m.tokens[userID]
	if !ok {
		return nil, storage.ErrAuthRecordNotFound
	}
	return &models.AuthRecord{UserID: userID, RefreshToken: &tok}, nil
}

func (m *mockAuthStorage) ClearRefreshToken(_ context.Context, userID string) error {
	if _, ok := m.tokens[userID]; !ok {
		return storage.ErrAuthRecordNotFound
	}
	delete(m.tokens, userID)
	return nil
}

// mockSessionStorage — in-memory реализация SessionStorage
type mockSessionStorage struct {
	sessions map[string]*models.Session
}

func newMockSessionStorage() *mockSessionStorage {
	return &mockSessionStorage{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionStorage) CreateSession(_ context.Context, session *models.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionStorage) GetSession(_ context.Context, tok, userID string) (*models.Session, error) {
	session, ok := m.sessions[tok]
	if !ok || session.UserID != userID || session.ExpiresAt.Before(time.Now()) {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockSessionStorage) DeleteExpiredSessions(_ context.Context) (int, error) {
	return 0, nil
}

// mockEventStorage — in-memory реализация EventStorage
type mockEventStorage struct {
	events map[string]*models.Event
}

func newMockEventStorage() *mockEventStorage {
	return &mockEventStorage{events: make(map[string]*models.Event)}
}

func (m *mockEventStorage) CreateEvent(_ context.Context, event *models.Event) error {
	clone := *event
	m.events[event.ID] = &clone
	return nil
}

func (m *mockEventStorage) GetUserEvents(_ context.Context, userID string) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range m.events {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockEventStorage) GetEvent(_ context.Context, eventID, userID string) (*models.Event, error) {
	e, ok := m.events[eventID]
	if !ok || e.UserID != userID {
		return nil, storage.ErrEventNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *mockEventStorage) GetEventByGoogleID(_ context.Context, googleEventID string) (*models.Event, error) {
	if googleEventID == "" {
		return nil, storage.ErrEventNotFound
	}
	for _, e := range m.events {
		if e.GoogleEventID == googleEventID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, storage.ErrEventNotFound
}

func (m *mockEventStorage) UpdateEventStatus(_ context.Context, eventID, status, color string) error {
	e, ok := m.events[eventID]
	if !ok {
		return storage.ErrEventNotFound
	}
	e.Status = status
	e.Color = color
	return nil
}

func (m *mockEventStorage) DeleteEvent(_ context.Context, eventID string) error {
	if _, ok := m.events[eventID]; !ok {
		return storage.ErrEventNotFound
	}
	delete(m.events, eventID)
	return nil
}

// mockPriceListStorage — in-memory реализация PriceListStorage
type mockPriceListStorage struct {
	views map[string]map[string]bool
}

func newMockPriceListStorage() *mockPriceListStorage {
	return &mockPriceListStorage{views: make(map[string]map[string]bool)}
}

func (m *mockPriceListStorage) GetViewedPriceLists(_ context.Context, userID string) ([]*models.ViewedPriceList, error) {
	var out []*models.ViewedPriceList
	for title := range m.views[userID] {
		out = append(out, &models.ViewedPriceList{
			UserID:       userID,
			ServiceTitle: title,
			IsViewed:     true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceTitle < out[j].ServiceTitle })
	return out, nil
}

func (m *mockPriceListStorage) MarkPriceListViewed(_ context.Context, userID, serviceTitle string) error {
	if m.views[userID] == nil {
		m.views[userID] = make(map[string]bool)
	}
	m.views[userID][serviceTitle] = true
	return nil
}

// mockCalendar — календарь с управляемыми ответами
type mockCalendar struct {
	insertID  string
	insertErr error
	deleted   []string
	changed   []calendar.ChangedEntry
}

func (m *mockCalendar) Insert(_ context.Context, _ calendar.Entry) (string, error) {
	return m.insertID, m.insertErr
}

func (m *mockCalendar) Delete(_ context.Context, eventID string) error {
	m.deleted = append(m.deleted, eventID)
	return nil
}

func (m *mockCalendar) ChangedSince(_ context.Context, _ time.Time) ([]calendar.ChangedEntry, error) {
	return m.changed, nil
}

func newTestCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

func newTokenService(auth storage.AuthStorage, sessions storage.SessionStorage) *token.Service {
	return token.NewService(slog.Default(), token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		TempTTL:       24 * time.Hour,
	}, auth, sessions)
}

// signedInitData собирает подписанную initData для пользователя
func signedInitData(t *testing.T, telegramID int64, firstName, username string) string {
	t.Helper()

	userJSON, err := json.Marshal(map[string]any{
		"id":         telegramID,
		"first_name": firstName,
		"username":   username,
	})
	require.NoError(t, err)

	params := url.Values{}
	params.Set("user", string(userJSON))
	params.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("query_id", fmt.Sprintf("AAH%d", telegramID))

	return telegram.Sign(params, testBotToken)
}

// authFixture собирает полный AuthHandler на моках
type authFixture struct {
	handler  *AuthHandler
	users    *mockUserStorage
	auth     *mockAuthStorage
	sessions *mockSessionStorage
	tokens   *token.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newMockUserStorage()
	auth := newMockAuthStorage()
	sessions := newMockSessionStorage()
	tokens := newTokenService(auth, sessions)

	resolver := telegram.NewResolver(slog.Default(), telegram.ResolverConfig{
		BotToken: testBotToken,
	})
	accountsSvc := accounts.NewService(slog.Default(), users)

	handler := NewAuthHandler(slog.Default(), resolver, accountsSvc, tokens,
		newTestCollector(), CookieConfig{
			Secure: true,
			MaxAge: 7 * 24 * time.Hour,
		})

	return &authFixture{
		handler:  handler,
		users:    users,
		auth:     auth,
		sessions: sessions,
		tokens:   tokens,
	}
}
