package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/pkg/api"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestTelegramAuth_FirstLogin(t *testing.T) {
	f := newAuthFixture(t)

	rec := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TelegramAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Temp)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ivan", resp.User.FirstName)
	assert.Equal(t, "ivan", resp.User.Username)

	// Аккаунт создан
	user, err := f.users.GetUserByTelegramID(t.Context(), "123456789")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	// Refresh token ушел в HttpOnly cookie, а не в тело
	cookie := refreshCookie(t, rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.NotContains(t, rec.Body.String(), cookie.Value)

	// Access token проходит валидацию и имеет сессию
	claims, err := f.tokens.ValidateAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	_, err = f.sessions.GetSession(t.Context(), resp.AccessToken, user.ID)
	assert.NoError(t, err)
}

func TestTelegramAuth_RepeatLoginSameAccount(t *testing.T) {
	f := newAuthFixture(t)

	first := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})
	second := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})

	var r1, r2 api.TelegramAuthResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &r1))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &r2))
	assert.Equal(t, r1.User.ID, r2.User.ID)
	assert.Len(t, f.users.users, 1)
}

func TestTelegramAuth_InvalidInitData(t *testing.T) {
	f := newAuthFixture(t)

	rec := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: "user=%7B%22id%22%3A1%7D&auth_date=1&hash=deadbeef",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "auth", resp.ErrorType)
	assert.Empty(t, f.users.users)
}

func TestTelegramAuth_RealNamesSaved(t *testing.T) {
	f := newAuthFixture(t)

	rec := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData:     signedInitData(t, 123456789, "Ivan", "ivan"),
		RealName:     "Иван",
		RealLastname: "Петров",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	user, err := f.users.GetUserByTelegramID(t.Context(), "123456789")
	require.NoError(t, err)
	assert.Equal(t, "Иван", user.RealName)
	assert.Equal(t, "Петров", user.RealLastName)
}

func TestTelegramAuth_ProfileLessIdentityGetsTempToken(t *testing.T) {
	f := newAuthFixture(t)

	// Telegram скрыл имя и username
	rec := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 555000111, "", ""),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TelegramAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Temp)
	assert.NotEmpty(t, resp.AccessToken)

	// Ни cookie, ни refresh-записи, ни сессии
	assert.Nil(t, refreshCookie(t, rec))
	assert.Empty(t, f.auth.tokens)
	assert.Empty(t, f.sessions.sessions)
}

func TestCheckUser_Exists(t *testing.T) {
	f := newAuthFixture(t)

	postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})

	var req api.CheckUserRequest
	req.TelegramData.ID = 123456789
	rec := postJSON(t, f.handler.CheckUser, "/api/auth/check-user", req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CheckUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Exists)
	assert.True(t, resp.IsFullyAuthorized)
	assert.Equal(t, "123456789", resp.TelegramID)
	assert.Positive(t, resp.Timestamp)
}

func TestCheckUser_Unknown(t *testing.T) {
	f := newAuthFixture(t)

	var req api.CheckUserRequest
	req.TelegramData.ID = 987654321
	rec := postJSON(t, f.handler.CheckUser, "/api/auth/check-user", req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CheckUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Exists)
	assert.False(t, resp.IsFullyAuthorized)
}

func TestCheckUser_InvalidIDStillOK(t *testing.T) {
	f := newAuthFixture(t)

	var req api.CheckUserRequest
	req.TelegramData.ID = -5
	rec := postJSON(t, f.handler.CheckUser, "/api/auth/check-user", req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CheckUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Exists)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})
	cookie := refreshCookie(t, login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.handler.RefreshToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	claims, err := f.tokens.ValidateAccess(resp.AccessToken)
	require.NoError(t, err)

	var login1 api.TelegramAuthResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &login1))
	assert.Equal(t, login1.User.ID, claims.UserID)
}

func TestRefreshToken_MissingCookie(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	rec := httptest.NewRecorder()
	f.handler.RefreshToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid refresh token", resp.Error)
}

func TestRefreshToken_AfterLogoutRejected(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})
	cookie := refreshCookie(t, login)
	require.NotNil(t, cookie)

	logoutReq := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutRec := httptest.NewRecorder()
	f.handler.Logout(logoutRec, logoutReq)
	require.Equal(t, http.StatusOK, logoutRec.Code)

	refreshReq := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	refreshReq.AddCookie(cookie)
	refreshRec := httptest.NewRecorder()
	f.handler.RefreshToken(refreshRec, refreshReq)

	// Единый ответ: по нему нельзя отличить отозванный токен от поддельного
	assert.Equal(t, http.StatusUnauthorized, refreshRec.Code)
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(refreshRec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid refresh token", resp.Error)
}

func TestLogout_WithCookie(t *testing.T) {
	f := newAuthFixture(t)

	login := postJSON(t, f.handler.TelegramAuth, "/api/auth/telegram", api.TelegramAuthRequest{
		InitData: signedInitData(t, 123456789, "Ivan", "ivan"),
	})
	cookie := refreshCookie(t, login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully logged out", resp.Message)

	// Cookie погашена
	cleared := refreshCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestLogout_WithoutCookie(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Already logged out", resp.Message)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)

	user := &models.User{ID: "user-1", TelegramID: "123456789", FirstName: "Ivan"}
	require.NoError(t, f.users.CreateUser(t.Context(), user))

	data, err := json.Marshal(api.ProfileUpdateRequest{
		RealName:     "Иван",
		RealLastname: "Сидоров",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile", bytes.NewReader(data))
	req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	f.handler.UpdateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ProfileUpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Иван", resp.User.RealName)
	assert.Equal(t, "Сидоров", resp.User.RealLastName)

	stored, err := f.users.GetUserByID(t.Context(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Иван", stored.RealName)
}
