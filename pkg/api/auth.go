// Package api содержит DTO запросов и ответов HTTP API.
// Имена JSON-полей — часть контракта с фронтендом, менять нельзя.
package api

// TelegramAuthRequest представляет запрос POST /api/auth/telegram
type TelegramAuthRequest struct {
	InitData       string `json:"initData"`                  // сырая initData из Telegram WebApp
	RealName       string `json:"real_name,omitempty"`       // настоящее имя, опционально
	RealLastname   string `json:"real_lastname,omitempty"`   // настоящая фамилия, опционально
	RealPatronymic string `json:"real_patronymic,omitempty"` // отчество, опционально
}

// AuthUser — представление пользователя в ответах авторизации
type AuthUser struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Username       string `json:"username"`
	PhotoURL       string `json:"photoUrl"`
	RealName       string `json:"realName,omitempty"`
	RealLastName   string `json:"realLastName,omitempty"`
	RealPatronymic string `json:"realPatronymic,omitempty"`
}

// TelegramAuthResponse представляет успешный ответ авторизации.
// Refresh token в теле не возвращается — он уходит в HttpOnly cookie.
type TelegramAuthResponse struct {
	AccessToken string    `json:"accessToken"`
	User        *AuthUser `json:"user,omitempty"`
	Temp        bool      `json:"temp,omitempty"` // временная учетка без профиля
	Success     bool      `json:"success"`
}

// CheckUserRequest представляет запрос POST /api/auth/check-user
type CheckUserRequest struct {
	TelegramData struct {
		ID int64 `json:"id"`
	} `json:"telegram_data"`
	Action   string `json:"action,omitempty"`
	InitData string `json:"initData,omitempty"`
}

// CheckUserResponse представляет ответ check-user.
// Эндпоинт никогда не отдает жесткую ошибку наружу.
type CheckUserResponse struct {
	Exists            bool   `json:"exists"`
	TelegramID        string `json:"telegramId"`
	Success           bool   `json:"success"`
	IsFullyAuthorized bool   `json:"isFullyAuthorized"`
	Timestamp         int64  `json:"timestamp"`
}

// RefreshResponse представляет ответ POST /api/auth/refresh-token
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// ProfileUpdateRequest представляет запрос POST /api/auth/profile
type ProfileUpdateRequest struct {
	RealName       string `json:"real_name,omitempty"`
	RealLastname   string `json:"real_lastname,omitempty"`
	RealPatronymic string `json:"real_patronymic,omitempty"`
}

// ProfileUpdateResponse представляет ответ обновления профиля
type ProfileUpdateResponse struct {
	Success bool      `json:"success"`
	User    *AuthUser `json:"user"`
}

// UserResponse представляет ответ GET /api/users/{id}
type UserResponse struct {
	Success bool      `json:"success"`
	User    *AuthUser `json:"user"`
}

// MessageResponse — ответ с одним информационным сообщением (logout и т.п.)
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success    bool   `json:"success"`              // всегда false
	Error      string `json:"error"`                // описание ошибки
	ErrorType  string `json:"errorType,omitempty"`  // категория из таксономии ошибок
	RetryAfter int    `json:"retryAfter,omitempty"` // секунды до следующей попытки (429)
}
