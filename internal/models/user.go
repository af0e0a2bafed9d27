package models

import "time"

// User представляет пользователя, созданного через Telegram-авторизацию.
// Ровно одна запись на каждый telegram_id.
type User struct {
	ID             string    `json:"id"`             // UUID пользователя
	TelegramID     string    `json:"telegramId"`     // числовой Telegram ID в строковой форме, уникальный
	Username       string    `json:"username"`       // Telegram username
	FirstName      string    `json:"firstName"`      // имя из Telegram
	LastName       string    `json:"lastName"`       // фамилия из Telegram
	PhotoURL       string    `json:"photoUrl"`       // ссылка на аватар
	Email          string    `json:"email"`          // синтетический email для совместимости схемы
	RealName       string    `json:"realName"`       // настоящее имя, задается вручную
	RealLastName   string    `json:"realLastName"`   // настоящая фамилия, задается вручную
	RealPatronymic string    `json:"realPatronymic"` // отчество, задается вручную
	CreatedAt      time.Time `json:"createdAt"`      // время создания
	UpdatedAt      time.Time `json:"updatedAt"`      // время последнего обновления
}

// HasProfile сообщает, дошел ли пользователь до полноценной регистрации
// или остался временной записью без отображаемых данных.
func (u *User) HasProfile() bool {
	return u.FirstName != "" || u.Username != ""
}

// AuthRecord хранит refresh token пользователя (1:1 с User).
// У пользователя не больше одного живого refresh token: выдача нового
// перезаписывает предыдущий, logout обнуляет значение.
type AuthRecord struct {
	UserID       string    `json:"user_id"`       // ID пользователя, уникальный
	RefreshToken *string   `json:"refresh_token"` // nil после logout
	UpdatedAt    time.Time `json:"updated_at"`    // время последней перезаписи
}

// Session представляет серверную запись о выданном access token.
// Проверяется строгим вариантом auth middleware по паре (token, user_id).
// Продления нет: истекшая сессия равнозначна отсутствующей.
type Session struct {
	Token     string    `json:"token"`      // сам access token
	UserID    string    `json:"user_id"`    // ID пользователя
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}
