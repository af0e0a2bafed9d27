package models

import "time"

// Статусы события бронирования.
const (
	EventStatusConfirmed = "confirmed"
	EventStatusCancelled = "cancelled"
)

// Цвета события в календаре.
const (
	EventColorDefault   = "#4caf50"
	EventColorCancelled = "#f44336"
)

// Event представляет бронирование: услуга, сотрудник, время.
// Запись зеркалируется во внешний календарь (GoogleEventID), статус
// синхронизируется обратно через webhook.
type Event struct {
	ID            string     `json:"id"`            // UUID события
	UserID        string     `json:"userId"`        // владелец бронирования
	Title         string     `json:"title"`         // название услуги
	Date          time.Time  `json:"date"`          // начало
	EndDate       *time.Time `json:"endDate"`       // конец, может отсутствовать
	Color         string     `json:"color"`         // цвет в календаре
	GoogleEventID string     `json:"googleEventId"` // ID зеркальной записи в календаре
	StaffInfo     string     `json:"staffInfo"`     // JSON с данными сотрудника
	PetBreed      string     `json:"petBreed"`      // порода питомца
	Status        string     `json:"status"`        // confirmed | cancelled
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ViewedPriceList отмечает, что пользователь просмотрел прайс-лист услуги.
// Уникальность по паре (user_id, service_title).
type ViewedPriceList struct {
	UserID       string    `json:"userId"`
	ServiceTitle string    `json:"serviceTitle"`
	IsViewed     bool      `json:"isViewed"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
