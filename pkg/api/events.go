package api

import "time"

// CreateEventRequest представляет запрос POST /api/events
type CreateEventRequest struct {
	Title         string     `json:"title"`
	Date          time.Time  `json:"date"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Color         string     `json:"color,omitempty"`
	GoogleEventID string     `json:"googleEventId,omitempty"`
	StaffInfo     string     `json:"staffInfo,omitempty"`
	PetBreed      string     `json:"petBreed,omitempty"`
}

// EventView — представление записи в ответах API
type EventView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Date          time.Time  `json:"date"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Color         string     `json:"color"`
	GoogleEventID string     `json:"googleEventId,omitempty"`
	StaffInfo     string     `json:"staffInfo,omitempty"`
	PetBreed      string     `json:"petBreed,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// EventResponse представляет ответ с одной записью
type EventResponse struct {
	Success bool       `json:"success"`
	Event   *EventView `json:"event"`
}

// EventsResponse представляет ответ со списком записей пользователя
type EventsResponse struct {
	Success bool        `json:"success"`
	Events  []EventView `json:"events"`
}

// ViewedPriceListsResponse представляет ответ GET /api/viewed-price-lists
type ViewedPriceListsResponse struct {
	Success bool     `json:"success"`
	Viewed  []string `json:"viewed"`
}

// MarkPriceListViewedRequest представляет запрос POST /api/viewed-price-lists
type MarkPriceListViewedRequest struct {
	ServiceTitle string `json:"serviceTitle"`
}
