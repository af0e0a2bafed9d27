package storage

import (
	"context"

	"github.com/maxzer/booking/internal/models"
)

// EventStorage defines interface for booking event persistence
type EventStorage interface {
	// CreateEvent creates a new booking event
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetUserEvents retrieves all events of a user ordered by date ascending
	GetUserEvents(ctx context.Context, userID string) ([]*models.Event, error)

	// GetEvent retrieves an event by ID scoped to its owner
	// Returns ErrEventNotFound if missing or owned by another user
	GetEvent(ctx context.Context, eventID, userID string) (*models.Event, error)

	// GetEventByGoogleID retrieves an event by its calendar mirror ID
	// Returns ErrEventNotFound if no event references this calendar entry
	GetEventByGoogleID(ctx context.Context, googleEventID string) (*models.Event, error)

	// UpdateEventStatus sets status and color of an event
	// Returns ErrEventNotFound if event doesn't exist
	UpdateEventStatus(ctx context.Context, eventID, status, color string) error

	// DeleteEvent deletes an event by ID
	// Returns ErrEventNotFound if event doesn't exist
	DeleteEvent(ctx context.Context, eventID string) error
}

// PriceListStorage defines interface for viewed price list marks
type PriceListStorage interface {
	// GetViewedPriceLists retrieves all price list views of a user
	GetViewedPriceLists(ctx context.Context, userID string) ([]*models.ViewedPriceList, error)

	// MarkPriceListViewed upserts a view mark by (userID, serviceTitle)
	MarkPriceListViewed(ctx context.Context, userID, serviceTitle string) error
}
