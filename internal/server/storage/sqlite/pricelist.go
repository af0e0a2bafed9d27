package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/maxzer/booking/internal/models"
)

// GetViewedPriceLists retrieves all price list views of a user
func (s *Storage) GetViewedPriceLists(ctx context.Context, userID string) ([]*models.ViewedPriceList, error) {
	query := `
		SELECT user_id, service_title, is_viewed, updated_at
		FROM viewed_price_lists
		WHERE user_id = ?
		ORDER BY service_title ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewed price lists: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var views []*models.ViewedPriceList

	for rows.Next() {
		view := &models.ViewedPriceList{}
		if err := rows.Scan(
			&view.UserID,
			&view.ServiceTitle,
			&view.IsViewed,
			&view.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan viewed price list: %w", err)
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return views, nil
}

// MarkPriceListViewed upserts a view mark by (userID, serviceTitle)
func (s *Storage) MarkPriceListViewed(ctx context.Context, userID, serviceTitle string) error {
	query := `
		INSERT INTO viewed_price_lists (user_id, service_title, is_viewed, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, service_title) DO UPDATE SET
			is_viewed = 1,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, userID, serviceTitle, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark price list viewed: %w", err)
	}

	return nil
}
