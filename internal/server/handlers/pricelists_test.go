package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxzer/booking/internal/models"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/pkg/api"
)

func priceListRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	user := &models.User{ID: "user-1", TelegramID: "123456789", FirstName: "Ivan"}
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestPriceLists_MarkAndList(t *testing.T) {
	store := newMockPriceListStorage()
	handler := NewPriceListsHandler(slog.Default(), store)

	rec := httptest.NewRecorder()
	handler.MarkViewed(rec, priceListRequest(t, http.MethodPost, "/api/price-lists/mark-viewed",
		api.MarkPriceListViewedRequest{ServiceTitle: "Стрижка"}))
	require.Equal(t, http.StatusOK, rec.Code)

	// Повторная отметка идемпотентна
	rec = httptest.NewRecorder()
	handler.MarkViewed(rec, priceListRequest(t, http.MethodPost, "/api/price-lists/mark-viewed",
		api.MarkPriceListViewedRequest{ServiceTitle: "Стрижка"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.MarkViewed(rec, priceListRequest(t, http.MethodPost, "/api/price-lists/mark-viewed",
		api.MarkPriceListViewedRequest{ServiceTitle: "Вычес"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Viewed(rec, priceListRequest(t, http.MethodGet, "/api/price-lists/viewed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ViewedPriceListsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Вычес", "Стрижка"}, resp.Viewed)
}

func TestPriceLists_MarkRequiresTitle(t *testing.T) {
	handler := NewPriceListsHandler(slog.Default(), newMockPriceListStorage())

	rec := httptest.NewRecorder()
	handler.MarkViewed(rec, priceListRequest(t, http.MethodPost, "/api/price-lists/mark-viewed",
		api.MarkPriceListViewedRequest{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
