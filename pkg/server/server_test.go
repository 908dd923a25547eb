package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/store"
)

type staticLoader struct {
	snap *store.Snapshot
}

func (s *staticLoader) Load(_ context.Context, _ string) (*store.Snapshot, error) {
	return s.snap, nil
}

func testWebAPI() *WebAPI {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	snap := &store.Snapshot{
		Customers: []store.Customer{{ID: 1, Name: "Alice Tan", City: "Singapore"}},
		Products:  []store.Product{{ID: 1, Name: "Trail Runner", Category: "Footwear", Cost: decimal.NewFromInt(750)}},
		Orders:    []store.Order{{ID: 1, CustomerID: 1, OrderDate: jan, Status: store.OrderCompleted}},
		OrderItems: []store.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 1, Quantity: 1, FinalPrice: decimal.NewFromInt(1000)},
		},
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewWebAPI(logger, Config{
		Addr: "127.0.0.1:0",
		Dependencies: Dependencies{
			Snapshots: &staticLoader{snap: snap},
			Profile:   "test",
		},
	})
}

func TestWebAPI_Routes(t *testing.T) {
	webAPI := testWebAPI()

	t.Run("list reports", func(t *testing.T) {
		rec := httptest.NewRecorder()
		webAPI.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var summaries []api.ReportSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
		assert.Len(t, summaries, 12)
	})

	t.Run("compute report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		webAPI.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/customers_by_city", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var table api.ReportTable
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Singapore", table.Rows[0][0])
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		webAPI.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
