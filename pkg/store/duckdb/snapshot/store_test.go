package snapshot

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func sampleSnapshot() *store.Snapshot {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &store.Snapshot{
		Customers: []store.Customer{
			{ID: 1, Name: "Alice Tan", Gender: "Female", Age: 31, City: "Singapore", Country: "Singapore", SignupDate: jan15},
		},
		Products: []store.Product{
			{ID: 1, Name: "Trail Runner", Category: "Footwear", SubCategory: "Running", Brand: "Stride",
				Price: decimal.RequireFromString("1100.00"), Cost: decimal.RequireFromString("750.00")},
		},
		Orders: []store.Order{
			{ID: 1, CustomerID: 1, OrderDate: jan15, Status: store.OrderCompleted, PaymentMode: "Card"},
		},
		OrderItems: []store.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 1, Quantity: 2,
				Discount: decimal.RequireFromString("100.00"), FinalPrice: decimal.RequireFromString("1000.00")},
		},
		Sessions: []store.WebSession{
			{ID: 1, CustomerID: 1, DeviceType: "Mobile", TrafficSource: "google",
				SessionStart: jan15, PagesViewed: 6, TimeSpent: 420, PurchaseMade: "Yes"},
		},
	}
}

func TestSnapshotStore_ReplaceAndLoad(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Replace(ctx, sampleSnapshot()))

	snap, err := f.store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "Alice Tan", snap.Customers[0].Name)
	assert.Equal(t, "Singapore", snap.Customers[0].City)

	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Footwear", snap.Products[0].Category)
	assert.True(t, decimal.RequireFromString("750").Equal(snap.Products[0].Cost),
		"cost survived the roundtrip as %s", snap.Products[0].Cost)

	require.Len(t, snap.Orders, 1)
	assert.Equal(t, store.OrderCompleted, snap.Orders[0].Status)

	require.Len(t, snap.OrderItems, 1)
	assert.EqualValues(t, 2, snap.OrderItems[0].Quantity)
	assert.True(t, decimal.RequireFromString("1000").Equal(snap.OrderItems[0].FinalPrice))

	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, "google", snap.Sessions[0].TrafficSource)
	assert.Equal(t, "Yes", snap.Sessions[0].PurchaseMade)
}

func TestSnapshotStore_ReplaceIsIdempotentSwap(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Replace(ctx, sampleSnapshot()))
	require.NoError(t, f.store.Replace(ctx, sampleSnapshot()))

	var count int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count))
	assert.Equal(t, 1, count, "replace must not accumulate rows")
}

func TestSnapshotStore_Stats(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	stats, err := f.store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Orders)

	require.NoError(t, f.store.Replace(ctx, sampleSnapshot()))

	stats, err = f.store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Customers)
	assert.EqualValues(t, 1, stats.Products)
	assert.EqualValues(t, 1, stats.Orders)
	assert.EqualValues(t, 1, stats.OrderItems)
	assert.EqualValues(t, 1, stats.Sessions)
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}
