// Package warehouse reads the five reporting relations from a SQL warehouse
// over database/sql. Snowflake and Databricks SQL drivers are linked in;
// which one is used is a per-profile choice.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

var supportedDrivers = map[string]bool{
	"snowflake":  true,
	"databricks": true,
}

// Open connects to the warehouse described by the profile.
func Open(profile *Profile) (*sql.DB, error) {
	if !supportedDrivers[profile.Driver] {
		return nil, fmt.Errorf("unsupported warehouse driver: %q", profile.Driver)
	}
	dsn, err := profile.ResolveDSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(profile.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s warehouse: %w", profile.Driver, err)
	}
	return db, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &Store{db: db}, nil
}

// Load pulls all five relations in one pass. Any query or scan failure
// aborts the whole load.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := &store.Snapshot{}

	if err := s.loadCustomers(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadProducts(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadOrders(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadOrderItems(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadSessions(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (s *Store) loadCustomers(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, customer_name, gender, age, city, country, signup_date
		FROM customers`)
	if err != nil {
		return fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c store.Customer
		var signup time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.Gender, &c.Age, &c.City, &c.Country, &signup); err != nil {
			return fmt.Errorf("scan customer: %w", err)
		}
		c.SignupDate = signup
		snap.Customers = append(snap.Customers, c)
	}
	return rows.Err()
}

func (s *Store) loadProducts(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, category, sub_category, brand, price, cost
		FROM products`)
	if err != nil {
		return fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p store.Product
		var price, cost float64
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SubCategory, &p.Brand, &price, &cost); err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		p.Price = decimal.NewFromFloat(price)
		p.Cost = decimal.NewFromFloat(cost)
		snap.Products = append(snap.Products, p)
	}
	return rows.Err()
}

func (s *Store) loadOrders(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, customer_id, order_date, order_status, payment_mode
		FROM orders`)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o store.Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &status, &o.PaymentMode); err != nil {
			return fmt.Errorf("scan order: %w", err)
		}
		o.Status = store.OrderStatus(status)
		snap.Orders = append(snap.Orders, o)
	}
	return rows.Err()
}

func (s *Store) loadOrderItems(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_item_id, order_id, product_id, quantity, discount, final_price
		FROM order_items`)
	if err != nil {
		return fmt.Errorf("query order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item store.OrderItem
		var discount, finalPrice float64
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &discount, &finalPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.Discount = decimal.NewFromFloat(discount)
		item.FinalPrice = decimal.NewFromFloat(finalPrice)
		snap.OrderItems = append(snap.OrderItems, item)
	}
	return rows.Err()
}

func (s *Store) loadSessions(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, customer_id, device_type, traffic_source, session_start, pages_viewed, time_spent, purchase_made
		FROM website_activity`)
	if err != nil {
		return fmt.Errorf("query website_activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ws store.WebSession
		if err := rows.Scan(&ws.ID, &ws.CustomerID, &ws.DeviceType, &ws.TrafficSource,
			&ws.SessionStart, &ws.PagesViewed, &ws.TimeSpent, &ws.PurchaseMade); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		snap.Sessions = append(snap.Sessions, ws)
	}
	return rows.Err()
}
