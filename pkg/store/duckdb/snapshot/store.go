// Package snapshot persists the five reporting relations in an embedded
// DuckDB database so the web server can serve reports without re-parsing the
// source files on every request.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

type Stats struct {
	Customers  int64
	Products   int64
	Orders     int64
	OrderItems int64
	Sessions   int64
}

type Store interface {
	// Replace swaps the stored snapshot for the given one atomically.
	Replace(ctx context.Context, snap *store.Snapshot) error
	// Load reads the full snapshot back.
	Load(ctx context.Context) (*store.Snapshot, error)
	// Stats reports row counts per relation.
	Stats(ctx context.Context) (*Stats, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

var tables = []string{"customers", "products", "orders", "order_items", "website_activity"}

func (s *snapshotStore) Replace(ctx context.Context, snap *store.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertCustomers(ctx, tx, snap.Customers); err != nil {
		return err
	}
	if err := insertProducts(ctx, tx, snap.Products); err != nil {
		return err
	}
	if err := insertOrders(ctx, tx, snap.Orders); err != nil {
		return err
	}
	if err := insertOrderItems(ctx, tx, snap.OrderItems); err != nil {
		return err
	}
	if err := insertSessions(ctx, tx, snap.Sessions); err != nil {
		return err
	}

	return tx.Commit()
}

func insertCustomers(ctx context.Context, tx *sql.Tx, customers []store.Customer) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO customers (customer_id, customer_name, gender, age, city, country, signup_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare customers: %w", err)
	}
	defer stmt.Close()

	for _, c := range customers {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Gender, c.Age, c.City, c.Country, c.SignupDate); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	return nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, products []store.Product) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (product_id, product_name, category, sub_category, brand, price, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare products: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Category, p.SubCategory, p.Brand,
			p.Price.InexactFloat64(), p.Cost.InexactFloat64()); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, orders []store.Order) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (order_id, customer_id, order_date, order_status, payment_mode)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare orders: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx, o.ID, o.CustomerID, o.OrderDate, string(o.Status), o.PaymentMode); err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}
	return nil
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, items []store.OrderItem) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_item_id, order_id, product_id, quantity, discount, final_price)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare order_items: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.OrderID, item.ProductID, item.Quantity,
			item.Discount.InexactFloat64(), item.FinalPrice.InexactFloat64()); err != nil {
			return fmt.Errorf("insert order item %d: %w", item.ID, err)
		}
	}
	return nil
}

func insertSessions(ctx context.Context, tx *sql.Tx, sessions []store.WebSession) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO website_activity (session_id, customer_id, device_type, traffic_source, session_start, pages_viewed, time_spent, purchase_made)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare website_activity: %w", err)
	}
	defer stmt.Close()

	for _, s := range sessions {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.CustomerID, s.DeviceType, s.TrafficSource,
			s.SessionStart, s.PagesViewed, s.TimeSpent, s.PurchaseMade); err != nil {
			return fmt.Errorf("insert session %d: %w", s.ID, err)
		}
	}
	return nil
}

func (s *snapshotStore) Load(ctx context.Context) (*store.Snapshot, error) {
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

func (s *snapshotStore) loadCustomers(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, customer_name, gender, age, city, country, signup_date
		FROM customers ORDER BY customer_id`)
	if err != nil {
		return fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c store.Customer
		var signup sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Gender, &c.Age, &c.City, &c.Country, &signup); err != nil {
			return fmt.Errorf("scan customer: %w", err)
		}
		c.SignupDate = signup.Time
		snap.Customers = append(snap.Customers, c)
	}
	return rows.Err()
}

func (s *snapshotStore) loadProducts(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, category, sub_category, brand, price, cost
		FROM products ORDER BY product_id`)
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

func (s *snapshotStore) loadOrders(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, customer_id, order_date, order_status, payment_mode
		FROM orders ORDER BY order_id`)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o store.Order
		var orderDate time.Time
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &orderDate, &status, &o.PaymentMode); err != nil {
			return fmt.Errorf("scan order: %w", err)
		}
		o.OrderDate = orderDate
		o.Status = store.OrderStatus(status)
		snap.Orders = append(snap.Orders, o)
	}
	return rows.Err()
}

func (s *snapshotStore) loadOrderItems(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_item_id, order_id, product_id, quantity, discount, final_price
		FROM order_items ORDER BY order_item_id`)
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

func (s *snapshotStore) loadSessions(ctx context.Context, snap *store.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, customer_id, device_type, traffic_source, session_start, pages_viewed, time_spent, purchase_made
		FROM website_activity ORDER BY session_id`)
	if err != nil {
		return fmt.Errorf("query website_activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ws store.WebSession
		var start sql.NullTime
		if err := rows.Scan(&ws.ID, &ws.CustomerID, &ws.DeviceType, &ws.TrafficSource,
			&start, &ws.PagesViewed, &ws.TimeSpent, &ws.PurchaseMade); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		ws.SessionStart = start.Time
		snap.Sessions = append(snap.Sessions, ws)
	}
	return rows.Err()
}

func (s *snapshotStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	targets := map[string]*int64{
		"customers":        &stats.Customers,
		"products":         &stats.Products,
		"orders":           &stats.Orders,
		"order_items":      &stats.OrderItems,
		"website_activity": &stats.Sessions,
	}
	for _, table := range tables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(targets[table]); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
	}
	return stats, nil
}
