// Package csv loads the five reporting relations from a directory of CSV
// files. Headers are validated before any row is parsed; a malformed value
// fails the whole load so no partially typed snapshot ever reaches the
// engine.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

const (
	CustomersFile  = "customers.csv"
	ProductsFile   = "products.csv"
	OrdersFile     = "orders.csv"
	OrderItemsFile = "order_items.csv"
	SessionsFile   = "website_activity.csv"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads and types all five relations. It returns the first structural
// error encountered; on error no snapshot is returned.
func (l *Loader) Load() (*store.Snapshot, error) {
	snap := &store.Snapshot{}

	if err := l.loadFile(CustomersFile, customerColumns, func(r *row) error {
		c, err := parseCustomer(r)
		if err != nil {
			return err
		}
		snap.Customers = append(snap.Customers, c)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := l.loadFile(ProductsFile, productColumns, func(r *row) error {
		p, err := parseProduct(r)
		if err != nil {
			return err
		}
		snap.Products = append(snap.Products, p)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := l.loadFile(OrdersFile, orderColumns, func(r *row) error {
		o, err := parseOrder(r)
		if err != nil {
			return err
		}
		snap.Orders = append(snap.Orders, o)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := l.loadFile(OrderItemsFile, orderItemColumns, func(r *row) error {
		item, err := parseOrderItem(r)
		if err != nil {
			return err
		}
		snap.OrderItems = append(snap.OrderItems, item)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := l.loadFile(SessionsFile, sessionColumns, func(r *row) error {
		s, err := parseSession(r)
		if err != nil {
			return err
		}
		snap.Sessions = append(snap.Sessions, s)
		return nil
	}); err != nil {
		return nil, err
	}

	return snap, nil
}

var (
	customerColumns  = []string{"customer_id", "customer_name", "gender", "age", "city", "country", "signup_date"}
	productColumns   = []string{"product_id", "product_name", "category", "sub_category", "brand", "price", "cost"}
	orderColumns     = []string{"order_id", "customer_id", "order_date", "order_status", "payment_mode"}
	orderItemColumns = []string{"order_item_id", "order_id", "product_id", "quantity", "discount", "final_price"}
	sessionColumns   = []string{"session_id", "customer_id", "device_type", "traffic_source", "session_start", "pages_viewed", "time_spent", "purchase_made"}
)

// row gives parse helpers access to one record by column name and tracks
// position for error messages.
type row struct {
	file   string
	line   int
	index  map[string]int
	record []string
}

func (r *row) get(col string) string {
	return r.record[r.index[col]]
}

func (r *row) int64(col string) (int64, error) {
	v, err := strconv.ParseInt(r.get(col), 10, 64)
	if err != nil {
		return 0, r.fail(col, err)
	}
	return v, nil
}

func (r *row) int(col string) (int, error) {
	v, err := r.int64(col)
	return int(v), err
}

func (r *row) decimal(col string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(r.get(col))
	if err != nil {
		return decimal.Decimal{}, r.fail(col, err)
	}
	return v, nil
}

func (r *row) date(col string) (time.Time, error) {
	raw := r.get(col)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, r.fail(col, fmt.Errorf("unrecognized date %q", raw))
}

func (r *row) fail(col string, err error) error {
	return fmt.Errorf("%s line %d, column %s: %w", r.file, r.line, col, err)
}

func (l *Loader) loadFile(name string, columns []string, consume func(*row) error) error {
	path := filepath.Join(l.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open relation %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", name, err)
	}

	index, err := columnIndex(name, header, columns)
	if err != nil {
		return err
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s line %d: %w", name, line, err)
		}
		if err := consume(&row{file: name, line: line, index: index, record: record}); err != nil {
			return err
		}
	}
}

func columnIndex(file string, header, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", file, col)
		}
	}
	return index, nil
}

func parseCustomer(r *row) (store.Customer, error) {
	id, err := r.int64("customer_id")
	if err != nil {
		return store.Customer{}, err
	}
	age, err := r.int("age")
	if err != nil {
		return store.Customer{}, err
	}
	signup, err := r.date("signup_date")
	if err != nil {
		return store.Customer{}, err
	}
	return store.Customer{
		ID:         id,
		Name:       r.get("customer_name"),
		Gender:     r.get("gender"),
		Age:        age,
		City:       r.get("city"),
		Country:    r.get("country"),
		SignupDate: signup,
	}, nil
}

func parseProduct(r *row) (store.Product, error) {
	id, err := r.int64("product_id")
	if err != nil {
		return store.Product{}, err
	}
	price, err := r.decimal("price")
	if err != nil {
		return store.Product{}, err
	}
	cost, err := r.decimal("cost")
	if err != nil {
		return store.Product{}, err
	}
	return store.Product{
		ID:          id,
		Name:        r.get("product_name"),
		Category:    r.get("category"),
		SubCategory: r.get("sub_category"),
		Brand:       r.get("brand"),
		Price:       price,
		Cost:        cost,
	}, nil
}

func parseOrder(r *row) (store.Order, error) {
	id, err := r.int64("order_id")
	if err != nil {
		return store.Order{}, err
	}
	customerID, err := r.int64("customer_id")
	if err != nil {
		return store.Order{}, err
	}
	orderDate, err := r.date("order_date")
	if err != nil {
		return store.Order{}, err
	}
	return store.Order{
		ID:          id,
		CustomerID:  customerID,
		OrderDate:   orderDate,
		Status:      store.OrderStatus(r.get("order_status")),
		PaymentMode: r.get("payment_mode"),
	}, nil
}

func parseOrderItem(r *row) (store.OrderItem, error) {
	id, err := r.int64("order_item_id")
	if err != nil {
		return store.OrderItem{}, err
	}
	orderID, err := r.int64("order_id")
	if err != nil {
		return store.OrderItem{}, err
	}
	productID, err := r.int64("product_id")
	if err != nil {
		return store.OrderItem{}, err
	}
	qty, err := r.int64("quantity")
	if err != nil {
		return store.OrderItem{}, err
	}
	discount, err := r.decimal("discount")
	if err != nil {
		return store.OrderItem{}, err
	}
	finalPrice, err := r.decimal("final_price")
	if err != nil {
		return store.OrderItem{}, err
	}
	return store.OrderItem{
		ID:         id,
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   qty,
		Discount:   discount,
		FinalPrice: finalPrice,
	}, nil
}

func parseSession(r *row) (store.WebSession, error) {
	id, err := r.int64("session_id")
	if err != nil {
		return store.WebSession{}, err
	}
	customerID, err := r.int64("customer_id")
	if err != nil {
		return store.WebSession{}, err
	}
	start, err := r.date("session_start")
	if err != nil {
		return store.WebSession{}, err
	}
	pages, err := r.int("pages_viewed")
	if err != nil {
		return store.WebSession{}, err
	}
	spent, err := r.int("time_spent")
	if err != nil {
		return store.WebSession{}, err
	}
	return store.WebSession{
		ID:            id,
		CustomerID:    customerID,
		DeviceType:    r.get("device_type"),
		TrafficSource: r.get("traffic_source"),
		SessionStart:  start,
		PagesViewed:   pages,
		TimeSpent:     spent,
		PurchaseMade:  r.get("purchase_made"),
	}, nil
}
