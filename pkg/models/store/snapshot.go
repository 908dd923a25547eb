package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderReturned  OrderStatus = "returned"
)

type Customer struct {
	ID         int64
	Name       string
	Gender     string
	Age        int
	City       string
	Country    string
	SignupDate time.Time
}

type Product struct {
	ID          int64
	Name        string
	Category    string
	SubCategory string
	Brand       string
	Price       decimal.Decimal
	Cost        decimal.Decimal
}

type Order struct {
	ID          int64
	CustomerID  int64
	OrderDate   time.Time
	Status      OrderStatus
	PaymentMode string
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int64
	Discount   decimal.Decimal
	FinalPrice decimal.Decimal
}

type WebSession struct {
	ID            int64
	CustomerID    int64
	DeviceType    string
	TrafficSource string
	SessionStart  time.Time
	PagesViewed   int
	TimeSpent     int
	PurchaseMade  string
}

// Snapshot is a read-only view of the five relations loaded from a source.
// Nothing in the reporting path mutates it; referential gaps between
// relations are tolerated and resolved with inner-join semantics downstream.
type Snapshot struct {
	Customers  []Customer
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Sessions   []WebSession
}
