package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Month identifies a calendar month; order dates are truncated to it when
// reports aggregate over time.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

type CategorySales struct {
	Category   string
	TotalSales decimal.Decimal
}

type MonthlyRevenue struct {
	Month   Month
	Revenue decimal.Decimal
}

type ProductRevenue struct {
	ProductID    int64
	ProductName  string
	TotalQty     int64
	TotalRevenue decimal.Decimal
}

type CustomerClassCount struct {
	CustomerType string // "New" or "Repeat"
	Count        int
}

type CityCustomerCount struct {
	City           string
	TotalCustomers int
}

type TrafficConversion struct {
	TrafficSource  string
	TotalSessions  int
	Purchases      int
	ConversionRate decimal.Decimal
}

type MonthlyGrowth struct {
	Month   Month
	Revenue decimal.Decimal
	// GrowthPercent is unset for the first month and whenever the previous
	// month's revenue is zero.
	GrowthPercent decimal.NullDecimal
}

type CustomerValue struct {
	CustomerID    int64
	CustomerName  string
	LifetimeValue decimal.Decimal
}

type CategoryAOV struct {
	Category      string
	TotalRevenue  decimal.Decimal
	TotalOrders   int
	AvgOrderValue decimal.NullDecimal
}

type CategoryMargin struct {
	Category      string
	TotalRevenue  decimal.Decimal
	TotalProfit   decimal.Decimal
	MarginPercent decimal.NullDecimal
}

type CustomerRFM struct {
	CustomerID   int64
	CustomerName string
	RecencyDays  int
	Frequency    int
	Monetary     decimal.Decimal
	Segment      string // "VIP", "Loyal" or "Occasional"
}

type CategoryPerformance struct {
	Month        Month
	Category     string
	TotalRevenue decimal.Decimal
	TotalOrders  int
}

// ReportTable is the rendering-agnostic shape every report can be flattened
// into; the CLI prints it as a table, the web API encodes it as JSON.
type ReportTable struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]any
}
