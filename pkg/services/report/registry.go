package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

var ErrUnknownReport = errors.New("unknown report")

const (
	topProductLimit  = 10
	topCustomerLimit = 5
)

// Definition describes one named report: how it is titled, which columns it
// produces and how to compute it from an engine.
type Definition struct {
	Name    string
	Title   string
	Columns []string
	run     func(e *Engine, asOf time.Time) [][]any
}

var definitions = []Definition{
	{
		Name:    "sales_by_category",
		Title:   "Sales by Category (completed orders)",
		Columns: []string{"category", "total_sales"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.SalesByCategory() {
				out = append(out, []any{r.Category, r.TotalSales})
			}
			return out
		},
	},
	{
		Name:    "monthly_sales_trend",
		Title:   "Monthly Sales Trend (completed orders)",
		Columns: []string{"month", "revenue"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.MonthlySalesTrend() {
				out = append(out, []any{r.Month.String(), r.Revenue})
			}
			return out
		},
	},
	{
		Name:    "top_products",
		Title:   "Top 10 Products by Revenue",
		Columns: []string{"product_id", "product_name", "total_qty", "total_revenue"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.TopProducts(topProductLimit) {
				out = append(out, []any{r.ProductID, r.ProductName, r.TotalQty, r.TotalRevenue})
			}
			return out
		},
	},
	{
		Name:    "new_vs_repeat_customers",
		Title:   "New vs Repeat Customers",
		Columns: []string{"customer_type", "count"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.NewVsRepeatCustomers() {
				out = append(out, []any{r.CustomerType, r.Count})
			}
			return out
		},
	},
	{
		Name:    "customers_by_city",
		Title:   "Customers by City",
		Columns: []string{"city", "total_customers"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.CustomersByCity() {
				out = append(out, []any{r.City, r.TotalCustomers})
			}
			return out
		},
	},
	{
		Name:    "traffic_conversion",
		Title:   "Traffic Source Conversion Rate",
		Columns: []string{"traffic_source", "total_sessions", "purchases", "conversion_rate"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.TrafficConversion() {
				out = append(out, []any{r.TrafficSource, r.TotalSessions, r.Purchases, r.ConversionRate})
			}
			return out
		},
	},
	{
		Name:    "monthly_sales_growth",
		Title:   "Monthly Sales Growth %",
		Columns: []string{"month", "revenue", "growth_percent"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.MonthlySalesGrowth() {
				out = append(out, []any{r.Month.String(), r.Revenue, r.GrowthPercent})
			}
			return out
		},
	},
	{
		Name:    "top_customers_by_value",
		Title:   "Top 5 Customers by Lifetime Value",
		Columns: []string{"customer_id", "customer_name", "lifetime_value"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.TopCustomersByValue(topCustomerLimit) {
				out = append(out, []any{r.CustomerID, r.CustomerName, r.LifetimeValue})
			}
			return out
		},
	},
	{
		Name:    "category_aov",
		Title:   "Category-wise Average Order Value",
		Columns: []string{"category", "total_revenue", "total_orders", "avg_order_value"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.CategoryAOV() {
				out = append(out, []any{r.Category, r.TotalRevenue, r.TotalOrders, r.AvgOrderValue})
			}
			return out
		},
	},
	{
		Name:    "category_profit_margin",
		Title:   "Profit Margin by Category",
		Columns: []string{"category", "total_revenue", "total_profit", "margin_percent"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.CategoryProfitMargin() {
				out = append(out, []any{r.Category, r.TotalRevenue, r.TotalProfit, r.MarginPercent})
			}
			return out
		},
	},
	{
		Name:    "rfm_segments",
		Title:   "RFM Customer Segmentation",
		Columns: []string{"customer_id", "customer_name", "recency_days", "frequency", "monetary", "segment"},
		run: func(e *Engine, asOf time.Time) [][]any {
			var out [][]any
			for _, r := range e.RFMSegments(asOf) {
				out = append(out, []any{r.CustomerID, r.CustomerName, r.RecencyDays, r.Frequency, r.Monetary, r.Segment})
			}
			return out
		},
	},
	{
		Name:    "category_performance",
		Title:   "Category Performance Over Time",
		Columns: []string{"month", "category", "total_revenue", "total_orders"},
		run: func(e *Engine, _ time.Time) [][]any {
			var out [][]any
			for _, r := range e.CategoryPerformance() {
				out = append(out, []any{r.Month.String(), r.Category, r.TotalRevenue, r.TotalOrders})
			}
			return out
		},
	},
}

var definitionIndex = func() map[string]Definition {
	idx := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		idx[d.Name] = d
	}
	return idx
}()

// Names lists every report name in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the definition of a single report.
func Describe(name string) (Definition, error) {
	d, ok := definitionIndex[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	return d, nil
}

// Run computes the named report as a generic table. The asOf date anchors
// recency for the RFM report and is ignored elsewhere.
func (e *Engine) Run(name string, asOf time.Time) (domain.ReportTable, error) {
	d, err := Describe(name)
	if err != nil {
		return domain.ReportTable{}, err
	}
	return domain.ReportTable{
		Name:    d.Name,
		Title:   d.Title,
		Columns: d.Columns,
		Rows:    d.run(e, asOf),
	}, nil
}
