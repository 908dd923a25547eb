package report

import (
	"sort"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

const (
	vipThreshold   = 15000
	loyalThreshold = 8000

	SegmentVIP        = "VIP"
	SegmentLoyal      = "Loyal"
	SegmentOccasional = "Occasional"

	CustomerNew    = "New"
	CustomerRepeat = "Repeat"
)

var oneHundred = decimal.NewFromInt(100)

// Engine computes the analytical reports as pure functions over an immutable
// snapshot. Lookups between relations use inner-join semantics: a row whose
// foreign key has no match is skipped, never reported as an error.
//
// Two deliberate quirks of the source queries are preserved rather than
// fixed: sales/trend/top-product reports count completed orders only while
// growth/LTV/RFM aggregate over every status, and the per-category reports
// multiply FinalPrice by Quantity while the sales reports sum FinalPrice
// alone.
type Engine struct {
	snap      store.Snapshot
	orders    map[int64]store.Order
	products  map[int64]store.Product
	customers map[int64]store.Customer
}

func NewEngine(snap store.Snapshot) *Engine {
	e := &Engine{
		snap:      snap,
		orders:    make(map[int64]store.Order, len(snap.Orders)),
		products:  make(map[int64]store.Product, len(snap.Products)),
		customers: make(map[int64]store.Customer, len(snap.Customers)),
	}
	for _, o := range snap.Orders {
		e.orders[o.ID] = o
	}
	for _, p := range snap.Products {
		e.products[p.ID] = p
	}
	for _, c := range snap.Customers {
		e.customers[c.ID] = c
	}
	return e
}

func lineRevenue(item store.OrderItem) decimal.Decimal {
	return item.FinalPrice.Mul(decimal.NewFromInt(item.Quantity))
}

// percentOf returns part/total*100 rounded to two decimals, or an empty
// NullDecimal when total is zero.
func percentOf(part, total decimal.Decimal) decimal.NullDecimal {
	if total.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: part.Div(total).Mul(oneHundred).Round(2),
		Valid:   true,
	}
}

// SalesByCategory sums FinalPrice per product category over completed
// orders, highest total first.
func (e *Engine) SalesByCategory() []domain.CategorySales {
	totals := map[string]decimal.Decimal{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok || order.Status != store.OrderCompleted {
			continue
		}
		product, ok := e.products[item.ProductID]
		if !ok {
			continue
		}
		totals[product.Category] = totals[product.Category].Add(item.FinalPrice)
	}

	rows := make([]domain.CategorySales, 0, len(totals))
	for _, category := range sortedKeys(totals) {
		rows = append(rows, domain.CategorySales{Category: category, TotalSales: totals[category]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalSales.GreaterThan(rows[j].TotalSales)
	})
	return rows
}

// MonthlySalesTrend sums FinalPrice per calendar month over completed
// orders, earliest month first.
func (e *Engine) MonthlySalesTrend() []domain.MonthlyRevenue {
	totals := map[domain.Month]decimal.Decimal{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok || order.Status != store.OrderCompleted {
			continue
		}
		month := domain.MonthOf(order.OrderDate)
		totals[month] = totals[month].Add(item.FinalPrice)
	}

	rows := make([]domain.MonthlyRevenue, 0, len(totals))
	for month, revenue := range totals {
		rows = append(rows, domain.MonthlyRevenue{Month: month, Revenue: revenue})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows
}

// TopProducts ranks products by FinalPrice revenue over completed orders and
// returns the first limit rows. Ties keep product-ID order.
func (e *Engine) TopProducts(limit int) []domain.ProductRevenue {
	type agg struct {
		qty     int64
		revenue decimal.Decimal
	}
	totals := map[int64]*agg{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok || order.Status != store.OrderCompleted {
			continue
		}
		if _, ok := e.products[item.ProductID]; !ok {
			continue
		}
		a := totals[item.ProductID]
		if a == nil {
			a = &agg{}
			totals[item.ProductID] = a
		}
		a.qty += item.Quantity
		a.revenue = a.revenue.Add(item.FinalPrice)
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.ProductRevenue, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.ProductRevenue{
			ProductID:    id,
			ProductName:  e.products[id].Name,
			TotalQty:     totals[id].qty,
			TotalRevenue: totals[id].revenue,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalRevenue.GreaterThan(rows[j].TotalRevenue)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// NewVsRepeatCustomers classifies every customer with at least one order of
// any status: exactly one order is "New", more is "Repeat".
func (e *Engine) NewVsRepeatCustomers() []domain.CustomerClassCount {
	perCustomer := map[int64]int{}
	for _, o := range e.snap.Orders {
		perCustomer[o.CustomerID]++
	}

	var newCount, repeatCount int
	for _, n := range perCustomer {
		if n == 1 {
			newCount++
		} else {
			repeatCount++
		}
	}
	return []domain.CustomerClassCount{
		{CustomerType: CustomerNew, Count: newCount},
		{CustomerType: CustomerRepeat, Count: repeatCount},
	}
}

// CustomersByCity counts distinct ordering customers per city, largest
// first.
func (e *Engine) CustomersByCity() []domain.CityCustomerCount {
	seen := map[int64]bool{}
	perCity := map[string]int{}
	for _, o := range e.snap.Orders {
		if seen[o.CustomerID] {
			continue
		}
		customer, ok := e.customers[o.CustomerID]
		if !ok {
			continue
		}
		seen[o.CustomerID] = true
		perCity[customer.City]++
	}

	rows := make([]domain.CityCustomerCount, 0, len(perCity))
	for _, city := range sortedKeys(perCity) {
		rows = append(rows, domain.CityCustomerCount{City: city, TotalCustomers: perCity[city]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalCustomers > rows[j].TotalCustomers
	})
	return rows
}

// TrafficConversion reports, per traffic source, the share of sessions that
// ended in a purchase. The purchase flag is matched case-insensitively since
// the source data mixes "Yes" and "yes".
func (e *Engine) TrafficConversion() []domain.TrafficConversion {
	type agg struct {
		sessions  int
		purchases int
	}
	totals := map[string]*agg{}
	for _, s := range e.snap.Sessions {
		a := totals[s.TrafficSource]
		if a == nil {
			a = &agg{}
			totals[s.TrafficSource] = a
		}
		a.sessions++
		if strings.EqualFold(s.PurchaseMade, "yes") {
			a.purchases++
		}
	}

	sources := make([]string, 0, len(totals))
	for src := range totals {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	rows := make([]domain.TrafficConversion, 0, len(sources))
	for _, src := range sources {
		a := totals[src]
		rate := percentOf(decimal.NewFromInt(int64(a.purchases)), decimal.NewFromInt(int64(a.sessions)))
		row := domain.TrafficConversion{
			TrafficSource: src,
			TotalSessions: a.sessions,
			Purchases:     a.purchases,
		}
		if rate.Valid {
			row.ConversionRate = rate.Decimal
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ConversionRate.GreaterThan(rows[j].ConversionRate)
	})
	return rows
}

// MonthlySalesGrowth reports month-over-month revenue growth. Revenue here
// is FinalPrice*Quantity over orders of every status; the first month and
// any month following zero revenue carry no growth value.
func (e *Engine) MonthlySalesGrowth() []domain.MonthlyGrowth {
	totals := map[domain.Month]decimal.Decimal{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok {
			continue
		}
		month := domain.MonthOf(order.OrderDate)
		totals[month] = totals[month].Add(lineRevenue(item))
	}

	months := make([]domain.Month, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	rows := make([]domain.MonthlyGrowth, 0, len(months))
	for i, m := range months {
		row := domain.MonthlyGrowth{Month: m, Revenue: totals[m]}
		if i > 0 {
			prev := totals[months[i-1]]
			row.GrowthPercent = percentOf(totals[m].Sub(prev), prev)
		}
		rows = append(rows, row)
	}
	return rows
}

// TopCustomersByValue ranks customers by lifetime value, the
// FinalPrice*Quantity total across every order regardless of status, and
// returns the first limit rows.
func (e *Engine) TopCustomersByValue(limit int) []domain.CustomerValue {
	totals := map[int64]decimal.Decimal{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok {
			continue
		}
		if _, ok := e.customers[order.CustomerID]; !ok {
			continue
		}
		totals[order.CustomerID] = totals[order.CustomerID].Add(lineRevenue(item))
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.CustomerValue, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.CustomerValue{
			CustomerID:    id,
			CustomerName:  e.customers[id].Name,
			LifetimeValue: totals[id],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LifetimeValue.GreaterThan(rows[j].LifetimeValue)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// CategoryAOV reports average order value per category: revenue divided by
// the number of distinct orders touching that category, highest first.
func (e *Engine) CategoryAOV() []domain.CategoryAOV {
	type agg struct {
		revenue decimal.Decimal
		orders  map[int64]bool
	}
	totals := map[string]*agg{}
	for _, item := range e.snap.OrderItems {
		if _, ok := e.orders[item.OrderID]; !ok {
			continue
		}
		product, ok := e.products[item.ProductID]
		if !ok {
			continue
		}
		a := totals[product.Category]
		if a == nil {
			a = &agg{orders: map[int64]bool{}}
			totals[product.Category] = a
		}
		a.revenue = a.revenue.Add(lineRevenue(item))
		a.orders[item.OrderID] = true
	}

	rows := make([]domain.CategoryAOV, 0, len(totals))
	for _, category := range sortedKeys(totals) {
		a := totals[category]
		rows = append(rows, domain.CategoryAOV{
			Category:      category,
			TotalRevenue:  a.revenue,
			TotalOrders:   len(a.orders),
			AvgOrderValue: divideRound(a.revenue, decimal.NewFromInt(int64(len(a.orders)))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return nullDecimalLess(rows[j].AvgOrderValue, rows[i].AvgOrderValue)
	})
	return rows
}

// CategoryProfitMargin reports per-category profit and margin percent.
// Profit is (FinalPrice-Cost)*Quantity; a category with zero revenue keeps
// its profit but carries no margin value.
func (e *Engine) CategoryProfitMargin() []domain.CategoryMargin {
	type agg struct {
		revenue decimal.Decimal
		profit  decimal.Decimal
	}
	totals := map[string]*agg{}
	for _, item := range e.snap.OrderItems {
		if _, ok := e.orders[item.OrderID]; !ok {
			continue
		}
		product, ok := e.products[item.ProductID]
		if !ok {
			continue
		}
		a := totals[product.Category]
		if a == nil {
			a = &agg{}
			totals[product.Category] = a
		}
		qty := decimal.NewFromInt(item.Quantity)
		a.revenue = a.revenue.Add(lineRevenue(item))
		a.profit = a.profit.Add(item.FinalPrice.Sub(product.Cost).Mul(qty))
	}

	rows := make([]domain.CategoryMargin, 0, len(totals))
	for _, category := range sortedKeys(totals) {
		a := totals[category]
		rows = append(rows, domain.CategoryMargin{
			Category:      category,
			TotalRevenue:  a.revenue,
			TotalProfit:   a.profit.Round(2),
			MarginPercent: percentOf(a.profit, a.revenue),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return nullDecimalLess(rows[j].MarginPercent, rows[i].MarginPercent)
	})
	return rows
}

// RFMSegments scores every customer with at least one order on recency,
// frequency and monetary value as of the given date. Segments partition on
// monetary alone: above 15000 is VIP, 8000 to 15000 is Loyal, the rest
// Occasional.
func (e *Engine) RFMSegments(asOf time.Time) []domain.CustomerRFM {
	type agg struct {
		lastOrder time.Time
		frequency int
		monetary  decimal.Decimal
	}
	totals := map[int64]*agg{}
	for _, o := range e.snap.Orders {
		if _, ok := e.customers[o.CustomerID]; !ok {
			continue
		}
		a := totals[o.CustomerID]
		if a == nil {
			a = &agg{}
			totals[o.CustomerID] = a
		}
		a.frequency++
		if o.OrderDate.After(a.lastOrder) {
			a.lastOrder = o.OrderDate
		}
	}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok {
			continue
		}
		if a := totals[order.CustomerID]; a != nil {
			a.monetary = a.monetary.Add(lineRevenue(item))
		}
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.CustomerRFM, 0, len(ids))
	for _, id := range ids {
		a := totals[id]
		rows = append(rows, domain.CustomerRFM{
			CustomerID:   id,
			CustomerName: e.customers[id].Name,
			RecencyDays:  int(asOf.Sub(a.lastOrder).Hours() / 24),
			Frequency:    a.frequency,
			Monetary:     a.monetary,
			Segment:      segmentFor(a.monetary),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Monetary.GreaterThan(rows[j].Monetary)
	})
	return rows
}

func segmentFor(monetary decimal.Decimal) string {
	switch {
	case monetary.GreaterThan(decimal.NewFromInt(vipThreshold)):
		return SegmentVIP
	case monetary.GreaterThanOrEqual(decimal.NewFromInt(loyalThreshold)):
		return SegmentLoyal
	default:
		return SegmentOccasional
	}
}

// CategoryPerformance reports revenue and distinct order count per month and
// category, ordered by month then category.
func (e *Engine) CategoryPerformance() []domain.CategoryPerformance {
	type key struct {
		month    domain.Month
		category string
	}
	type agg struct {
		revenue decimal.Decimal
		orders  map[int64]bool
	}
	totals := map[key]*agg{}
	for _, item := range e.snap.OrderItems {
		order, ok := e.orders[item.OrderID]
		if !ok {
			continue
		}
		product, ok := e.products[item.ProductID]
		if !ok {
			continue
		}
		k := key{month: domain.MonthOf(order.OrderDate), category: product.Category}
		a := totals[k]
		if a == nil {
			a = &agg{orders: map[int64]bool{}}
			totals[k] = a
		}
		a.revenue = a.revenue.Add(lineRevenue(item))
		a.orders[item.OrderID] = true
	}

	keys := make([]key, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month.Before(keys[j].month)
		}
		return keys[i].category < keys[j].category
	})

	rows := make([]domain.CategoryPerformance, 0, len(keys))
	for _, k := range keys {
		a := totals[k]
		rows = append(rows, domain.CategoryPerformance{
			Month:        k.month,
			Category:     k.category,
			TotalRevenue: a.revenue,
			TotalOrders:  len(a.orders),
		})
	}
	return rows
}

// divideRound returns num/den rounded to two decimals, empty when den is
// zero.
func divideRound(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: num.Div(den).Round(2), Valid: true}
}

// nullDecimalLess orders valid values ascending and sorts empty values
// first, so a descending consumer pushes them to the bottom.
func nullDecimalLess(a, b decimal.NullDecimal) bool {
	switch {
	case !a.Valid:
		return b.Valid
	case !b.Valid:
		return false
	default:
		return a.Decimal.LessThan(b.Decimal)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
