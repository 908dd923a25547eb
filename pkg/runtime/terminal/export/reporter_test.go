package export

import (
	"bytes"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(domain.ReportTable{
		Name:    "sales_by_category",
		Title:   "Sales by Category",
		Columns: []string{"category", "total_sales"},
		Rows: [][]any{
			{"Footwear", decimal.RequireFromString("1500.50")},
			{"Electronics", decimal.RequireFromString("550")},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Sales by Category")
	assert.Contains(t, out, "| category    | total_sales |")
	assert.Contains(t, out, "| Footwear    | 1500.5      |")
	assert.Contains(t, out, "2 row(s)")
}

func TestReporter_RendersNullAsDash(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(domain.ReportTable{
		Title:   "Monthly Sales Growth %",
		Columns: []string{"month", "revenue", "growth_percent"},
		Rows: [][]any{
			{"2024-01", decimal.NewFromInt(17000), decimal.NullDecimal{}},
			{"2024-02", decimal.NewFromInt(8000), decimal.NullDecimal{Decimal: decimal.RequireFromString("-52.94"), Valid: true}},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "| 2024-01 | 17000   | -")
	assert.Contains(t, out, "-52.94")
}

func TestReporter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(domain.ReportTable{
		Title:   "Sales by Category",
		Columns: []string{"category", "total_sales"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0 row(s)")
}
