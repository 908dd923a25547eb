package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Reporter renders a report table as ASCII output. Column widths adapt to
// the content.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(table domain.ReportTable) error {
	cells := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = formatCell(v)
		}
		cells = append(cells, rendered)
	}

	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = len(col)
	}
	for _, row := range cells {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	funcMap := template.FuncMap{
		"formatRow": func(row []string) string {
			parts := make([]string, len(row))
			for i, cell := range row {
				parts[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
			}
			return "|" + strings.Join(parts, "|") + "|"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl := `
{{.Title}}

{{separator}}
{{formatRow .Columns}}
{{separator}}
{{range .Cells}}{{formatRow .}}
{{end}}{{separator}}
{{.RowCount}} row(s)
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Title    string
		Columns  []string
		Cells    [][]string
		RowCount int
	}{
		Title:    table.Title,
		Columns:  table.Columns,
		Cells:    cells,
		RowCount: len(cells),
	})
}

func formatCell(v any) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case decimal.NullDecimal:
		if !val.Valid {
			return "-"
		}
		return val.Decimal.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
