package api

// ReportSummary describes one available report in listings.
type ReportSummary struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
}

// ReportTable is a computed report: column names plus one value array per
// row, in report order. Monetary values are serialized as JSON strings to
// preserve precision; undefined ratios (no prior month, zero denominator)
// are null.
type ReportTable struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type Error struct {
	Error string `json:"error"`
}
