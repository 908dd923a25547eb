package adapters

import (
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

func MapReportTableDomainToApi(table domain.ReportTable) api.ReportTable {
	rows := table.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return api.ReportTable{
		Name:    table.Name,
		Title:   table.Title,
		Columns: table.Columns,
		Rows:    rows,
	}
}
