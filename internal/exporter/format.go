package exporter

import (
	"math"

	"tabprep/pkg/contracts/domain"
)

// TableRecords renders a table as a header plus string records
func TableRecords(t *domain.Table) ([]string, [][]string) {
	records := make([][]string, t.NumRows())
	for i := range records {
		record := make([]string, t.NumCols())
		for j, c := range t.Columns {
			record[j] = c.CellString(i)
		}
		records[i] = record
	}
	return t.Names(), records
}

// sheetRow converts row i into spreadsheet cell values; missing cells are nil
func sheetRow(t *domain.Table, i int) []interface{} {
	row := make([]interface{}, t.NumCols())
	for j, c := range t.Columns {
		switch {
		case c.IsMissing(i):
			row[j] = nil
		case c.IsNumeric() && math.IsInf(c.Nums[i], 0):
			row[j] = domain.FormatNumber(c.Nums[i])
		case c.IsNumeric():
			row[j] = c.Nums[i]
		default:
			row[j] = c.Texts[i]
		}
	}
	return row
}
