package dataprocessing

import (
	"strconv"
	"strings"

	"tabprep/pkg/contracts/domain"
)

// CleanReport describes what a cleaning pass removed.
// OriginalRows - MissingDropped - DuplicatesDropped == FinalRows.
type CleanReport struct {
	OriginalRows      int `json:"original_rows"`
	OriginalCols      int `json:"original_cols"`
	MissingDropped    int `json:"missing_dropped"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	FinalRows         int `json:"final_rows"`
}

// Clean drops every row with a missing cell, then every row identical to an
// earlier kept row. Column order and the order of kept rows are preserved.
func Clean(t *domain.Table) (*domain.Table, CleanReport) {
	report := CleanReport{
		OriginalRows: t.NumRows(),
		OriginalCols: t.NumCols(),
	}

	complete := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if !t.RowHasMissing(i) {
			complete = append(complete, i)
		}
	}
	report.MissingDropped = report.OriginalRows - len(complete)

	kept := make([]int, 0, len(complete))
	seen := make(map[string]struct{}, len(complete))
	for _, i := range complete {
		key := rowKey(t, i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, i)
	}
	report.DuplicatesDropped = len(complete) - len(kept)
	report.FinalRows = len(kept)

	return t.SelectRows(kept), report
}

// rowKey encodes row i so that two rows share a key exactly when every cell is equal
func rowKey(t *domain.Table, i int) string {
	var b strings.Builder
	for _, c := range t.Columns {
		if c.IsNumeric() {
			v := c.Nums[i]
			if v == 0 {
				v = 0 // fold -0 into 0
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			b.WriteString(strconv.Quote(c.Texts[i]))
		}
		b.WriteByte(0)
	}
	return b.String()
}
