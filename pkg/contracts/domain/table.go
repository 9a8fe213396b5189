package domain

import (
	"fmt"
	"math"
	"strconv"
)

// ColumnKind describes how the cells of a column are stored
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// Column is a named, ordered sequence of cells.
// Numeric columns store values in Nums with math.NaN() as the missing marker.
// Text columns store values in Texts with "" as the missing marker.
type Column struct {
	Name  string     `json:"name"`
	Kind  ColumnKind `json:"kind"`
	Nums  []float64  `json:"-"`
	Texts []string   `json:"-"`
}

// NewNumericColumn creates a numeric column
func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Nums: values}
}

// NewTextColumn creates a text column
func NewTextColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindText, Texts: values}
}

// Len returns the number of cells in the column
func (c Column) Len() int {
	if c.Kind == KindText {
		return len(c.Texts)
	}
	return len(c.Nums)
}

// IsNumeric reports whether the column holds numbers
func (c Column) IsNumeric() bool {
	return c.Kind == KindNumeric
}

// IsMissing reports whether the cell at row i is the missing marker
func (c Column) IsMissing(i int) bool {
	if c.Kind == KindText {
		return c.Texts[i] == ""
	}
	return math.IsNaN(c.Nums[i])
}

// MissingCount returns the number of missing cells
func (c Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the column
func (c Column) Clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Nums != nil {
		out.Nums = append([]float64(nil), c.Nums...)
	}
	if c.Texts != nil {
		out.Texts = append([]string(nil), c.Texts...)
	}
	return out
}

// Table is an ordered set of equally long columns
type Table struct {
	Columns []Column `json:"columns"`
}

// NewTable creates a table and checks that every column has the same length
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the uniform-length invariant
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return nil
	}
	rows := t.Columns[0].Len()
	for _, c := range t.Columns[1:] {
		if c.Len() != rows {
			return fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), rows)
		}
	}
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the column with the given name, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// MissingCounts returns the number of missing cells per column, in column order
func (t *Table) MissingCounts() []int {
	counts := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		counts[i] = c.MissingCount()
	}
	return counts
}

// RowHasMissing reports whether any cell of row i is missing
func (t *Table) RowHasMissing(i int) bool {
	for _, c := range t.Columns {
		if c.IsMissing(i) {
			return true
		}
	}
	return false
}

// SelectRows returns a new table holding only the given rows, in the given order
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for j, c := range t.Columns {
		nc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindText {
			nc.Texts = make([]string, len(rows))
			for k, r := range rows {
				nc.Texts[k] = c.Texts[r]
			}
		} else {
			nc.Nums = make([]float64, len(rows))
			for k, r := range rows {
				nc.Nums[k] = c.Nums[r]
			}
		}
		out.Columns[j] = nc
	}
	return out
}

// SelectColumns returns a new table holding only the given columns, in the given order
func (t *Table) SelectColumns(cols []int) *Table {
	out := &Table{Columns: make([]Column, len(cols))}
	for k, j := range cols {
		out.Columns[k] = t.Columns[j].Clone()
	}
	return out
}

// CellString renders the cell at row i; missing cells render as ""
func (c Column) CellString(i int) string {
	if c.Kind == KindText {
		return c.Texts[i]
	}
	return FormatNumber(c.Nums[i])
}

// CellValue returns the cell at row i as float64, string, or nil when missing
func (c Column) CellValue(i int) interface{} {
	if c.IsMissing(i) {
		return nil
	}
	if c.Kind == KindText {
		return c.Texts[i]
	}
	return c.Nums[i]
}

// FormatNumber renders a float the way it is written to CSV.
// NaN renders as the empty string. Magnitudes outside [1e-4, 1e16) use exponent form.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
