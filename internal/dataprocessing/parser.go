package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tabprep/internal/errors"
	"tabprep/internal/files"
	"tabprep/pkg/contracts/domain"
)

// missingTokens are the cell spellings read as a missing value
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissingToken reports whether a raw cell is read as missing
func IsMissingToken(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads a CSV or spreadsheet file into a table. The first row is
// the header; workbooks are read from their first sheet.
func ParseFile(filePath string) (*domain.Table, error) {
	format, err := files.DetectFormat(filePath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(filePath, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("cannot access %s", filePath), err)
	}

	var rows [][]string
	if format.IsSpreadsheet() {
		rows, err = readWorkbookRows(filePath)
	} else {
		rows, err = readCSVFile(filePath)
	}
	if err != nil {
		return nil, err
	}

	table, err := BuildTable(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("file parsed",
		slog.String("path", filePath),
		slog.String("format", string(format)),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return table, nil
}

func readCSVFile(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", filePath)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV returns the raw records of a CSV stream. A leading UTF-8 byte order
// mark is dropped and records may have differing widths.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read csv", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed csv", err)
	}
	return records, nil
}

func readWorkbookRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", filePath)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("path", filePath).
			WithContext("sheet", sheets[0])
	}
	return rows, nil
}

// BuildTable converts raw rows (header first) into a typed table.
// A column is numeric when every non-missing cell parses as a number.
func BuildTable(rows [][]string) (*domain.Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, apperrors.NewParsingError("no columns to parse from file", nil)
	}

	names := headerNames(rows[0])
	width := len(names)
	body := rows[1:]

	raw := make([][]string, width)
	for j := range raw {
		raw[j] = make([]string, len(body))
	}
	for i, row := range body {
		if len(row) > width {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(row), width), nil)
		}
		for j, cell := range row {
			if IsMissingToken(cell) {
				cell = ""
			}
			raw[j][i] = cell
		}
	}

	columns := make([]domain.Column, width)
	for j, cells := range raw {
		if nums, ok := parseNumericColumn(cells); ok {
			columns[j] = domain.NewNumericColumn(names[j], nums)
		} else {
			columns[j] = domain.NewTextColumn(names[j], cells)
		}
	}
	return domain.NewTable(columns...)
}

// headerNames names blank headers "Unnamed: <i>" and suffixes repeated names
// with ".1", ".2", ... in order of appearance.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := seen[name]; n > 0; n = seen[name] {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		seen[name] = 1
		names[i] = name
	}
	return names
}

func parseNumericColumn(cells []string) ([]float64, bool) {
	nums := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			nums[i] = math.NaN()
			continue
		}
		v, ok := parseNumber(cell)
		if !ok {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

// parseNumber accepts decimal and exponent notation; hex floats and digit
// separators are rejected.
func parseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.ContainsAny(s, "xX_,") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
