package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"tabprep/internal/dataprocessing"
	apperrors "tabprep/internal/errors"
	"tabprep/internal/files"
	"tabprep/internal/validation"
	"tabprep/pkg/contracts/api/v1"
	"tabprep/pkg/contracts/domain"
)

// TableService serves one table loaded at start-up
type TableService struct {
	file   string
	table  *domain.Table
	logger *slog.Logger
}

// NewTableService loads path (.csv, .xls or .xlsx) and keeps it in memory
func NewTableService(path string, logger *slog.Logger) (*TableService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := validation.NewFileValidator(logger).ValidateInput(path, files.TransformFormats); err != nil {
		return nil, err
	}
	table, err := dataprocessing.ParseFile(path)
	if err != nil {
		return nil, err
	}

	logger.Info("table loaded for viewing",
		slog.String("file", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return NewTableServiceFromTable(path, table, logger), nil
}

// NewTableServiceFromTable serves an already loaded table under the name file
func NewTableServiceFromTable(file string, table *domain.Table, logger *slog.Logger) *TableService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableService{
		file:   file,
		table:  table,
		logger: logger.With(slog.String("service", "table")),
	}
}

// File returns the path the table was loaded from
func (s *TableService) File() string {
	return s.file
}

// Columns describes every column in table order
func (s *TableService) Columns(ctx context.Context) api.ColumnsResponse {
	resp := api.ColumnsResponse{
		File:    s.file,
		Rows:    s.table.NumRows(),
		Columns: make([]api.ColumnInfo, s.table.NumCols()),
	}
	for i, c := range s.table.Columns {
		resp.Columns[i] = api.ColumnInfo{
			Index:   i,
			Name:    c.Name,
			Kind:    c.Kind,
			Missing: c.MissingCount(),
		}
	}
	return resp
}

// Rows returns the page [offset, offset+limit) of the selected columns. An
// empty selection means every column; an offset past the end yields no rows.
func (s *TableService) Rows(ctx context.Context, req api.RowsRequest) (api.RowsResponse, error) {
	if req.Offset < 0 || req.Limit < 1 {
		return api.RowsResponse{}, apperrors.NewAppValidationError(
			fmt.Sprintf("invalid page offset=%d limit=%d", req.Offset, req.Limit))
	}

	var sel dataprocessing.Selection
	if ids := dataprocessing.ParseSelection(req.Columns); len(ids) > 0 {
		var err error
		if sel, err = dataprocessing.ResolveSelection(s.table, ids); err != nil {
			s.logger.DebugContext(ctx, "selection rejected",
				slog.String("columns", req.Columns),
				slog.String("error", err.Error()))
			return api.RowsResponse{}, err
		}
	} else {
		sel = make(dataprocessing.Selection, s.table.NumCols())
		for j := range sel {
			sel[j] = j
		}
	}

	total := s.table.NumRows()
	start := min(req.Offset, total)
	end := min(start+req.Limit, total)

	resp := api.RowsResponse{
		Columns: sel.Names(s.table),
		Offset:  req.Offset,
		Limit:   req.Limit,
		Total:   total,
		Rows:    make([][]interface{}, 0, end-start),
	}
	for i := start; i < end; i++ {
		row := make([]interface{}, len(sel))
		for k, j := range sel {
			row[k] = jsonCell(s.table.Columns[j], i)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// jsonCell returns a value encoding/json can marshal: missing cells are nil
// and infinities are rendered as text.
func jsonCell(c domain.Column, i int) interface{} {
	v := c.CellValue(i)
	if f, ok := v.(float64); ok && math.IsInf(f, 0) {
		return domain.FormatNumber(f)
	}
	return v
}
