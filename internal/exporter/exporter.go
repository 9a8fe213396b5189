package exporter

import (
	"log/slog"

	"tabprep/internal/files"
	"tabprep/pkg/contracts/domain"
)

// Exporter picks the writer for a destination from its extension
type Exporter struct {
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// New creates an exporter backed by the given file manager
func New(m *files.Manager, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		csv:    NewCSVWriter(m),
		xlsx:   NewXLSXWriter(m),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Write serialises t to path as CSV or xlsx. Other extensions, legacy .xls
// included, are refused before anything is written.
func (e *Exporter) Write(path string, t *domain.Table) error {
	format, err := files.RequireFormat(path, files.WriteFormats)
	if err != nil {
		return err
	}

	switch format {
	case files.FormatXLSX:
		err = e.xlsx.WriteTable(path, t)
	default:
		headers, records := TableRecords(t)
		err = e.csv.WriteCSV(path, WriteOptions{Headers: headers, Records: records})
	}
	if err != nil {
		return err
	}

	e.logger.Info("table exported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return nil
}
