package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tabprep/internal/files"
	"tabprep/pkg/contracts/domain"
)

// DefaultSheetName is the sheet every exported workbook holds
const DefaultSheetName = "Sheet1"

// XLSXWriter writes tables as single-sheet workbooks
type XLSXWriter struct {
	files *files.Manager
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(m *files.Manager) *XLSXWriter {
	return &XLSXWriter{files: m}
}

// WriteTable atomically replaces filePath with a workbook holding t
func (w *XLSXWriter) WriteTable(filePath string, t *domain.Table) error {
	return w.files.AtomicWrite(filePath, func(out io.Writer) error {
		return EncodeXLSX(out, t)
	})
}

// EncodeXLSX streams t into a workbook and writes it to out
func EncodeXLSX(out io.Writer, t *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(sheet, DefaultSheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(DefaultSheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, t.NumCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.NumRows(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, sheetRow(t, i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
