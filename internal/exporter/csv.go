package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"tabprep/internal/files"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files *files.Manager
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(m *files.Manager) *CSVWriter {
	return &CSVWriter{files: m}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV atomically replaces filePath with the given header and records
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return w.files.AtomicWrite(filePath, func(out io.Writer) error {
		return EncodeCSV(out, options)
	})
}

// EncodeCSV writes the header and records to out
func EncodeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if len(record) == 1 && record[0] == "" {
			// A bare empty line would be skipped on read, so quote the lone empty field.
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(out, "\"\"\n"); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
			continue
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
