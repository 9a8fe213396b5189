package files

import (
	"path/filepath"
	"strings"

	apperrors "tabprep/internal/errors"
)

// Format identifies a tabular file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// Extension returns the canonical lower-case extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// IsSpreadsheet reports whether the format is a workbook
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// Writable reports whether outputs can be produced in this format.
// Legacy .xls is read-only.
func (f Format) Writable() bool {
	return f == FormatCSV || f == FormatXLSX
}

var (
	// ImputeFormats are the inputs the imputer and the cleaner accept
	ImputeFormats = []Format{FormatCSV, FormatXLSX}
	// TransformFormats are the inputs the transformer and the viewer accept
	TransformFormats = []Format{FormatCSV, FormatXLS, FormatXLSX}
	// WriteFormats are the formats outputs may be written in
	WriteFormats = []Format{FormatCSV, FormatXLSX}
)

// DetectFormat maps a path's extension (case-insensitive) to a Format
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", apperrors.NewUnsupportedFormatError(filepath.Ext(path), extensions(TransformFormats))
}

// RequireFormat detects the format of path and checks it is one of allowed
func RequireFormat(path string, allowed []Format) (Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", apperrors.NewUnsupportedFormatError(filepath.Ext(path), extensions(allowed))
	}
	for _, a := range allowed {
		if a == format {
			return format, nil
		}
	}
	return "", apperrors.NewUnsupportedFormatError(filepath.Ext(path), extensions(allowed))
}

func extensions(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.Extension()
	}
	return out
}
