// Package files owns the file-system policy shared by every command:
// which extensions can be read or written, how output paths are derived
// from the input path, and how outputs are written atomically.
//
// Example usage:
//
//	format, err := files.DetectFormat("data/sales.xlsx")
//	out := files.FilledPath("data/sales.xlsx") // data/sales_filled.xlsx
//
//	m := files.NewManager(logger)
//	err = m.AtomicWrite(out, func(w io.Writer) error { ... })
package files
