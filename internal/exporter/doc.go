// Package exporter writes tables back to disk as CSV or xlsx.
//
// Every write goes through files.Manager.AtomicWrite, so a failed export
// never leaves a partial output file behind. Missing cells are written as
// empty CSV fields or empty spreadsheet cells, which the parser reads back as
// missing.
//
// Example usage:
//
//	exp := exporter.New(files.NewManager(logger), logger)
//	err := exp.Write("data/sales_filled.xlsx", table)
package exporter
