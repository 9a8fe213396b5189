// Package operations runs the impute, clean and transform commands end to end.
//
// A Runner validates the input and output paths, reads the table, applies the
// core pass from package dataprocessing and writes the result through the
// exporter. Every run is split into named steps whose state is recorded in a
// domain.RunSummary; each run and step gets a span, and the run outcome,
// rows read and per-command counters are recorded as metrics.
//
// Outputs are written atomically, so a failed step never leaves a partial
// file behind.
package operations
