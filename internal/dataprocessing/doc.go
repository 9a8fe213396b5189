// Package dataprocessing holds the table-level passes of tabprep: reading
// CSV and spreadsheet files into a typed table, imputing missing numeric
// cells, transforming selected columns and cleaning rows.
//
// # Imputation
//
// Decide is a pure policy: for every column it returns a Decision tagged
// skip, regress or interpolate, computed from the unmodified input table.
// Imputer.Impute applies those decisions to a clone:
//
//	imp := dataprocessing.NewImputer(cfg.Imputer, logger)
//	filled, report, err := imp.Impute(ctx, table)
//
// Regression uses a random forest (package forest) trained on the rows where
// the column is observed, with every other numeric column as a feature.
// Interpolation is linear over row position; see Boundary for edge handling.
//
// # Transformation
//
// Transform is a pure function of (table, kind, selection):
//
//	sel, err := dataprocessing.ResolveSelection(table, dataprocessing.ParseSelection("price, 2"))
//	out, err := dataprocessing.Transform(table, dataprocessing.KindZScore, sel)
//
// The centered log-ratio is computed jointly over the selected columns of
// each row; the other three kinds treat columns independently.
//
// # Cleaning
//
// Clean drops rows with any missing cell and then exact duplicates, keeping
// the first occurrence, and reports the counts removed by each step.
package dataprocessing
