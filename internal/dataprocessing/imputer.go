package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"tabprep/internal/config"
	"tabprep/internal/forest"
	"tabprep/pkg/contracts/domain"
)

// Strategy is the imputation method chosen for one column
type Strategy string

const (
	StrategySkip        Strategy = "skip"
	StrategyRegress     Strategy = "regress"
	StrategyInterpolate Strategy = "interpolate"
)

// Decision is the outcome of the per-column policy. It is computed from the
// original table only, so decisions never depend on other columns' fills.
type Decision struct {
	Column      string   `json:"column"`
	Index       int      `json:"index"`
	Strategy    Strategy `json:"strategy"`
	Reason      string   `json:"reason"`
	Missing     int      `json:"missing"`
	TrainRows   []int    `json:"-"`
	PredictRows []int    `json:"-"`
	Features    []int    `json:"features,omitempty"`
}

// Decide selects the imputation strategy for column c of t.
//
//   - skip: the column has no missing cell, or it holds text
//   - interpolate: t has a single column, no other numeric column can serve as
//     a feature, or no cell of c is observed
//   - regress: otherwise, training on rows where c is observed
func Decide(t *domain.Table, c int) Decision {
	col := t.Columns[c]
	d := Decision{Column: col.Name, Index: c, Missing: col.MissingCount()}

	if d.Missing == 0 {
		d.Strategy, d.Reason = StrategySkip, "no missing values"
		return d
	}
	if !col.IsNumeric() {
		d.Strategy, d.Reason = StrategySkip, "text columns are not imputed"
		return d
	}

	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			d.PredictRows = append(d.PredictRows, i)
		} else {
			d.TrainRows = append(d.TrainRows, i)
		}
	}

	if t.NumCols() == 1 {
		d.Strategy, d.Reason = StrategyInterpolate, "table has a single column"
		return d
	}
	for j, other := range t.Columns {
		if j != c && other.IsNumeric() {
			d.Features = append(d.Features, j)
		}
	}
	switch {
	case len(d.Features) == 0:
		d.Strategy, d.Reason = StrategyInterpolate, "no numeric feature columns"
	case len(d.TrainRows) == 0:
		d.Strategy, d.Reason = StrategyInterpolate, "no observed values to train on"
	default:
		d.Strategy, d.Reason = StrategyRegress, "regression on other numeric columns"
	}
	return d
}

// ColumnMissing pairs a column name with its missing-cell count
type ColumnMissing struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// ImputeReport summarises one imputation pass
type ImputeReport struct {
	Rows          int              `json:"rows"`
	Columns       int              `json:"columns"`
	MissingBefore []ColumnMissing  `json:"missing_before"`
	MissingAfter  int              `json:"missing_after"`
	Decisions     []Decision       `json:"decisions"`
	Filled        map[Strategy]int `json:"filled"`
}

// TotalFilled returns the number of cells filled by any strategy
func (r *ImputeReport) TotalFilled() int {
	total := 0
	for _, n := range r.Filled {
		total += n
	}
	return total
}

// Imputer fills missing numeric cells column by column
type Imputer struct {
	cfg    config.ImputerConfig
	logger *slog.Logger
}

// NewImputer creates an imputer with the given forest and boundary settings
func NewImputer(cfg config.ImputerConfig, logger *slog.Logger) *Imputer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Imputer{cfg: cfg, logger: logger.With(slog.String("component", "imputer"))}
}

// Impute returns a filled copy of t and a report. Every decision and every
// feature matrix is taken from t itself; fills are written into the copy.
func (im *Imputer) Impute(ctx context.Context, t *domain.Table) (*domain.Table, *ImputeReport, error) {
	boundary, err := ParseBoundary(im.cfg.Boundary)
	if err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	report := &ImputeReport{
		Rows:          t.NumRows(),
		Columns:       t.NumCols(),
		MissingBefore: make([]ColumnMissing, t.NumCols()),
		Filled:        make(map[Strategy]int),
	}
	for j, col := range t.Columns {
		report.MissingBefore[j] = ColumnMissing{Column: col.Name, Missing: col.MissingCount()}
	}

	for c := range t.Columns {
		d := Decide(t, c)
		report.Decisions = append(report.Decisions, d)

		switch d.Strategy {
		case StrategySkip:
			if d.Missing > 0 {
				im.logger.InfoContext(ctx, "column skipped",
					slog.String("column", d.Column),
					slog.Int("missing", d.Missing),
					slog.String("reason", d.Reason))
			}
		case StrategyInterpolate:
			filled, n := Interpolate(t.Columns[c].Nums, boundary)
			out.Columns[c].Nums = filled
			report.Filled[StrategyInterpolate] += n
			im.logger.InfoContext(ctx, "falling back to interpolation",
				slog.String("column", d.Column),
				slog.String("reason", d.Reason),
				slog.Int("missing", d.Missing),
				slog.Int("filled", n))
		case StrategyRegress:
			n, err := im.regress(ctx, t, out, d)
			if err != nil {
				return nil, nil, fmt.Errorf("impute column %q: %w", d.Column, err)
			}
			report.Filled[StrategyRegress] += n
			im.logger.DebugContext(ctx, "column imputed by regression",
				slog.String("column", d.Column),
				slog.Int("train_rows", len(d.TrainRows)),
				slog.Int("features", len(d.Features)),
				slog.Int("filled", n))
		}
	}

	for _, col := range out.Columns {
		if col.IsNumeric() {
			report.MissingAfter += col.MissingCount()
		}
	}
	return out, report, nil
}

func (im *Imputer) regress(ctx context.Context, src, dst *domain.Table, d Decision) (int, error) {
	X, sparse := featureMatrix(src, d.Features, d.TrainRows)
	y := make([]float64, len(d.TrainRows))
	for k, r := range d.TrainRows {
		y[k] = src.Columns[d.Index].Nums[r]
	}
	Xp, sparsePredict := featureMatrix(src, d.Features, d.PredictRows)
	if sparse || sparsePredict {
		im.logger.WarnContext(ctx, "feature columns contain missing values",
			slog.String("column", d.Column))
	}

	model := forest.NewRandomForestRegressor(
		forest.WithNEstimators(im.cfg.Estimators),
		forest.WithRandomState(im.cfg.Seed),
		forest.WithMaxDepth(im.cfg.MaxDepth),
		forest.WithMinSamplesSplit(im.cfg.MinSamplesSplit),
		forest.WithMinSamplesLeaf(im.cfg.MinSamplesLeaf),
		forest.WithParallelism(im.cfg.Parallelism),
	)
	if err := model.Fit(ctx, X, y); err != nil {
		return 0, err
	}
	preds, err := model.Predict(Xp)
	if err != nil {
		return 0, err
	}

	for k, r := range d.PredictRows {
		dst.Columns[d.Index].Nums[r] = preds[k]
	}
	return len(preds), nil
}

// featureMatrix gathers the feature values of the given rows and reports
// whether any of them is missing.
func featureMatrix(t *domain.Table, features, rows []int) ([][]float64, bool) {
	X := make([][]float64, len(rows))
	sparse := false
	for k, r := range rows {
		row := make([]float64, len(features))
		for f, j := range features {
			row[f] = t.Columns[j].Nums[r]
			if math.IsNaN(row[f]) {
				sparse = true
			}
		}
		X[k] = row
	}
	return X, sparse
}
