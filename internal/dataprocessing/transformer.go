package dataprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tabprep/internal/config"
	apperrors "tabprep/internal/errors"
	"tabprep/pkg/contracts/domain"
)

// Transformer rewrites selected numeric columns with one of the four methods
type Transformer struct {
	cfg config.TransformConfig
}

// NewTransformer creates a transformer with the given numeric constants
func NewTransformer(cfg config.TransformConfig) *Transformer {
	return &Transformer{cfg: cfg}
}

var defaultTransformer = NewTransformer(config.TransformConfig{
	CLREpsilon:   config.DefaultCLREpsilon,
	BoxCoxOffset: config.DefaultBoxCoxOffset,
})

// Transform applies kind to the selected columns of t with the default constants
func Transform(t *domain.Table, kind Kind, sel Selection) (*domain.Table, error) {
	return defaultTransformer.Transform(t, kind, sel)
}

// Transform returns a copy of t with every selected column rewritten; t is not
// modified. Missing cells stay missing and statistics use observed cells only.
func (tr *Transformer) Transform(t *domain.Table, kind Kind, sel Selection) (*domain.Table, error) {
	if err := kind.Check(); err != nil {
		return nil, err
	}
	if len(sel) == 0 {
		return nil, apperrors.NewSelectionError("no columns selected")
	}
	for _, j := range sel {
		if j < 0 || j >= t.NumCols() {
			return nil, apperrors.NewSelectionError(
				fmt.Sprintf("column index %d is out of range; the table has %d columns", j, t.NumCols()))
		}
		if col := t.Columns[j]; !col.IsNumeric() {
			return nil, apperrors.NewTransformError(fmt.Sprintf("column %q is not numeric", col.Name)).
				WithContext("column", col.Name)
		}
	}

	out := t.Clone()
	switch kind {
	case KindZScore:
		for _, j := range sel {
			zScore(out.Columns[j].Nums)
		}
	case KindMinMax:
		for _, j := range sel {
			minMax(out.Columns[j].Nums)
		}
	case KindBoxCox:
		for _, j := range sel {
			if err := tr.boxCox(&out.Columns[j]); err != nil {
				return nil, err
			}
		}
	case KindCLR:
		if err := tr.clr(out, sel); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// observed returns the non-missing values and their positions
func observed(values []float64) ([]float64, []int) {
	var vals []float64
	var pos []int
	for i, v := range values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
			pos = append(pos, i)
		}
	}
	return vals, pos
}

// zScore standardises in place with the population standard deviation.
// A column without spread becomes all zeros.
func zScore(values []float64) {
	vals, pos := observed(values)
	if len(vals) == 0 {
		return
	}
	mean, variance := stat.PopMeanVariance(vals, nil)
	std := math.Sqrt(variance)
	for k, i := range pos {
		if std == 0 {
			values[i] = 0
		} else {
			values[i] = (vals[k] - mean) / std
		}
	}
}

// minMax rescales in place to [0, 1]. A column without spread becomes all zeros.
func minMax(values []float64) {
	vals, pos := observed(values)
	if len(vals) == 0 {
		return
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	for k, i := range pos {
		if hi == lo {
			values[i] = 0
		} else {
			values[i] = (vals[k] - lo) / (hi - lo)
		}
	}
}

func (tr *Transformer) boxCox(col *domain.Column) error {
	vals, pos := observed(col.Nums)
	if len(vals) == 0 {
		return apperrors.NewTransformError(fmt.Sprintf("column %q has no observed values", col.Name)).
			WithContext("column", col.Name)
	}
	for k := range vals {
		vals[k] += tr.cfg.BoxCoxOffset
		if vals[k] <= 0 {
			return apperrors.NewTransformError(
				fmt.Sprintf("box-cox requires x + %g > 0; column %q contains %g", tr.cfg.BoxCoxOffset, col.Name, col.Nums[pos[k]])).
				WithContext("column", col.Name)
		}
	}
	if floats.Min(vals) == floats.Max(vals) {
		return apperrors.NewTransformError(fmt.Sprintf("box-cox requires a non-constant column; %q is constant", col.Name)).
			WithContext("column", col.Name)
	}

	transformed := BoxCox(vals, BoxCoxLambda(vals))
	for k, i := range pos {
		col.Nums[i] = transformed[k]
	}
	return nil
}

// clr replaces each selected cell with log(x+eps) minus the mean of those
// logs over the observed selected cells of the same row.
func (tr *Transformer) clr(t *domain.Table, sel Selection) error {
	for _, j := range sel {
		col := t.Columns[j]
		for _, v := range col.Nums {
			if v < 0 {
				return apperrors.NewTransformError(
					fmt.Sprintf("centered log-ratio requires non-negative values; column %q contains %g", col.Name, v)).
					WithContext("column", col.Name)
			}
		}
	}

	logs := make([]float64, len(sel))
	for i := 0; i < t.NumRows(); i++ {
		n := 0
		sum := 0.0
		for k, j := range sel {
			v := t.Columns[j].Nums[i]
			if math.IsNaN(v) {
				logs[k] = math.NaN()
				continue
			}
			logs[k] = math.Log(v + tr.cfg.CLREpsilon)
			sum += logs[k]
			n++
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		for k, j := range sel {
			if !math.IsNaN(logs[k]) {
				t.Columns[j].Nums[i] = logs[k] - mean
			}
		}
	}
	return nil
}
