package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabprep/internal/config"
	"tabprep/internal/shared/testutil"
	"tabprep/pkg/contracts/domain"
)

func mustTable(t *testing.T, cols ...domain.Column) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(cols...)
	require.NoError(t, err)
	return table
}

func testImputerConfig() config.ImputerConfig {
	cfg := config.Default().Imputer
	cfg.Estimators = 30
	return cfg
}

func TestDecide(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("full", []float64{1, 2, 3}),
		domain.NewNumericColumn("gappy", []float64{1, nan, 3}),
		domain.NewNumericColumn("empty", []float64{nan, nan, nan}),
		domain.NewTextColumn("label", []string{"a", "", "c"}),
	)

	tests := []struct {
		col      int
		strategy Strategy
	}{
		{0, StrategySkip},
		{1, StrategyRegress},
		{2, StrategyInterpolate},
		{3, StrategySkip},
	}
	for _, tt := range tests {
		d := Decide(table, tt.col)
		assert.Equal(t, tt.strategy, d.Strategy, table.Columns[tt.col].Name)
	}

	d := Decide(table, 1)
	assert.Equal(t, []int{0, 2}, d.TrainRows)
	assert.Equal(t, []int{1}, d.PredictRows)
	assert.Equal(t, []int{0, 2}, d.Features)
	assert.Equal(t, 1, d.Missing)
}

func TestDecideInterpolationFallbacks(t *testing.T) {
	single := mustTable(t, domain.NewNumericColumn("v", []float64{1, nan, 3}))
	d := Decide(single, 0)
	assert.Equal(t, StrategyInterpolate, d.Strategy)
	assert.Equal(t, "table has a single column", d.Reason)

	textOnly := mustTable(t,
		domain.NewNumericColumn("v", []float64{1, nan, 3}),
		domain.NewTextColumn("s", []string{"a", "b", "c"}),
	)
	d = Decide(textOnly, 0)
	assert.Equal(t, StrategyInterpolate, d.Strategy)
	assert.Equal(t, "no numeric feature columns", d.Reason)
}

func TestDecideIsPure(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, nan, 3}),
		domain.NewNumericColumn("b", []float64{nan, 5, 6}),
	)
	before := table.Clone()

	first := Decide(table, 0)
	second := Decide(table, 0)
	assert.Equal(t, first, second)
	assert.Equal(t, before.Columns[1].Nums[1], table.Columns[1].Nums[1])
	assert.True(t, math.IsNaN(table.Columns[0].Nums[1]))
}

func TestImputeNoMissingReturnsEqualTable(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, 2, 3}),
		domain.NewTextColumn("b", []string{"x", "y", "z"}),
	)

	out, report, err := NewImputer(testImputerConfig(), nil).Impute(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, table, out)
	assert.Zero(t, report.TotalFilled())
	assert.Zero(t, report.MissingAfter)
}

func TestImputeSingleColumnInterpolates(t *testing.T) {
	table := mustTable(t, domain.NewNumericColumn("v", []float64{10, nan, nan, nan, 20}))

	out, report, err := NewImputer(testImputerConfig(), nil).Impute(context.Background(), table)
	require.NoError(t, err)

	got := out.Columns[0].Nums
	assert.Equal(t, 10.0, got[0])
	assert.Equal(t, 20.0, got[4])
	for i := 1; i <= 3; i++ {
		assert.Greater(t, got[i], 10.0)
		assert.Less(t, got[i], 20.0)
		assert.Greater(t, got[i], got[i-1])
	}
	assert.Equal(t, 3, report.Filled[StrategyInterpolate])
	assert.True(t, math.IsNaN(table.Columns[0].Nums[2]), "input must not be modified")
}

func TestImputeRegressionRecoversLinearRelation(t *testing.T) {
	n := 100
	other := make([]float64, n)
	target := make([]float64, n)
	for i := range other {
		other[i] = float64(i) * 0.1
		target[i] = 2 * other[i]
	}
	missing := []int{25, 50, 75}
	for _, i := range missing {
		target[i] = nan
	}
	table := mustTable(t,
		domain.NewNumericColumn("other", other),
		domain.NewNumericColumn("target", target),
	)

	cfg := config.Default().Imputer
	out, report, err := NewImputer(cfg, nil).Impute(context.Background(), table)
	require.NoError(t, err)

	for _, i := range missing {
		assert.InDelta(t, 2*other[i], out.Columns[1].Nums[i], 0.3, "row %d", i)
	}
	assert.Equal(t, 3, report.Filled[StrategyRegress])
	assert.Equal(t, other, out.Columns[0].Nums)
	assert.Zero(t, report.MissingAfter)
}

func TestImputeIsDeterministic(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, 2, 3, 4, 5, 6, 7, 8}),
		domain.NewNumericColumn("b", []float64{3, 1, nan, 8, 2, nan, 9, 4}),
	)

	run := func() []float64 {
		out, _, err := NewImputer(testImputerConfig(), nil).Impute(context.Background(), table)
		require.NoError(t, err)
		return out.Columns[1].Nums
	}
	assert.Equal(t, run(), run())
}

func TestImputeUsesOriginalTableForDecisions(t *testing.T) {
	// b has no observed value, so it is interpolated (and stays missing);
	// a must still be regressed on the original, unfilled b.
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, nan, 3, 4}),
		domain.NewNumericColumn("b", []float64{nan, nan, nan, nan}),
		domain.NewNumericColumn("c", []float64{1, 2, 3, 4}),
	)

	out, report, err := NewImputer(testImputerConfig(), nil).Impute(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, report.Decisions, 3)
	assert.Equal(t, StrategyRegress, report.Decisions[0].Strategy)
	assert.Equal(t, StrategyInterpolate, report.Decisions[1].Strategy)
	assert.Equal(t, StrategySkip, report.Decisions[2].Strategy)
	assert.False(t, math.IsNaN(out.Columns[0].Nums[1]))
	assert.Equal(t, 4, report.MissingAfter)
	assert.Equal(t, []ColumnMissing{{"a", 1}, {"b", 4}, {"c", 0}}, report.MissingBefore)
}

func TestImputeLogsFallback(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	table := mustTable(t, domain.NewNumericColumn("v", []float64{1, nan, 3}))

	_, _, err := NewImputer(testImputerConfig(), logger).Impute(context.Background(), table)
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "falling back to interpolation")
	testutil.AssertLogAttr(t, handler, "component", "imputer")
	testutil.AssertLogAttr(t, handler, "column", "v")
}

func TestImputeLeavesTextColumns(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, 2}),
		domain.NewTextColumn("s", []string{"", "x"}),
	)
	out, report, err := NewImputer(testImputerConfig(), nil).Impute(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "x"}, out.Columns[1].Texts)
	assert.Equal(t, StrategySkip, report.Decisions[1].Strategy)
}

func TestImputeRejectsUnknownBoundary(t *testing.T) {
	cfg := testImputerConfig()
	cfg.Boundary = "sideways"
	table := mustTable(t, domain.NewNumericColumn("v", []float64{1}))
	_, _, err := NewImputer(cfg, nil).Impute(context.Background(), table)
	assert.Error(t, err)
}

func TestImputeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, 2, 3}),
		domain.NewNumericColumn("b", []float64{1, nan, 3}),
	)
	_, _, err := NewImputer(testImputerConfig(), nil).Impute(ctx, table)
	assert.ErrorIs(t, err, context.Canceled)
}
