package forest

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int, seed int64) ([][]float64, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		a, b := rnd.Float64()*10, rnd.Float64()*10
		X[i] = []float64{a, b}
		y[i] = 3*a - b
	}
	return X, y
}

func TestNewRandomForestRegressorDefaults(t *testing.T) {
	rf := NewRandomForestRegressor()
	assert.Equal(t, 100, rf.NEstimators)
	assert.Equal(t, int64(42), rf.RandomState)
	assert.True(t, rf.Bootstrap)
	assert.Equal(t, 2, rf.MinSamplesSplit)
	assert.Equal(t, 1, rf.MinSamplesLeaf)
	assert.Zero(t, rf.MaxDepth)
	assert.Zero(t, rf.MaxFeatures)
}

func TestForestDeterministicForFixedSeed(t *testing.T) {
	X, y := linearData(60, 1)
	query := [][]float64{{1, 1}, {5, 2}, {9, 9}}

	predict := func(parallelism int) []float64 {
		rf := NewRandomForestRegressor(WithNEstimators(25), WithParallelism(parallelism))
		require.NoError(t, rf.Fit(context.Background(), X, y))
		got, err := rf.Predict(query)
		require.NoError(t, err)
		return got
	}

	first := predict(1)
	assert.Equal(t, first, predict(1))
	assert.Equal(t, first, predict(8))
}

func TestForestSeedChangesModel(t *testing.T) {
	X, y := linearData(60, 2)
	query := [][]float64{{2.5, 7.5}, {4.1, 0.3}, {8.8, 1.2}}

	a := NewRandomForestRegressor(WithNEstimators(10), WithRandomState(1))
	b := NewRandomForestRegressor(WithNEstimators(10), WithRandomState(2))
	require.NoError(t, a.Fit(context.Background(), X, y))
	require.NoError(t, b.Fit(context.Background(), X, y))

	pa, err := a.Predict(query)
	require.NoError(t, err)
	pb, err := b.Predict(query)
	require.NoError(t, err)
	assert.NotEqual(t, pa, pb)
}

func TestForestApproximatesSignal(t *testing.T) {
	X, y := linearData(200, 3)
	rf := NewRandomForestRegressor(WithNEstimators(30))
	require.NoError(t, rf.Fit(context.Background(), X, y))

	got, err := rf.Predict([][]float64{{5, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got[0], 2.5)
}

func TestForestWithoutBootstrapMatchesSingleTree(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1, 4, 9, 16}

	rf := NewRandomForestRegressor(WithNEstimators(3), WithBootstrap(false))
	require.NoError(t, rf.Fit(context.Background(), X, y))
	assert.Len(t, rf.Trees(), 3)

	got, err := rf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, got)
}

func TestForestPredictionsStayWithinTargetRange(t *testing.T) {
	X, y := linearData(50, 4)
	rf := NewRandomForestRegressor(WithNEstimators(15))
	require.NoError(t, rf.Fit(context.Background(), X, y))

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range y {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	got, err := rf.Predict([][]float64{{-100, 100}, {100, -100}, {math.NaN(), 3}})
	require.NoError(t, err)
	for _, v := range got {
		assert.GreaterOrEqual(t, v, lo)
		assert.LessOrEqual(t, v, hi)
	}
}

func TestForestHonoursCancellation(t *testing.T) {
	X, y := linearData(20, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRandomForestRegressor(WithNEstimators(5))
	err := rf.Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = rf.Predict(X)
	assert.Error(t, err)
}

func TestForestValidation(t *testing.T) {
	rf := NewRandomForestRegressor(WithNEstimators(0))
	assert.Error(t, rf.Fit(context.Background(), [][]float64{{1}}, []float64{1}))

	rf = NewRandomForestRegressor()
	assert.Error(t, rf.Fit(context.Background(), [][]float64{{1}}, []float64{1, 2}))

	rf = NewRandomForestRegressor(WithNEstimators(2))
	require.NoError(t, rf.Fit(context.Background(), [][]float64{{1, 2}, {3, 4}}, []float64{1, 2}))
	_, err := rf.Predict([][]float64{{1}})
	assert.Error(t, err)
}
