package forest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeFitsTrainingDataExactly(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []float64{10, 20, 15, 40, 5}

	tree := NewTree()
	require.NoError(t, tree.Fit(X, y, nil))

	got, err := tree.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, got)
	assert.Equal(t, 5, tree.Leaves())
}

func TestTreeMidpointThresholds(t *testing.T) {
	X := [][]float64{{1}, {3}}
	y := []float64{0, 1}

	tree := NewTree()
	require.NoError(t, tree.Fit(X, y, nil))
	assert.Equal(t, 2.0, tree.root.threshold)

	got, err := tree.Predict([][]float64{{1.999}, {2}, {2.001}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, got)
}

func TestTreeConstantTargetIsSingleLeaf(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 6}, {3, 7}}
	y := []float64{4, 4, 4}

	tree := NewTree()
	require.NoError(t, tree.Fit(X, y, nil))
	assert.Equal(t, 0, tree.Depth())

	got, err := tree.Predict([][]float64{{100, -1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, got)
}

func TestTreeMaxDepth(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	tree := NewTree(WithTreeMaxDepth(2))
	require.NoError(t, tree.Fit(X, y, nil))
	assert.Equal(t, 2, tree.Depth())
	assert.LessOrEqual(t, tree.Leaves(), 4)
}

func TestTreeMinSamplesLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{0, 0, 0, 100}

	tree := NewTree(WithTreeMinSamplesLeaf(2))
	require.NoError(t, tree.Fit(X, y, nil))

	got, err := tree.Predict([][]float64{{4}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, got[0])
}

func TestTreeMissingValuesLearnDirection(t *testing.T) {
	// NaN rows share the high target, so they should be routed with the high values.
	nan := math.NaN()
	X := [][]float64{{1}, {2}, {10}, {11}, {nan}, {nan}}
	y := []float64{0, 0, 100, 100, 100, 100}

	tree := NewTree()
	require.NoError(t, tree.Fit(X, y, nil))

	got, err := tree.Predict([][]float64{{nan}, {1.5}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[0])
	assert.Equal(t, 0.0, got[1])
}

func TestTreeUnseenMissingFollowsLargerChild(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}}
	y := []float64{5, 5, 5, 50}

	tree := NewTree()
	require.NoError(t, tree.Fit(X, y, nil))

	got, err := tree.Predict([][]float64{{math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got[0])
}

func TestTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", [][]float64{{1}}, []float64{1, 2}},
		{"ragged rows", [][]float64{{1}, {1, 2}}, []float64{1, 2}},
		{"no features", [][]float64{{}}, []float64{1}},
		{"nan target", [][]float64{{1}}, []float64{math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewTree().Fit(tt.X, tt.y, nil))
		})
	}

	_, err := NewTree().Predict([][]float64{{1}})
	assert.Error(t, err)
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, 1.5, midpoint(1, 2))
	next := math.Nextafter(1, 2)
	assert.Equal(t, 1.0, midpoint(1, next))
}
