package forest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForestRegressor averages the predictions of bagged regression trees.
type RandomForestRegressor struct {
	NEstimators     int
	MaxDepth        int // 0 => unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
	Bootstrap       bool
	RandomState     int64
	Parallelism     int // 0 => GOMAXPROCS

	trees []*Tree
}

// Option functional config for RandomForestRegressor
type Option func(*RandomForestRegressor)

func WithNEstimators(n int) Option      { return func(rf *RandomForestRegressor) { rf.NEstimators = n } }
func WithMaxDepth(d int) Option         { return func(rf *RandomForestRegressor) { rf.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option  { return func(rf *RandomForestRegressor) { rf.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) Option   { return func(rf *RandomForestRegressor) { rf.MinSamplesLeaf = n } }
func WithMaxFeatures(k int) Option      { return func(rf *RandomForestRegressor) { rf.MaxFeatures = k } }
func WithBootstrap(b bool) Option       { return func(rf *RandomForestRegressor) { rf.Bootstrap = b } }
func WithRandomState(seed int64) Option { return func(rf *RandomForestRegressor) { rf.RandomState = seed } }
func WithParallelism(n int) Option      { return func(rf *RandomForestRegressor) { rf.Parallelism = n } }

// NewRandomForestRegressor returns a forest with the pinned imputation defaults:
// 100 fully grown trees on bootstrap samples, every feature considered, seed 42.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains every tree. Trees are grown concurrently; each owns its RNG and
// its slot, so the fitted forest does not depend on scheduling.
func (rf *RandomForestRegressor) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if rf.NEstimators < 1 {
		return fmt.Errorf("forest: n_estimators must be positive, got %d", rf.NEstimators)
	}
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	trees := make([]*Tree, rf.NEstimators)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rf.workers())
	for i := 0; i < rf.NEstimators; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rnd := rand.New(rand.NewSource(rf.RandomState + int64(i)))

			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = rnd.Intn(n)
				} else {
					sample[j] = j
				}
			}

			tree := NewTree(
				WithTreeMaxDepth(rf.MaxDepth),
				WithTreeMinSamplesSplit(rf.MinSamplesSplit),
				WithTreeMinSamplesLeaf(rf.MinSamplesLeaf),
				WithTreeMaxFeatures(rf.MaxFeatures),
			)
			tree.fitIndices(X, y, sample, rnd)
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.trees = trees
	return nil
}

// Predict returns the mean tree prediction for each row of X.
func (rf *RandomForestRegressor) Predict(X [][]float64) ([]float64, error) {
	if len(rf.trees) == 0 {
		return nil, errors.New("forest: model not fitted")
	}
	out := make([]float64, len(X))
	for _, tree := range rf.trees {
		preds, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		for i, p := range preds {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.trees))
	}
	return out, nil
}

// Trees returns the fitted trees
func (rf *RandomForestRegressor) Trees() []*Tree {
	return rf.trees
}

func (rf *RandomForestRegressor) workers() int {
	if rf.Parallelism > 0 {
		return rf.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}
