package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// impurityEpsilon is the variance below which a node is treated as pure
const impurityEpsilon = 1e-12

// Tree is a CART regression tree.
type Tree struct {
	MaxDepth        int // 0 => unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => consider every feature at every split

	root      *node
	nFeatures int
}

// node is either a leaf (feature < 0) or a binary split on feature <= threshold
type node struct {
	feature     int
	threshold   float64
	left, right *node

	value float64 // mean target of the samples that reached the node
	n     int

	// sawMissing is set when NaN values reached the split during fit;
	// missingLeft then records the side they were sent to.
	sawMissing  bool
	missingLeft bool
}

func (n *node) isLeaf() bool { return n.feature < 0 }

// TreeOption configures a Tree
type TreeOption func(*Tree)

func WithTreeMaxDepth(d int) TreeOption { return func(t *Tree) { t.MaxDepth = d } }
func WithTreeMinSamplesSplit(n int) TreeOption {
	return func(t *Tree) { t.MinSamplesSplit = n }
}
func WithTreeMinSamplesLeaf(n int) TreeOption {
	return func(t *Tree) { t.MinSamplesLeaf = n }
}
func WithTreeMaxFeatures(k int) TreeOption { return func(t *Tree) { t.MaxFeatures = k } }

// NewTree returns a fully grown regression tree configuration.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on every row of X.
func (t *Tree) Fit(X [][]float64, y []float64, rnd *rand.Rand) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(0))
	}
	t.fitIndices(X, y, idx, rnd)
	return nil
}

// fitIndices grows the tree on the rows listed in idx. Repeated indices act as weights.
func (t *Tree) fitIndices(X [][]float64, y []float64, idx []int, rnd *rand.Rand) {
	t.nFeatures = len(X[0])
	t.root = t.build(X, y, idx, 0, rnd)
}

// Fitted reports whether Fit has been called successfully
func (t *Tree) Fitted() bool { return t.root != nil }

// Predict returns one prediction per row of X.
func (t *Tree) Predict(X [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, errors.New("forest: tree not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != t.nFeatures {
			return nil, fmt.Errorf("forest: row %d has %d features, expected %d", i, len(row), t.nFeatures)
		}
		out[i] = t.predictRow(row)
	}
	return out, nil
}

func (t *Tree) predictRow(row []float64) float64 {
	n := t.root
	for !n.isLeaf() {
		v := row[n.feature]
		var left bool
		switch {
		case !math.IsNaN(v):
			left = v <= n.threshold
		case n.sawMissing:
			left = n.missingLeft
		default:
			left = n.left.n >= n.right.n
		}
		if left {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// Depth returns the depth of the deepest leaf; a single leaf has depth 0.
func (t *Tree) Depth() int {
	var walk func(n *node) int
	walk = func(n *node) int {
		if n == nil || n.isLeaf() {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(t.root)
}

// Leaves returns the number of leaves
func (t *Tree) Leaves() int {
	var walk func(n *node) int
	walk = func(n *node) int {
		if n == nil {
			return 0
		}
		if n.isLeaf() {
			return 1
		}
		return walk(n.left) + walk(n.right)
	}
	return walk(t.root)
}

func (t *Tree) build(X [][]float64, y []float64, idx []int, depth int, rnd *rand.Rand) *node {
	ys := make([]float64, len(idx))
	for k, i := range idx {
		ys[k] = y[i]
	}
	mean, variance := stat.PopMeanVariance(ys, nil)
	nd := &node{feature: -1, value: mean, n: len(idx)}

	if len(idx) < t.MinSamplesSplit || len(idx) < 2*t.MinSamplesLeaf {
		return nd
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return nd
	}
	if variance <= impurityEpsilon {
		return nd
	}

	best, ok := t.bestSplit(X, y, idx, rnd)
	if !ok {
		return nd
	}

	left := make([]int, 0, best.nLeft)
	right := make([]int, 0, len(idx)-best.nLeft)
	for _, i := range idx {
		v := X[i][best.feature]
		goLeft := v <= best.threshold
		if math.IsNaN(v) {
			goLeft = best.missingLeft
		}
		if goLeft {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.sawMissing = best.nMissing > 0
	nd.missingLeft = best.missingLeft
	nd.left = t.build(X, y, left, depth+1, rnd)
	nd.right = t.build(X, y, right, depth+1, rnd)
	return nd
}

type split struct {
	feature     int
	threshold   float64
	missingLeft bool
	nMissing    int
	nLeft       int
	sse         float64
}

// moments accumulates the sums needed for the squared error of a group
type moments struct {
	n      int
	sum    float64
	sumSqr float64
}

func (m *moments) add(v float64) {
	m.n++
	m.sum += v
	m.sumSqr += v * v
}

func (m moments) plus(o moments) moments {
	return moments{n: m.n + o.n, sum: m.sum + o.sum, sumSqr: m.sumSqr + o.sumSqr}
}

func (m moments) minus(o moments) moments {
	return moments{n: m.n - o.n, sum: m.sum - o.sum, sumSqr: m.sumSqr - o.sumSqr}
}

func (m moments) sse() float64 {
	if m.n == 0 {
		return 0
	}
	v := m.sumSqr - m.sum*m.sum/float64(m.n)
	if v < 0 {
		return 0
	}
	return v
}

// candidateFeatures returns the features examined at one node
func (t *Tree) candidateFeatures(p int, rnd *rand.Rand) []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= p {
		features := make([]int, p)
		for f := range features {
			features[f] = f
		}
		return features
	}
	return rnd.Perm(p)[:t.MaxFeatures]
}

func (t *Tree) bestSplit(X [][]float64, y []float64, idx []int, rnd *rand.Rand) (split, bool) {
	best := split{sse: math.Inf(1)}
	found := false

	present := make([]int, 0, len(idx))
	for _, f := range t.candidateFeatures(len(X[0]), rnd) {
		present = present[:0]
		var missing moments
		for _, i := range idx {
			if math.IsNaN(X[i][f]) {
				missing.add(y[i])
			} else {
				present = append(present, i)
			}
		}
		if len(present) == 0 {
			continue
		}
		sort.SliceStable(present, func(a, b int) bool {
			return X[present[a]][f] < X[present[b]][f]
		})

		var total moments
		for _, i := range present {
			total.add(y[i])
		}

		consider := func(s split) {
			if s.sse < best.sse {
				best = s
				found = true
			}
		}

		var left moments
		for k := 0; k < len(present)-1; k++ {
			left.add(y[present[k]])
			lo, hi := X[present[k]][f], X[present[k+1]][f]
			if lo == hi {
				continue
			}
			right := total.minus(left)
			threshold := midpoint(lo, hi)

			if t.validLeaves(left.n, right.n+missing.n) {
				consider(split{
					feature:   f,
					threshold: threshold,
					nMissing:  missing.n,
					nLeft:     left.n,
					sse:       left.sse() + right.plus(missing).sse(),
				})
			}
			if missing.n > 0 && t.validLeaves(left.n+missing.n, right.n) {
				consider(split{
					feature:     f,
					threshold:   threshold,
					missingLeft: true,
					nMissing:    missing.n,
					nLeft:       left.n + missing.n,
					sse:         left.plus(missing).sse() + right.sse(),
				})
			}
		}

		// Observed values on one side, NaN on the other.
		if missing.n > 0 && t.validLeaves(total.n, missing.n) {
			consider(split{
				feature:   f,
				threshold: math.Inf(1),
				nMissing:  missing.n,
				nLeft:     total.n,
				sse:       total.sse() + missing.sse(),
			})
		}
	}
	return best, found
}

func (t *Tree) validLeaves(nLeft, nRight int) bool {
	return nLeft >= t.MinSamplesLeaf && nRight >= t.MinSamplesLeaf && nLeft > 0 && nRight > 0
}

// midpoint returns the split threshold between two adjacent distinct values.
// When rounding makes the midpoint equal the upper value, the lower one is used.
func midpoint(lo, hi float64) float64 {
	m := lo/2 + hi/2
	if m == hi || math.IsInf(m, 0) {
		return lo
	}
	return m
}

func checkTrainingSet(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("forest: %d rows but %d targets", len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return errors.New("forest: training set has no features")
	}
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("forest: row %d has %d features, expected %d", i, len(row), p)
		}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("forest: target %d is not finite", i)
		}
	}
	return nil
}
