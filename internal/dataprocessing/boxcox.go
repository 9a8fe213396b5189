package dataprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// goldenRatio is 1/phi, the interval shrink factor of golden-section search
const goldenRatio = 0.6180339887498949

// boxCoxLLF is the Box-Cox profile log-likelihood of positive data x at lambda
func boxCoxLLF(lambda float64, x, logx []float64) float64 {
	n := float64(len(x))
	y := make([]float64, len(x))
	for i := range x {
		y[i] = boxCoxValue(x[i], logx[i], lambda)
	}
	variance := stat.PopVariance(y, nil)
	if variance <= 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return math.Inf(-1)
	}
	return (lambda-1)*floats.Sum(logx) - n/2*math.Log(variance)
}

func boxCoxValue(x, logx, lambda float64) float64 {
	if math.Abs(lambda) < 1e-12 {
		return logx
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

// BoxCoxLambda returns the lambda maximising the Box-Cox log-likelihood of
// strictly positive, non-constant data. Nelder-Mead locates the optimum
// starting from 0; golden-section search polishes it.
func BoxCoxLambda(x []float64) float64 {
	logx := make([]float64, len(x))
	for i, v := range x {
		logx[i] = math.Log(v)
	}
	negLLF := func(lambda float64) float64 {
		v := -boxCoxLLF(lambda, x, logx)
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	start := 0.0
	problem := optimize.Problem{
		Func: func(p []float64) float64 { return negLLF(p[0]) },
	}
	result, err := optimize.Minimize(problem, []float64{start}, nil, &optimize.NelderMead{})
	if err == nil || (result != nil && !math.IsInf(result.F, 1)) {
		start = result.X[0]
	}

	return goldenSection(negLLF, start-1, start+1, 1e-10)
}

// goldenSection minimises a unimodal f on [a, b]
func goldenSection(f func(float64) float64, a, b, tol float64) float64 {
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	fc, fd := f(c), f(d)
	for math.Abs(b-a) > tol*(1+math.Abs(c)+math.Abs(d)) {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - goldenRatio*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + goldenRatio*(b-a)
			fd = f(d)
		}
	}
	return (a + b) / 2
}

// BoxCox applies the Box-Cox transform with the given lambda
func BoxCox(x []float64, lambda float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = boxCoxValue(v, math.Log(v), lambda)
	}
	return out
}
