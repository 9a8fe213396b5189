package dataprocessing

import (
	"fmt"
	"math"
)

// Boundary controls which missing runs linear interpolation may fill
type Boundary string

const (
	// BoundaryForward fills interior gaps and carries the last observed value
	// over a trailing run. Leading missing cells stay missing.
	BoundaryForward Boundary = "forward"
	// BoundaryInside fills only gaps with an observed value on both sides
	BoundaryInside Boundary = "inside"
	// BoundaryBoth also fills a leading run with the first observed value
	BoundaryBoth Boundary = "both"
)

// ParseBoundary validates a boundary policy name
func ParseBoundary(s string) (Boundary, error) {
	switch b := Boundary(s); b {
	case BoundaryForward, BoundaryInside, BoundaryBoth:
		return b, nil
	}
	return "", fmt.Errorf("unknown interpolation boundary %q", s)
}

// Interpolate fills NaN cells by straight lines between the nearest observed
// neighbours, using row position as the x axis. It returns a new slice and the
// number of cells filled. A series with no observed value is returned as is.
func Interpolate(values []float64, boundary Boundary) ([]float64, int) {
	out := append([]float64(nil), values...)

	first, last := -1, -1
	for i, v := range values {
		if !math.IsNaN(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return out, 0
	}

	filled := 0
	prev := first
	for i := first + 1; i <= last; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if gap := i - prev; gap > 1 {
			lo, hi := values[prev], values[i]
			for k := prev + 1; k < i; k++ {
				frac := float64(k-prev) / float64(gap)
				out[k] = lo + (hi-lo)*frac
				filled++
			}
		}
		prev = i
	}

	if boundary == BoundaryForward || boundary == BoundaryBoth {
		for i := last + 1; i < len(out); i++ {
			out[i] = values[last]
			filled++
		}
	}
	if boundary == BoundaryBoth {
		for i := 0; i < first; i++ {
			out[i] = values[first]
			filled++
		}
	}
	return out, filled
}
