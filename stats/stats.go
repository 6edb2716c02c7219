// Package stats estimates the quantities the multi-ellipsoidal sampler
// needs during preprocessing: the number of live points at each sample and
// the expected log prior volume enclosed by the current threshold.
package stats

import (
	"math"
	"sort"

	"github.com/hupe1980/nestgo/model"
)

// LiveCountEstimator computes the number of live points at every sample.
type LiveCountEstimator interface {
	// NumLivePoints returns the samples' indices sorted by ascending LogL
	// and the live-point count at each of them, in that order.
	NumLivePoints(c model.SampleCollection) (order []int, counts []float64)
}

// EvidenceEstimator computes the expected log prior volume after the given samples.
type EvidenceEstimator interface {
	LogXMean(counts []float64) float64
}

// Threads is the default LiveCountEstimator.
//
// A sample j is live when sample i is removed if it was drawn under a lower
// threshold and has not yet been removed: c_j < L_i <= L_j. Because c_j < L_j,
// the count reduces to #{j: c_j < L_i} - #{j: L_j < L_i}.
type Threads struct{}

// NumLivePoints implements LiveCountEstimator.
func (Threads) NumLivePoints(c model.SampleCollection) ([]int, []float64) {
	n := c.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return c[order[a]].LogL < c[order[b]].LogL })

	logL := c.LogL()
	sort.Float64s(logL)
	constraints := c.LogLConstraints()
	sort.Float64s(constraints)

	counts := make([]float64, n)
	for k, i := range order {
		li := c[i].LogL
		below := sort.SearchFloat64s(constraints, li)
		removed := sort.SearchFloat64s(logL, li)
		counts[k] = float64(below - removed)
	}
	return order, counts
}

// Shrinkage is the default EvidenceEstimator: each removal with n live
// points shrinks the expected prior volume by n/(n+1).
type Shrinkage struct{}

// LogXMean implements EvidenceEstimator.
func (Shrinkage) LogXMean(counts []float64) float64 {
	logX := 0.0
	for _, n := range counts {
		if n <= 0 {
			continue
		}
		logX += math.Log(n) - math.Log1p(n)
	}
	return logX
}
