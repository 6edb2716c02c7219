package kmeans

import (
	"context"
	"math"

	"github.com/hupe1980/nestgo/rng"
	"gonum.org/v1/gonum/floats"
)

// Train partitions points into k clusters using Lloyd's algorithm.
// Centroids are seeded from a key-derived permutation of the points, so the
// result is deterministic for a fixed key.
//
// It returns the centroids and the cluster assignment of every point.
// If there are fewer points than clusters it returns nil, nil, nil.
func Train(ctx context.Context, key rng.Key, points [][]float64, k int, maxIter int) ([][]float64, []int, error) {
	n := len(points)
	if n < k || k <= 0 {
		return nil, nil, nil // Not enough points to cluster
	}

	initKey, reseedKey := key.Split2()
	perm := rng.Perm(initKey, n)
	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	reseed := rng.Perm(reseedKey, n)
	reseedNext := 0

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		changed := false

		// Assignment step
		for i, p := range points {
			best := Assign(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		for j := range centroids {
			for d := range centroids[j] {
				centroids[j][d] = 0
			}
			counts[j] = 0
		}
		for i, p := range points {
			floats.Add(centroids[assignments[i]], p)
			counts[assignments[i]]++
		}
		for j := range centroids {
			if counts[j] > 0 {
				floats.Scale(1/float64(counts[j]), centroids[j])
				continue
			}
			// Re-initialize empty cluster from the reseed permutation
			idx := reseed[reseedNext%n]
			reseedNext++
			copy(centroids[j], points[idx])
		}
	}

	return centroids, assignments, nil
}

// Assign returns the index of the centroid closest to p in squared L2.
func Assign(p []float64, centroids [][]float64) int {
	best := -1
	minDist := math.Inf(1)
	for j, c := range centroids {
		d := squaredL2(p, c)
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
