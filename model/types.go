package model

import (
	"fmt"
	"slices"
)

// Sample is an accepted point together with the threshold it was drawn under.
//
// Samples are values: samplers never mutate a Sample after returning it.
type Sample struct {
	// U is the point in the unit hypercube.
	U []float64
	// LogL is the log-likelihood at U.
	LogL float64
	// LogLConstraint is the threshold the sample was drawn under.
	LogLConstraint float64
	// NumLikelihoodEvaluations is the share of model evaluations credited to this sample.
	NumLikelihoodEvaluations int
}

// String returns a compact representation of the sample.
func (s Sample) String() string {
	return fmt.Sprintf("Sample(logL=%g, constraint=%g, evals=%d)", s.LogL, s.LogLConstraint, s.NumLikelihoodEvaluations)
}

// Clone returns a deep copy of s.
func (s Sample) Clone() Sample {
	s.U = slices.Clone(s.U)
	return s
}

// SeedPoint is a previously accepted sample used as a chain starting point.
type SeedPoint struct {
	U0    []float64
	LogL0 float64
}

// SampleCollection is the append-only, threshold-ordered ledger of accepted samples.
// It is owned by the outer loop; samplers only read from it.
type SampleCollection []Sample

// Len returns the number of samples.
func (c SampleCollection) Len() int { return len(c) }

// Front returns the window selected by idx. A nil idx selects the whole collection.
func (c SampleCollection) Front(idx []int) SampleCollection {
	if idx == nil {
		return c
	}
	out := make(SampleCollection, len(idx))
	for i, j := range idx {
		out[i] = c[j]
	}
	return out
}

// LogL returns the log-likelihoods of all samples.
func (c SampleCollection) LogL() []float64 {
	out := make([]float64, len(c))
	for i, s := range c {
		out[i] = s.LogL
	}
	return out
}

// LogLConstraints returns the thresholds all samples were drawn under.
func (c SampleCollection) LogLConstraints() []float64 {
	out := make([]float64, len(c))
	for i, s := range c {
		out[i] = s.LogLConstraint
	}
	return out
}

// Points returns the unit-cube coordinates of all samples.
// The inner slices alias the samples' storage.
func (c SampleCollection) Points() [][]float64 {
	out := make([][]float64, len(c))
	for i, s := range c {
		out[i] = s.U
	}
	return out
}

// Dim returns the dimensionality of the collection, or 0 if it is empty.
func (c SampleCollection) Dim() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0].U)
}
