// Package model defines the core value types shared by every sampler.
//
// # Data Types
//
//   - Sample: an accepted point in the unit hypercube with its likelihood,
//     the constraint it was drawn under, and the evaluations it cost
//   - SeedPoint: a previously accepted sample used to start a chain
//   - SampleCollection: the threshold-ordered ledger of accepted samples
//
// # Models
//
// A Model maps a unit-cube point to a log-likelihood:
//
//	m := model.NewFunc(2, func(u []float64) float64 {
//	    return -floats.Dot(u, u)
//	})
//
// Models that also implement Gradienter supply an analytic gradient for
// gradient-aligned slicing. Everything else falls back to central finite
// differences (see Gradient).
package model
