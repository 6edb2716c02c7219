// Package nestgo provides the constrained-sampling engine of a nested
// sampler.
//
// Given the current live points and a likelihood threshold, nestgo draws new
// points from the prior restricted to the region above the threshold. Two
// samplers are provided:
//
//   - slice: a Markov uni-dimensional slice sampler that chains NumSlices
//     slices from a seed live point and returns intermediate states as
//     phantom samples
//   - multi_ellipsoid: a rejection sampler proposing from a union of
//     ellipsoids bounding the live points, relaxing the threshold when
//     rejection runs too long
//
// The outer loop (choosing thresholds, maintaining the sample collection,
// computing evidence) is left to the caller.
//
// # Quick Start
//
//	m := model.NewFunc(2, func(u []float64) float64 {
//	    return -0.5 * (u[0]*u[0] + u[1]*u[1])
//	})
//
//	cfg := config.Default()
//	cfg.Slice.NumSlices = 5
//	cfg.Slice.NumPhantomSave = 2
//
//	eng, err := nestgo.NewFromConfig(m, cfg)
//	if err != nil {
//	    return err
//	}
//
//	round, err := eng.Prepare(ctx, rng.NewKey(1), sampler.State{Collection: live})
//	if err != nil {
//	    return err
//	}
//	res, err := round.Replace(ctx, rng.NewKey(2), thresholds)
//
// # Determinism
//
// All randomness flows from explicit rng.Key values. The same key and inputs
// produce bit-identical outputs, independent of the number of workers.
//
// # Errors
//
// Invalid arguments fail at construction with an error matching
// ErrInvalidConfig. An invocation that exhausts its iteration cap fails with
// an error matching ErrSamplingFailed; it is retryable with a fresh key (see
// IsRetryable). Replace retries such slots and reports the ones that still
// fail in the result's Failed bitmap.
//
// # Observability
//
// Logging uses log/slog via Logger. Metrics are reported to a
// MetricsCollector (BasicMetricsCollector, PrometheusCollector). Prepare and
// Replace emit OpenTelemetry spans correlated by a per-round run id.
package nestgo
