package multiellipsoid

import (
	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/stats"
)

type options struct {
	fitter        ellipsoid.Fitter
	unionSampler  ellipsoid.UnionSampler
	liveCounts    stats.LiveCountEstimator
	evidence      stats.EvidenceEstimator
	method        ellipsoid.Method
	maxIterations int
}

// Option configures the multi-ellipsoidal sampler.
type Option func(*options)

// WithFitter sets the ellipsoid fitting collaborator.
func WithFitter(f ellipsoid.Fitter) Option {
	return func(o *options) {
		o.fitter = f
	}
}

// WithUnionSampler sets the union-of-ellipsoids sampling primitive.
func WithUnionSampler(s ellipsoid.UnionSampler) Option {
	return func(o *options) {
		o.unionSampler = s
	}
}

// WithLiveCountEstimator sets the estimator of live points per threshold.
func WithLiveCountEstimator(e stats.LiveCountEstimator) Option {
	return func(o *options) {
		o.liveCounts = e
	}
}

// WithEvidenceEstimator sets the estimator of the enclosed prior volume.
func WithEvidenceEstimator(e stats.EvidenceEstimator) Option {
	return func(o *options) {
		o.evidence = e
	}
}

// WithMethod selects the clustering method passed to the fitter.
func WithMethod(m ellipsoid.Method) Option {
	return func(o *options) {
		o.method = m
	}
}

// WithMaxIterations caps the rejection loop. When the cap is hit GetSample
// fails with sampler.ErrIterationCap. 0 means unbounded.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fitter:       ellipsoid.KMeansFitter{},
		unionSampler: ellipsoid.DefaultUnionSampler{},
		liveCounts:   stats.Threads{},
		evidence:     stats.Shrinkage{},
		method:       ellipsoid.MethodKMeans,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
