package slice

type options struct {
	midpointShrink bool
	perfect        bool
	gradientSlice  bool
	maxIterations  int
}

// Option configures the slice sampler.
type Option func(*options)

// WithMidpointShrink shrinks rejected brackets to a random point between the
// seed and the rejection point instead of to the rejection point. This speeds
// up contraction at the cost of minor auto-correlation.
func WithMidpointShrink(enabled bool) Option {
	return func(o *options) {
		o.midpointShrink = enabled
	}
}

// WithPerfect selects the perfect bracket spanning the unit cube. Only the
// perfect bracket is implemented; passing false makes New fail.
func WithPerfect(enabled bool) Option {
	return func(o *options) {
		o.perfect = enabled
	}
}

// WithGradientSlice slices along the normalized likelihood gradient at the
// seed, searching only uphill. Zero or non-finite gradients fall back to a
// random direction.
func WithGradientSlice(enabled bool) Option {
	return func(o *options) {
		o.gradientSlice = enabled
	}
}

// WithMaxIterations caps the shrink loop of each slice. When the cap is hit
// the invocation fails with sampler.ErrIterationCap. 0 means unbounded.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		perfect: true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
