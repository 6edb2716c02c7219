package multiellipsoid

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUnion struct {
	point []float64
	calls int
	err   error
}

func (f *fixedUnion) Sample(rng.Key, ellipsoid.MixtureState, bool) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]float64(nil), f.point...), nil
}

type recordingFitter struct {
	logVolume float64
	maxNum    int
	numPoints int
	method    ellipsoid.Method
}

func (f *recordingFitter) Fit(_ context.Context, _ rng.Key, points [][]float64, logVolume float64, maxNum int, method ellipsoid.Method) (ellipsoid.MixtureState, error) {
	f.logVolume, f.maxNum, f.numPoints, f.method = logVolume, maxNum, len(points), method
	return ellipsoid.MixtureState{}, nil
}

func gaussian(dim int) *model.Func {
	return model.NewFunc(dim, func(u []float64) float64 {
		var sum float64
		for _, x := range u {
			d := (x - 0.5) / 0.1
			sum += d * d
		}
		return -0.5 * sum
	})
}

func TestNew(t *testing.T) {
	m := gaussian(2)

	tests := []struct {
		name  string
		depth int
		eff   float64
		opts  []Option
		field string
	}{
		{name: "negative depth", depth: -1, eff: 0.5, field: "depth"},
		{name: "zero efficiency", depth: 1, eff: 0, field: "efficiency_threshold"},
		{name: "efficiency above one", depth: 1, eff: 1.5, field: "efficiency_threshold"},
		{name: "nan efficiency", depth: 1, eff: math.NaN(), field: "efficiency_threshold"},
		{name: "negative cap", depth: 1, eff: 0.5, opts: []Option{WithMaxIterations(-1)}, field: "max_iterations"},
		{name: "nil fitter", depth: 1, eff: 0.5, opts: []Option{WithFitter(nil)}, field: "collaborators"},
		{name: "method unsupported by kmeans fitter", depth: 1, eff: 0.5, opts: []Option{WithMethod(ellipsoid.MethodEMGMM)}, field: "method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(m, tt.depth, tt.eff, tt.opts...)
			require.ErrorIs(t, err, sampler.ErrInvalidConfig)

			var cfgErr *sampler.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	_, err := New(m, 1, 0.5, WithMethod(ellipsoid.MethodEMGMM))
	assert.ErrorIs(t, err, ellipsoid.ErrUnsupportedMethod)

	// Fitters that cannot report support are trusted until Fit.
	_, err = New(m, 1, 0.5, WithFitter(&recordingFitter{}), WithMethod(ellipsoid.MethodEMGMM))
	require.NoError(t, err)

	s, err := New(m, 3, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 8, s.MaxNumEllipsoids())
	assert.Equal(t, 0, s.NumPhantom())
}

func TestGetSampleBackoff(t *testing.T) {
	tests := []struct {
		name           string
		logL           float64
		wantEvals      int
		wantConstraint float64
	}{
		{name: "accepted without relaxation", logL: 0.5, wantEvals: 1, wantConstraint: 0},
		{name: "one relaxation", logL: -0.05, wantEvals: 3, wantConstraint: -0.1},
		{name: "three relaxations", logL: -0.25, wantEvals: 5, wantConstraint: -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counting := &model.Counting{Model: model.NewFunc(2, func([]float64) float64 { return tt.logL })}
			union := &fixedUnion{point: []float64{0.4, 0.6}}
			s, err := New(counting, 1, 0.5, WithUnionSampler(union))
			require.NoError(t, err)

			smp, err := s.GetSample(rng.NewKey(1), 0, sampler.State{}, ellipsoid.MixtureState{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantEvals, smp.NumLikelihoodEvaluations)
			assert.Equal(t, counting.Calls, smp.NumLikelihoodEvaluations)
			assert.InDelta(t, tt.wantConstraint, smp.LogLConstraint, 1e-12)
			assert.Greater(t, smp.LogL, smp.LogLConstraint)
			assert.Equal(t, []float64{0.4, 0.6}, smp.U)
		})
	}
}

func TestGetSampleRelaxesByExactlyOneDecrement(t *testing.T) {
	m := model.NewFunc(1, func([]float64) float64 { return -0.05 })
	s, err := New(m, 0, 0.5, WithUnionSampler(&fixedUnion{point: []float64{0.5}}))
	require.NoError(t, err)

	smp, err := s.GetSample(rng.NewKey(3), 0, sampler.State{}, ellipsoid.MixtureState{})
	require.NoError(t, err)
	assert.Equal(t, -Backoff, smp.LogLConstraint)
}

func TestGetSampleIterationCap(t *testing.T) {
	m := model.NewFunc(1, func([]float64) float64 { return math.Inf(-1) })
	s, err := New(m, 0, 1, WithUnionSampler(&fixedUnion{point: []float64{0.5}}), WithMaxIterations(10))
	require.NoError(t, err)

	_, err = s.GetSample(rng.NewKey(3), 0, sampler.State{}, ellipsoid.MixtureState{})
	require.ErrorIs(t, err, sampler.ErrIterationCap)
	assert.True(t, sampler.IsRetryable(err))
}

func TestGetSampleUnionError(t *testing.T) {
	boom := errors.New("boom")
	s, err := New(gaussian(1), 0, 1, WithUnionSampler(&fixedUnion{err: boom}))
	require.NoError(t, err)

	_, err = s.GetSample(rng.NewKey(3), 0, sampler.State{}, ellipsoid.MixtureState{})
	assert.ErrorIs(t, err, boom)
}

func TestPreprocessUsesEstimators(t *testing.T) {
	fitter := &recordingFitter{}
	s, err := New(gaussian(1), 2, 0.5, WithFitter(fitter))
	require.NoError(t, err)

	collection := model.SampleCollection{
		{U: []float64{0.1}, LogL: -8, LogLConstraint: math.Inf(-1)},
		{U: []float64{0.3}, LogL: -2, LogLConstraint: math.Inf(-1)},
		{U: []float64{0.5}, LogL: 0, LogLConstraint: math.Inf(-1)},
		{U: []float64{0.45}, LogL: -0.1, LogLConstraint: -8},
	}
	state := sampler.State{Collection: collection, FrontIdx: []int{1, 2, 3}}

	_, err = s.Preprocess(context.Background(), rng.NewKey(1), state)
	require.NoError(t, err)

	assert.Equal(t, 4, fitter.maxNum)
	assert.Equal(t, 3, fitter.numPoints)
	assert.Equal(t, ellipsoid.MethodKMeans, fitter.method)
	// Live counts are 3, 3, 2, 1.
	want := math.Log(3.0/4) + math.Log(3.0/4) + math.Log(2.0/3) + math.Log(1.0/2)
	assert.InDelta(t, want, fitter.logVolume, 1e-12)
}

type failingFitter struct{ err error }

func (f failingFitter) Fit(context.Context, rng.Key, [][]float64, float64, int, ellipsoid.Method) (ellipsoid.MixtureState, error) {
	return ellipsoid.MixtureState{}, f.err
}

func TestPreprocessErrors(t *testing.T) {
	s, err := New(gaussian(1), 1, 0.5, WithFitter(failingFitter{err: ellipsoid.ErrNoPoints}))
	require.NoError(t, err)

	_, err = s.Preprocess(context.Background(), rng.NewKey(1), sampler.State{})
	assert.ErrorIs(t, err, sampler.ErrEmptyCollection)

	collection := model.SampleCollection{
		{U: []float64{0.1}, LogL: -8, LogLConstraint: math.Inf(-1)},
		{U: []float64{0.3}, LogL: -2, LogLConstraint: math.Inf(-1)},
	}
	_, err = s.Preprocess(context.Background(), rng.NewKey(1), sampler.State{Collection: collection})
	assert.ErrorIs(t, err, ellipsoid.ErrNoPoints)
}

func TestPrepareAndPropose(t *testing.T) {
	m := gaussian(2)
	s, err := New(m, 2, 0.2, WithMaxIterations(100000))
	require.NoError(t, err)

	keys := rng.NewKey(21).Split(60)
	collection := make(model.SampleCollection, 0, len(keys))
	for _, k := range keys {
		kx, ky := k.Split2()
		u := []float64{rng.Uniform(kx, 0.3, 0.7), rng.Uniform(ky, 0.3, 0.7)}
		collection = append(collection, model.Sample{U: u, LogL: m.Forward(u), LogLConstraint: math.Inf(-1)})
	}

	p, err := s.Prepare(context.Background(), rng.NewKey(5), sampler.State{Collection: collection})
	require.NoError(t, err)

	for _, k := range rng.NewKey(6).Split(10) {
		res, err := p.Propose(k, -2)
		require.NoError(t, err)
		assert.Empty(t, res.Phantoms)
		assert.Greater(t, res.Sample.LogL, res.Sample.LogLConstraint)
		assert.LessOrEqual(t, res.Sample.LogLConstraint, -2.0)
		for _, x := range res.Sample.U {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 1.0)
		}
	}

	a, err := p.Propose(rng.NewKey(7), -2)
	require.NoError(t, err)
	b, err := p.Propose(rng.NewKey(7), -2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
