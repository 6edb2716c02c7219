package sampler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRejection struct {
	calls int
	err   error
}

func (s *stubRejection) NumPhantom() int { return 0 }

func (s *stubRejection) Preprocess(context.Context, rng.Key, State) (int, error) { return 7, nil }

func (s *stubRejection) GetSample(key rng.Key, logLConstraint float64, state State, pre int) (model.Sample, error) {
	s.calls++
	if s.err != nil {
		return model.Sample{}, s.err
	}
	return model.Sample{U: []float64{0.5}, LogL: logLConstraint + float64(pre), LogLConstraint: logLConstraint, NumLikelihoodEvaluations: 1}, nil
}

type stubMarkov struct {
	seeds []model.SeedPoint
}

func (s *stubMarkov) NumPhantom() int { return 1 }

func (s *stubMarkov) Preprocess(context.Context, State) (model.SampleCollection, error) { return nil, nil }

func (s *stubMarkov) GetSeedPoint(key rng.Key, pre model.SampleCollection, logLConstraint float64) (model.SeedPoint, error) {
	if len(pre) == 0 {
		return model.SeedPoint{}, ErrEmptyCollection
	}
	return model.SeedPoint{U0: pre[0].U, LogL0: pre[0].LogL}, nil
}

func (s *stubMarkov) GetSampleFromSeed(key rng.Key, seed model.SeedPoint, logLConstraint float64, pre model.SampleCollection) (model.Sample, []model.Sample, error) {
	s.seeds = append(s.seeds, seed)
	return model.Sample{U: seed.U0, LogL: seed.LogL0, LogLConstraint: logLConstraint, NumLikelihoodEvaluations: 3},
		[]model.Sample{{U: seed.U0, LogL: seed.LogL0, LogLConstraint: logLConstraint, NumLikelihoodEvaluations: 2}}, nil
}

func (s *stubMarkov) PostProcess(c model.SampleCollection, _ model.SampleCollection) (model.SampleCollection, error) {
	return c, nil
}

func TestFromRejection(t *testing.T) {
	s := &stubRejection{}
	p := FromRejection[int](s, State{}, 7)

	res, err := p.Propose(rng.NewKey(1), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, p.NumPhantom())
	assert.Equal(t, 9.0, res.Sample.LogL)
	assert.Empty(t, res.Phantoms)
	assert.Equal(t, 1, res.NumLikelihoodEvaluations())

	s.err = ErrIterationCap
	_, err = p.Propose(rng.NewKey(1), 2)
	assert.True(t, IsRetryable(err))
}

func TestFromMarkov(t *testing.T) {
	s := &stubMarkov{}
	window := model.SampleCollection{{U: []float64{0.25}, LogL: 4}}
	p := FromMarkov[model.SampleCollection](s, window)

	res, err := p.Propose(rng.NewKey(1), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.NumPhantom())
	assert.Len(t, res.Phantoms, 1)
	assert.Equal(t, 5, res.NumLikelihoodEvaluations())
	require.Len(t, s.seeds, 1)
	assert.Equal(t, 4.0, s.seeds[0].LogL0)

	empty := FromMarkov[model.SampleCollection](s, nil)
	_, err = empty.Propose(rng.NewKey(1), 1)
	assert.ErrorIs(t, err, ErrEmptyCollection)
	assert.False(t, IsRetryable(err))
}

func TestState_Front(t *testing.T) {
	c := model.SampleCollection{{LogL: 1}, {LogL: 2}, {LogL: 3}}

	assert.Len(t, State{Collection: c}.Front(), 3)
	front := State{Collection: c, FrontIdx: []int{2, 0}}.Front()
	assert.Equal(t, []float64{3, 1}, front.LogL())
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("num_slices", "should be >= 1, got 0")

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "num_slices")

	var ce *ConfigError
	wrapped := fmt.Errorf("build: %w", err)
	require.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "num_slices", ce.Field)

	withCause := NewConfigError("perfect", "must be true").WithCause(ErrBracketModeUnsupported)
	assert.ErrorIs(t, withCause, ErrBracketModeUnsupported)
	assert.ErrorIs(t, withCause, ErrInvalidConfig)
}
