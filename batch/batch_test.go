package batch

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
	"github.com/hupe1980/nestgo/sampler/slice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProposal fails with a retryable error for thresholds in failFor, and
// for the first failFirst calls of every other slot.
type flakyProposal struct {
	failFor   map[float64]bool
	failFirst int
	fatal     error

	mu    sync.Mutex
	calls map[float64]int
}

func (p *flakyProposal) NumPhantom() int { return 0 }

func (p *flakyProposal) Propose(key rng.Key, logLConstraint float64) (sampler.Result, error) {
	p.mu.Lock()
	if p.calls == nil {
		p.calls = map[float64]int{}
	}
	p.calls[logLConstraint]++
	n := p.calls[logLConstraint]
	p.mu.Unlock()

	if p.fatal != nil {
		return sampler.Result{}, p.fatal
	}
	if p.failFor[logLConstraint] || n <= p.failFirst {
		return sampler.Result{}, sampler.ErrIterationCap
	}
	return sampler.Result{Sample: model.Sample{
		U:                        []float64{rng.Uniform(key, 0, 1)},
		LogL:                     logLConstraint + 1,
		LogLConstraint:           logLConstraint,
		NumLikelihoodEvaluations: 2,
	}}, nil
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

func slicePropose(t *testing.T) sampler.Proposal {
	t.Helper()
	s, err := slice.New(gaussian(2), 4, 2)
	require.NoError(t, err)

	collection := model.SampleCollection{
		{U: []float64{0.5, 0.5}, LogL: 0, LogLConstraint: math.Inf(-1)},
		{U: []float64{0.55, 0.45}, LogL: -0.25, LogLConstraint: math.Inf(-1)},
	}
	p, err := s.Prepare(context.Background(), rng.NewKey(1), sampler.State{Collection: collection})
	require.NoError(t, err)
	return p
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	p := slicePropose(t)
	thresholds := []float64{-1, -0.9, -0.8, -0.7, -0.6, -0.5, -0.4, -0.3}

	serial, err := Run(context.Background(), p, rng.NewKey(7), thresholds, WithMaxWorkers(1))
	require.NoError(t, err)
	parallel, err := Run(context.Background(), p, rng.NewKey(7), thresholds, WithMaxWorkers(8))
	require.NoError(t, err)

	assert.Equal(t, serial.Samples, parallel.Samples)
	assert.Equal(t, serial.Phantoms, parallel.Phantoms)
	assert.Equal(t, serial.NumEvaluations, parallel.NumEvaluations)
	assert.True(t, serial.Failed.IsEmpty())
	assert.Equal(t, len(thresholds), serial.Succeeded())

	for i, smp := range serial.Samples {
		assert.Greater(t, smp.LogL, thresholds[i])
		assert.Len(t, serial.Phantoms[i], 2)
	}
}

func TestRunCountsEvaluations(t *testing.T) {
	p := &flakyProposal{}
	res, err := Run(context.Background(), p, rng.NewKey(1), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6, res.NumEvaluations)
	assert.Equal(t, 0, res.Retries)
}

func TestRunRecordsFailedSlots(t *testing.T) {
	p := &flakyProposal{failFor: map[float64]bool{2: true, 4: true}}

	var hooked atomic.Int64
	res, err := Run(context.Background(), p, rng.NewKey(1), []float64{1, 2, 3, 4},
		WithMaxRetries(2),
		WithMaxWorkers(2),
		WithRetryHook(func(slot, attempt int, err error) {
			hooked.Add(1)
			assert.ErrorIs(t, err, sampler.ErrIterationCap)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 3}, res.Failed.ToArray())
	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, 4, res.Retries)
	assert.Equal(t, int64(4), hooked.Load())
	assert.Equal(t, 3, p.calls[2])
	assert.Equal(t, model.Sample{}, res.Samples[1])
	assert.Equal(t, 4, res.NumEvaluations)
}

func TestRunRetriesWithFreshKey(t *testing.T) {
	p := &flakyProposal{failFirst: 1}
	res, err := Run(context.Background(), p, rng.NewKey(1), []float64{1, 2}, WithMaxRetries(1))
	require.NoError(t, err)
	assert.True(t, res.Failed.IsEmpty())
	assert.Equal(t, 2, res.Retries)

	again, err := Run(context.Background(), &flakyProposal{failFirst: 1}, rng.NewKey(1), []float64{1, 2}, WithMaxRetries(1))
	require.NoError(t, err)
	assert.Equal(t, res.Samples, again.Samples)
}

func TestRunAbortsOnFatalError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), &flakyProposal{fatal: boom}, rng.NewKey(1), []float64{1, 2, 3})
	assert.ErrorIs(t, err, boom)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &flakyProposal{}, rng.NewKey(1), []float64{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	res, err := Run(context.Background(), &flakyProposal{}, rng.NewKey(1), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Samples)
	assert.True(t, res.Failed.IsEmpty())
}

func TestRunRateLimited(t *testing.T) {
	res, err := Run(context.Background(), &flakyProposal{}, rng.NewKey(1), []float64{1, 2, 3},
		WithInvocationsPerSecond(1000), WithMaxWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded())
}
