package slice

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/nestgo/internal/loop"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
)

// Sampler is a uni-dimensional slice sampler. It is safe for concurrent use.
type Sampler struct {
	model          model.Model
	numSlices      int
	numPhantomSave int
	opts           options
}

var (
	_ sampler.MarkovSampler[model.SampleCollection] = (*Sampler)(nil)
	_ sampler.Strategy                              = (*Sampler)(nil)
)

// New returns a slice sampler running numSlices slices per invocation and
// keeping the last numPhantomSave intermediate states as phantoms.
func New(m model.Model, numSlices, numPhantomSave int, optFns ...Option) (*Sampler, error) {
	if m == nil {
		return nil, sampler.NewConfigError("model", "must not be nil")
	}
	if numSlices < 1 {
		return nil, sampler.NewConfigError("num_slices", fmt.Sprintf("should be >= 1, got %d", numSlices))
	}
	if numPhantomSave < 0 {
		return nil, sampler.NewConfigError("num_phantom_save", fmt.Sprintf("should be >= 0, got %d", numPhantomSave))
	}
	if numPhantomSave >= numSlices {
		return nil, sampler.NewConfigError("num_phantom_save",
			fmt.Sprintf("should be < num_slices (%d), got %d", numSlices, numPhantomSave))
	}

	opts := applyOptions(optFns)
	if !opts.perfect {
		return nil, sampler.NewConfigError("perfect", "must be true").WithCause(sampler.ErrBracketModeUnsupported)
	}
	if opts.maxIterations < 0 {
		return nil, sampler.NewConfigError("max_iterations", fmt.Sprintf("should be >= 0, got %d", opts.maxIterations))
	}

	return &Sampler{
		model:          m,
		numSlices:      numSlices,
		numPhantomSave: numPhantomSave,
		opts:           opts,
	}, nil
}

// NumPhantom implements sampler.Sampler.
func (s *Sampler) NumPhantom() int { return s.numPhantomSave }

// NumSlices returns the number of slices per invocation.
func (s *Sampler) NumSlices() int { return s.numSlices }

// Preprocess returns the front window of the state.
func (s *Sampler) Preprocess(_ context.Context, state sampler.State) (model.SampleCollection, error) {
	return state.Front(), nil
}

// PostProcess returns the collection unchanged.
func (s *Sampler) PostProcess(collection model.SampleCollection, _ model.SampleCollection) (model.SampleCollection, error) {
	return collection, nil
}

// Prepare implements sampler.Strategy.
func (s *Sampler) Prepare(ctx context.Context, _ rng.Key, state sampler.State) (sampler.Proposal, error) {
	window, err := s.Preprocess(ctx, state)
	if err != nil {
		return nil, err
	}
	return sampler.FromMarkov[model.SampleCollection](s, window), nil
}

// GetSeedPoint picks a window member uniformly among those strictly above
// logLConstraint, or uniformly among all members if none is.
func (s *Sampler) GetSeedPoint(key rng.Key, window model.SampleCollection, logLConstraint float64) (model.SeedPoint, error) {
	if len(window) == 0 {
		return model.SeedPoint{}, sampler.ErrEmptyCollection
	}

	logWeights := make([]float64, len(window))
	anyAbove := false
	for i, smp := range window {
		if smp.LogL > logLConstraint {
			anyAbove = true
		} else {
			logWeights[i] = math.Inf(-1)
		}
	}
	if !anyAbove {
		clear(logWeights)
	}

	idx := rng.Categorical(key, logWeights)
	return model.SeedPoint{
		U0:    slices.Clone(window[idx].U),
		LogL0: window[idx].LogL,
	}, nil
}

// GetSampleFromSeed chains NumSlices slices from seed. The final state is
// returned as the sample; the NumPhantom states preceding it are returned as
// phantoms. Evaluations are split evenly over the phantoms, the remainder
// going to the sample, so the total is conserved.
//
// If a slice collapses without acceptance it yields the seed unchanged, so a
// seed with LogL0 <= logLConstraint can come back below the constraint.
func (s *Sampler) GetSampleFromSeed(key rng.Key, seed model.SeedPoint, logLConstraint float64, _ model.SampleCollection) (model.Sample, []model.Sample, error) {
	if len(seed.U0) != s.model.Dim() {
		return model.Sample{}, nil, fmt.Errorf("%w: seed has %d, model has %d",
			sampler.ErrDimensionMismatch, len(seed.U0), s.model.Dim())
	}

	init := model.Sample{
		U:              seed.U0,
		LogL:           seed.LogL0,
		LogLConstraint: logLConstraint,
	}
	step := func(prev model.Sample, k rng.Key) (model.Sample, error) {
		u, logL, evals, err := s.newProposal(k, model.SeedPoint{U0: prev.U, LogL0: prev.LogL}, logLConstraint)
		if err != nil {
			return prev, err
		}
		return model.Sample{
			U:                        u,
			LogL:                     logL,
			LogLConstraint:           logLConstraint,
			NumLikelihoodEvaluations: prev.NumLikelihoodEvaluations + evals,
		}, nil
	}

	final, history, err := loop.Scan(step, init, key.Split(s.numSlices))
	if err != nil {
		return model.Sample{}, nil, err
	}

	nps := s.numPhantomSave
	phantoms := slices.Clone(history[len(history)-(nps+1) : len(history)-1])
	total := final.NumLikelihoodEvaluations
	per := total / (nps + 1)
	for i := range phantoms {
		phantoms[i].NumLikelihoodEvaluations = per
	}
	final.NumLikelihoodEvaluations = total - per*nps

	return final, phantoms, nil
}
