// Package multiellipsoid implements a rejection sampler that proposes from a
// union of ellipsoids bounding the live points.
//
// When a call needs more than 1/efficiencyThreshold evaluations, the
// likelihood constraint is relaxed by Backoff on every further attempt. The
// returned sample records the constraint actually used.
package multiellipsoid

import (
	"context"
	"fmt"

	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/internal/loop"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
)

// Backoff is subtracted from the constraint on each attempt past the
// efficiency budget.
const Backoff = 0.1

// Sampler is a multi-ellipsoidal rejection sampler. It is safe for concurrent use.
type Sampler struct {
	model               model.Model
	depth               int
	efficiencyThreshold float64
	opts                options
}

var (
	_ sampler.RejectionSampler[ellipsoid.MixtureState] = (*Sampler)(nil)
	_ sampler.Strategy                                 = (*Sampler)(nil)
)

// New returns a sampler fitting up to 2^depth ellipsoids.
func New(m model.Model, depth int, efficiencyThreshold float64, optFns ...Option) (*Sampler, error) {
	if m == nil {
		return nil, sampler.NewConfigError("model", "must not be nil")
	}
	if depth < 0 || depth > 30 {
		return nil, sampler.NewConfigError("depth", fmt.Sprintf("should be in [0, 30], got %d", depth))
	}
	if !(efficiencyThreshold > 0 && efficiencyThreshold <= 1) {
		return nil, sampler.NewConfigError("efficiency_threshold",
			fmt.Sprintf("should be in (0, 1], got %g", efficiencyThreshold))
	}

	opts := applyOptions(optFns)
	if opts.maxIterations < 0 {
		return nil, sampler.NewConfigError("max_iterations", fmt.Sprintf("should be >= 0, got %d", opts.maxIterations))
	}
	if opts.fitter == nil || opts.unionSampler == nil || opts.liveCounts == nil || opts.evidence == nil {
		return nil, sampler.NewConfigError("collaborators", "must not be nil")
	}
	if ms, ok := opts.fitter.(ellipsoid.MethodSupporter); ok && !ms.Supports(opts.method) {
		return nil, sampler.NewConfigError("method", fmt.Sprintf("%s is not supported by the fitter", opts.method)).
			WithCause(ellipsoid.ErrUnsupportedMethod)
	}

	return &Sampler{
		model:               m,
		depth:               depth,
		efficiencyThreshold: efficiencyThreshold,
		opts:                opts,
	}, nil
}

// NumPhantom implements sampler.Sampler. Rejection sampling keeps no phantoms.
func (s *Sampler) NumPhantom() int { return 0 }

// MaxNumEllipsoids returns 2^depth.
func (s *Sampler) MaxNumEllipsoids() int { return 1 << s.depth }

// EfficiencyThreshold returns the configured efficiency threshold.
func (s *Sampler) EfficiencyThreshold() float64 { return s.efficiencyThreshold }

// Preprocess fits the ellipsoid union to the front window, sized by the
// estimated prior volume of the collection.
func (s *Sampler) Preprocess(ctx context.Context, key rng.Key, state sampler.State) (ellipsoid.MixtureState, error) {
	front := state.Front()
	if front.Len() == 0 {
		return ellipsoid.MixtureState{}, sampler.ErrEmptyCollection
	}

	_, counts := s.opts.liveCounts.NumLivePoints(state.Collection)
	logX := s.opts.evidence.LogXMean(counts)

	mixture, err := s.opts.fitter.Fit(ctx, key, front.Points(), logX, s.MaxNumEllipsoids(), s.opts.method)
	if err != nil {
		return ellipsoid.MixtureState{}, fmt.Errorf("fit ellipsoids: %w", err)
	}
	return mixture, nil
}

// Prepare implements sampler.Strategy.
func (s *Sampler) Prepare(ctx context.Context, key rng.Key, state sampler.State) (sampler.Proposal, error) {
	mixture, err := s.Preprocess(ctx, key, state)
	if err != nil {
		return nil, err
	}
	return sampler.FromRejection[ellipsoid.MixtureState](s, state, mixture), nil
}

type rejectionCarry struct {
	key        rng.Key
	u          []float64
	logL       float64
	constraint float64
	evals      int
	done       bool
	err        error
}

// GetSample draws from the ellipsoid union until a point beats the
// (possibly relaxed) constraint.
func (s *Sampler) GetSample(key rng.Key, logLConstraint float64, _ sampler.State, mixture ellipsoid.MixtureState) (model.Sample, error) {
	key, initKey := key.Split2()
	u, err := s.opts.unionSampler.Sample(initKey, mixture, true)
	if err != nil {
		return model.Sample{}, fmt.Errorf("sample ellipsoid union: %w", err)
	}

	budget := 1 / s.efficiencyThreshold
	body := func(c rejectionCarry) rejectionCarry {
		key, sampleKey := c.key.Split2()
		logL := s.model.Forward(c.u)
		evals := c.evals + 1
		constraint := c.constraint
		if float64(evals) > budget {
			constraint -= Backoff
		}
		next := rejectionCarry{
			key:        key,
			u:          c.u,
			logL:       logL,
			constraint: constraint,
			evals:      evals,
			done:       logL > constraint,
		}
		if !next.done {
			next.u, next.err = s.opts.unionSampler.Sample(sampleKey, mixture, true)
		}
		return next
	}
	cond := func(c rejectionCarry) bool { return !c.done && c.err == nil }

	init := rejectionCarry{key: key, u: u, logL: logLConstraint, constraint: logLConstraint}
	out, err := loop.While(cond, body, init, s.opts.maxIterations)
	if err != nil {
		return model.Sample{}, err
	}
	if out.err != nil {
		return model.Sample{}, fmt.Errorf("sample ellipsoid union: %w", out.err)
	}

	return model.Sample{
		U:                        out.u,
		LogL:                     out.logL,
		LogLConstraint:           out.constraint,
		NumLikelihoodEvaluations: out.evals,
	}, nil
}
