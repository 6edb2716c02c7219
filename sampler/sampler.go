package sampler

import (
	"context"

	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
)

// Sampler is the capability common to every constrained sampler.
type Sampler interface {
	// NumPhantom is the number of phantom samples returned per invocation.
	NumPhantom() int
}

// State is the read-only view of the outer loop's state handed to samplers.
type State struct {
	// Collection is the threshold-ordered ledger of accepted samples.
	Collection model.SampleCollection
	// FrontIdx selects the front window (the current live points).
	// Nil selects the whole collection.
	FrontIdx []int
}

// Front returns the front window of the collection.
func (s State) Front() model.SampleCollection {
	return s.Collection.Front(s.FrontIdx)
}

// RejectionSampler draws independent samples against a preprocessed state.
type RejectionSampler[S any] interface {
	Sampler
	Preprocess(ctx context.Context, key rng.Key, state State) (S, error)
	GetSample(key rng.Key, logLConstraint float64, state State, pre S) (model.Sample, error)
}

// MarkovSampler evolves a chain from a seed point.
type MarkovSampler[S any] interface {
	Sampler
	Preprocess(ctx context.Context, state State) (S, error)
	GetSeedPoint(key rng.Key, pre S, logLConstraint float64) (model.SeedPoint, error)
	GetSampleFromSeed(key rng.Key, seed model.SeedPoint, logLConstraint float64, pre S) (model.Sample, []model.Sample, error)
	PostProcess(collection model.SampleCollection, pre S) (S, error)
}

// Result is the output of one sampler invocation.
type Result struct {
	// Sample is the accepted replacement.
	Sample model.Sample
	// Phantoms are the retained intermediate samples, oldest first.
	Phantoms []model.Sample
}

// NumLikelihoodEvaluations returns the evaluations credited to the result.
func (r Result) NumLikelihoodEvaluations() int {
	total := r.Sample.NumLikelihoodEvaluations
	for _, p := range r.Phantoms {
		total += p.NumLikelihoodEvaluations
	}
	return total
}

// Proposal is a sampler bound to a preprocessed state.
// Propose is safe for concurrent use.
type Proposal interface {
	Sampler
	Propose(key rng.Key, logLConstraint float64) (Result, error)
}

// Strategy is a sampler that can preprocess a state into a Proposal.
type Strategy interface {
	Sampler
	Prepare(ctx context.Context, key rng.Key, state State) (Proposal, error)
}

type rejectionProposal[S any] struct {
	sampler RejectionSampler[S]
	state   State
	pre     S
}

// FromRejection binds a rejection sampler to its preprocessed state.
func FromRejection[S any](s RejectionSampler[S], state State, pre S) Proposal {
	return &rejectionProposal[S]{sampler: s, state: state, pre: pre}
}

func (p *rejectionProposal[S]) NumPhantom() int { return 0 }

func (p *rejectionProposal[S]) Propose(key rng.Key, logLConstraint float64) (Result, error) {
	sample, err := p.sampler.GetSample(key, logLConstraint, p.state, p.pre)
	if err != nil {
		return Result{}, err
	}
	return Result{Sample: sample}, nil
}

type markovProposal[S any] struct {
	sampler MarkovSampler[S]
	pre     S
}

// FromMarkov binds a Markov sampler to its preprocessed state. Each Propose
// splits its key once: the first half picks the seed, the second runs the chain.
func FromMarkov[S any](s MarkovSampler[S], pre S) Proposal {
	return &markovProposal[S]{sampler: s, pre: pre}
}

func (p *markovProposal[S]) NumPhantom() int { return p.sampler.NumPhantom() }

func (p *markovProposal[S]) Propose(key rng.Key, logLConstraint float64) (Result, error) {
	seedKey, chainKey := key.Split2()
	seed, err := p.sampler.GetSeedPoint(seedKey, p.pre, logLConstraint)
	if err != nil {
		return Result{}, err
	}
	sample, phantoms, err := p.sampler.GetSampleFromSeed(chainKey, seed, logLConstraint, p.pre)
	if err != nil {
		return Result{}, err
	}
	return Result{Sample: sample, Phantoms: phantoms}, nil
}
