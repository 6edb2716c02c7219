// Package sampler defines the contract shared by constrained samplers.
//
// A constrained sampler produces one new point whose log-likelihood exceeds a
// threshold, drawn (exactly or asymptotically) from the prior restricted to
// the super-threshold region. Two capability shapes exist:
//
//   - RejectionSampler: Preprocess once per round, then GetSample per slot
//   - MarkovSampler: Preprocess, then GetSeedPoint and GetSampleFromSeed per
//     slot, returning the terminal sample and its phantom samples
//
// Both declare NumPhantom so callers can size storage ahead of time, and both
// can be bound to a preprocessed state as a Proposal, the uniform shape used by
// the batch package and the nestgo facade.
//
// Samplers are pure functions of their inputs: the same key, threshold and
// state always produce bit-identical output, and no sampler holds mutable
// state across calls.
package sampler
