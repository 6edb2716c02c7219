// Package slice implements a uni-dimensional slice sampler for nested sampling.
//
// Each invocation chains NumSlices one-dimensional slice proposals from a seed
// point, each proposal seeding the next. The final state is the accepted
// replacement; the NumPhantomSave states before it are returned as phantom
// samples. Slices run along a random direction on S^(D-1) or, in gradient
// mode, along the normalized likelihood gradient.
//
// Brackets are "perfect": they span the unit cube along the slice, so no
// step-out is needed. Rejected proposals shrink the bracket toward the seed,
// optionally further toward a random point of the shrunk side (midpoint
// shrink), which only uses likelihood comparisons.
//
// A proposal that lands exactly on the threshold is accepted when the seed
// itself sits exactly on the threshold. This lets chains move across
// likelihood plateaus; it is an approximation whose bias on discrete
// likelihoods has not been characterized.
package slice
