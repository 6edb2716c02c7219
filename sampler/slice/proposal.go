package slice

import (
	"math"
	"slices"

	"github.com/hupe1980/nestgo/internal/loop"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"gonum.org/v1/gonum/floats"
)

// collapseWidth is twice the float64 machine epsilon.
const collapseWidth = 2 * 2.220446049250313e-16

// sampleDirection draws a direction uniformly from S^(dim-1).
// For dim == 1 the direction is fixed.
func sampleDirection(key rng.Key, dim int) []float64 {
	if dim == 1 {
		return []float64{1}
	}
	direction := rng.Normal(key, dim)
	norm := floats.Norm(direction, 2)
	if norm == 0 {
		direction[0], norm = 1, 1
	}
	floats.Scale(1/norm, direction)
	return direction
}

// gradientDirection normalizes grad, falling back to a random direction when
// its norm is zero or non-finite.
func gradientDirection(key rng.Key, grad []float64) []float64 {
	norm := floats.Norm(grad, 2)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return sampleDirection(key, len(grad))
	}
	direction := slices.Clone(grad)
	floats.Scale(1/norm, direction)
	return direction
}

// sliceBounds returns the interval [left, right] of t for which
// u0 + t*direction stays inside the unit cube. left <= 0 <= right.
func sliceBounds(u0, direction []float64) (float64, float64) {
	left, right := math.Inf(-1), math.Inf(1)
	for i, d := range direction {
		for _, t := range [2]float64{(1 - u0[i]) / d, -u0[i] / d} {
			// NaN (0/0) fails both comparisons and is skipped.
			if t >= 0 && t < right {
				right = t
			}
			if t <= 0 && t > left {
				left = t
			}
		}
	}
	return left, right
}

// pickPoint draws t uniformly from [left, right] and returns u0 + t*direction.
func pickPoint(key rng.Key, u0, direction []float64, left, right float64) ([]float64, float64) {
	t := rng.Uniform(key, left, right)
	point := make([]float64, len(u0))
	floats.AddScaledTo(point, u0, t, direction)
	return point, t
}

// shrinkInterval contracts the bracket after a rejection at t. Without
// midpoint shrink the rejected side moves to t; with it, to a uniformly
// random point between the origin and t.
func shrinkInterval(key rng.Key, t, left, right float64, midpointShrink bool) (float64, float64) {
	if t < 0 {
		left = t
	}
	if t > 0 {
		right = t
	}
	if midpointShrink {
		alpha := rng.Uniform(key, 0, 1)
		if t < 0 {
			left *= alpha
		}
		if t > 0 {
			right *= alpha
		}
	}
	return left, right
}

type proposalCarry struct {
	key       rng.Key
	direction []float64
	left      float64
	right     float64
	t         float64
	u         []float64
	logL      float64
	evals     int
}

// newProposal runs one slice from seed and returns the new point, its
// log-likelihood, and the model evaluations spent.
func (s *Sampler) newProposal(key rng.Key, seed model.SeedPoint, logLConstraint float64) ([]float64, float64, int, error) {
	key, nKey, tKey := key.Split3()

	var (
		direction   []float64
		left, right float64
		evals       int
	)
	if s.opts.gradientSlice {
		grad, n := model.Gradient(s.model, seed.U0)
		evals += n
		direction = gradientDirection(nKey, grad)
		left, right = sliceBounds(seed.U0, direction)
		left = 0
	} else {
		direction = sampleDirection(nKey, len(seed.U0))
		left, right = sliceBounds(seed.U0, direction)
	}

	u, t := pickPoint(tKey, seed.U0, direction, left, right)
	init := proposalCarry{
		key:       key,
		direction: direction,
		left:      left,
		right:     right,
		t:         t,
		u:         u,
		logL:      s.model.Forward(u),
		evals:     evals + 1,
	}

	accepted := func(c proposalCarry) bool {
		if c.logL > logLConstraint {
			return true
		}
		// Plateau: both the seed and the proposal sit exactly on the threshold.
		return seed.LogL0 == logLConstraint && c.logL == logLConstraint
	}
	cond := func(c proposalCarry) bool {
		collapsed := c.right-c.left <= collapseWidth
		return !collapsed && !accepted(c)
	}
	body := func(c proposalCarry) proposalCarry {
		key, tKey, shrinkKey := c.key.Split3()
		left, right := shrinkInterval(shrinkKey, c.t, c.left, c.right, s.opts.midpointShrink)
		u, t := pickPoint(tKey, seed.U0, c.direction, left, right)
		return proposalCarry{
			key:       key,
			direction: c.direction,
			left:      left,
			right:     right,
			t:         t,
			u:         u,
			logL:      s.model.Forward(u),
			evals:     c.evals + 1,
		}
	}

	out, err := loop.While(cond, body, init, s.opts.maxIterations)
	if err != nil {
		return nil, 0, out.evals, err
	}
	if !accepted(out) {
		// The bracket collapsed onto the seed.
		return slices.Clone(seed.U0), seed.LogL0, out.evals, nil
	}
	return out.u, out.logL, out.evals, nil
}
