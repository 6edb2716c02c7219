package ellipsoid

import (
	"math"

	"github.com/hupe1980/nestgo/internal/loop"
	"github.com/hupe1980/nestgo/rng"
	"gonum.org/v1/gonum/floats"
)

// DefaultMaxAttempts bounds the rejection loop of DefaultUnionSampler.
const DefaultMaxAttempts = 1 << 16

// UnionSampler draws a point uniformly from a union of ellipsoids.
type UnionSampler interface {
	Sample(key rng.Key, state MixtureState, unitCubeConstraint bool) ([]float64, error)
}

// DefaultUnionSampler picks an ellipsoid with probability proportional to its
// volume, draws uniformly inside it, and accepts with probability 1/m where m
// is the number of ellipsoids containing the draw. With the unit-cube
// constraint, draws outside [0,1]^D are rejected.
type DefaultUnionSampler struct {
	// MaxAttempts bounds the rejection loop. 0 means DefaultMaxAttempts.
	MaxAttempts int
}

type unionCarry struct {
	key  rng.Key
	x    []float64
	done bool
}

// Sample implements UnionSampler.
func (s DefaultUnionSampler) Sample(key rng.Key, state MixtureState, unitCubeConstraint bool) ([]float64, error) {
	if state.Len() == 0 {
		return nil, ErrNoEllipsoids
	}
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logVols := state.LogVolumes()

	body := func(c unionCarry) unionCarry {
		keys := c.key.Split(4)
		e := state.Ellipsoids[rng.Categorical(keys[1], logVols)]
		x := e.FromUnitBall(UnitBall(keys[2], e.Dim()))

		if unitCubeConstraint && !inUnitCube(x) {
			return unionCarry{key: keys[0], x: x}
		}
		m := max(state.NumContaining(x), 1)
		done := rng.Uniform(keys[3], 0, 1) < 1/float64(m)
		return unionCarry{key: keys[0], x: x, done: done}
	}

	out, err := loop.While(func(c unionCarry) bool { return !c.done }, body, unionCarry{key: key}, maxAttempts)
	if err != nil {
		return nil, err
	}
	return out.x, nil
}

// UnitBall draws a point uniformly from the d-dimensional unit ball.
func UnitBall(key rng.Key, d int) []float64 {
	dirKey, radKey := key.Split2()
	z := rng.Normal(dirKey, d)
	norm := floats.Norm(z, 2)
	if norm == 0 {
		z[0], norm = 1, 1
	}
	r := math.Pow(rng.Uniform(radKey, 0, 1), 1/float64(d))
	floats.Scale(r/norm, z)
	return z
}

func inUnitCube(x []float64) bool {
	for _, v := range x {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
