package rng

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// splitTweak separates the split stream of a key from its draw stream.
const splitTweak = 0x9e3779b97f4a7c15

// Key is an immutable PRNG key. The zero value is a valid key.
type Key struct {
	hi, lo uint64
}

// NewKey derives a key from a seed.
func NewKey(seed uint64) Key {
	r := rand.New(rand.NewPCG(seed, ^seed))
	return Key{hi: r.Uint64(), lo: r.Uint64()}
}

// String returns a hex representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("Key(%016x%016x)", k.hi, k.lo)
}

// Split derives n independent child keys.
func (k Key) Split(n int) []Key {
	r := rand.New(rand.NewPCG(k.hi, k.lo^splitTweak))
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{hi: r.Uint64(), lo: r.Uint64()}
	}
	return keys
}

// Split2 derives two child keys.
func (k Key) Split2() (Key, Key) {
	keys := k.Split(2)
	return keys[0], keys[1]
}

// Split3 derives three child keys.
func (k Key) Split3() (Key, Key, Key) {
	keys := k.Split(3)
	return keys[0], keys[1], keys[2]
}

// Source returns the draw stream of the key.
func (k Key) Source() rand.Source {
	return rand.NewPCG(k.hi, k.lo)
}

// Uniform draws a value uniformly from [lo, hi).
func Uniform(k Key, lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	return distuv.Uniform{Min: lo, Max: hi, Src: k.Source()}.Rand()
}

// Normal draws n standard normal values.
func Normal(k Key, n int) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: k.Source()}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Gumbel draws n standard Gumbel values.
func Gumbel(k Key, n int) []float64 {
	dist := distuv.GumbelRight{Mu: 0, Beta: 1, Src: k.Source()}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Perm returns a pseudo-random permutation of [0, n).
func Perm(k Key, n int) []int {
	return rand.New(k.Source()).Perm(n)
}

// Categorical picks an index with probability proportional to exp(logWeights[i])
// using the Gumbel-max trick. Entries of -Inf are never picked unless all are -Inf,
// in which case index 0 is returned.
func Categorical(k Key, logWeights []float64) int {
	g := Gumbel(k, len(logWeights))
	best := -1
	bestScore := 0.0
	for i, lw := range logWeights {
		score := g[i] + lw
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
