// Package rng provides an explicit, splittable pseudo-random key.
//
// Samplers never read global random state. Every operation receives a Key,
// splits it at each branching point, and consumes each child exactly once:
//
//	key := rng.NewKey(42)
//	k1, k2 := key.Split2()
//	u := rng.Uniform(k1, 0, 1)
//	z := rng.Normal(k2, 3)
//
// Two invocations with the same key and inputs produce bit-identical draws,
// independent of goroutine scheduling.
package rng
