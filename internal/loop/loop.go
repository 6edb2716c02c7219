// Package loop provides the bounded iteration constructs used by samplers.
//
// A loop is an explicit state machine: a pure continuation predicate and a
// pure step function over a value-typed carry. The same loop runs unchanged
// whether the caller imposes an iteration cap or not.
package loop

import "errors"

// ErrIterationCap is returned when a loop exhausts its iteration cap
// before its continuation predicate turns false.
var ErrIterationCap = errors.New("iteration cap exhausted")

// While applies body to the carry while cond holds.
//
// maxIter <= 0 means unbounded. When the cap is hit the last carry is
// returned together with ErrIterationCap.
func While[S any](cond func(S) bool, body func(S) S, init S, maxIter int) (S, error) {
	carry := init
	for i := 0; cond(carry); i++ {
		if maxIter > 0 && i >= maxIter {
			return carry, ErrIterationCap
		}
		carry = body(carry)
	}
	return carry, nil
}

// Scan threads init through op once per element of xs and returns the final
// carry together with every intermediate carry (the last one equals final).
// op stops the scan early by returning an error.
func Scan[S, X any](op func(S, X) (S, error), init S, xs []X) (S, []S, error) {
	carry := init
	history := make([]S, 0, len(xs))
	for _, x := range xs {
		next, err := op(carry, x)
		if err != nil {
			return carry, history, err
		}
		carry = next
		history = append(history, carry)
	}
	return carry, history, nil
}
