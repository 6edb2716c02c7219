package model

import (
	"gonum.org/v1/gonum/diff/fd"
)

// Model maps a unit-cube point to a log-likelihood.
//
// Forward must be deterministic for a fixed u and must not retain u.
type Model interface {
	// Dim is the dimensionality of the unit cube.
	Dim() int
	// Forward evaluates the log-likelihood at u.
	Forward(u []float64) float64
}

// Gradienter is implemented by models that provide an analytic gradient of Forward.
type Gradienter interface {
	Gradient(u []float64) []float64
}

// Func adapts a plain function to the Model interface.
type Func struct {
	dim  int
	fn   func(u []float64) float64
	grad func(u []float64) []float64
}

// NewFunc returns a Model of the given dimension backed by fn.
func NewFunc(dim int, fn func(u []float64) float64) *Func {
	return &Func{dim: dim, fn: fn}
}

// WithGradient attaches an analytic gradient to the model.
func (f *Func) WithGradient(grad func(u []float64) []float64) *GradFunc {
	return &GradFunc{Func: Func{dim: f.dim, fn: f.fn, grad: grad}}
}

// Dim implements Model.
func (f *Func) Dim() int { return f.dim }

// Forward implements Model.
func (f *Func) Forward(u []float64) float64 { return f.fn(u) }

// GradFunc is a Func with an analytic gradient.
type GradFunc struct {
	Func
}

// Gradient implements Gradienter.
func (g *GradFunc) Gradient(u []float64) []float64 { return g.grad(u) }

// Gradient returns the gradient of m.Forward at u and the number of
// model evaluations it cost. Analytic gradients count as one evaluation;
// otherwise central finite differences are used and every call is counted.
func Gradient(m Model, u []float64) ([]float64, int) {
	if g, ok := m.(Gradienter); ok {
		return g.Gradient(u), 1
	}

	evals := 0
	f := func(x []float64) float64 {
		evals++
		return m.Forward(x)
	}
	grad := fd.Gradient(nil, f, u, &fd.Settings{
		Formula: fd.Central,
	})
	return grad, evals
}

// Counting wraps a Model and counts Forward calls.
// It is not safe for concurrent use; it exists for tests and diagnostics.
type Counting struct {
	Model
	Calls int
}

// Forward implements Model.
func (c *Counting) Forward(u []float64) float64 {
	c.Calls++
	return c.Model.Forward(u)
}
