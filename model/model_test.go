package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc(t *testing.T) {
	m := NewFunc(2, func(u []float64) float64 { return u[0] + 2*u[1] })
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, 2.5, m.Forward([]float64{0.5, 1}))

	_, ok := Model(m).(Gradienter)
	assert.False(t, ok)
}

func TestGradientAnalytic(t *testing.T) {
	m := NewFunc(2, func(u []float64) float64 { return u[0] + 2*u[1] }).
		WithGradient(func([]float64) []float64 { return []float64{1, 2} })

	grad, evals := Gradient(m, []float64{0.3, 0.4})
	assert.Equal(t, []float64{1, 2}, grad)
	assert.Equal(t, 1, evals)
	assert.Equal(t, 2, m.Dim())
}

func TestGradientNumeric(t *testing.T) {
	counting := &Counting{Model: NewFunc(3, func(u []float64) float64 {
		return u[0]*u[0] + 3*u[1] - u[2]
	})}

	grad, evals := Gradient(counting, []float64{0.5, 0.5, 0.5})
	require.Len(t, grad, 3)
	assert.InDelta(t, 1.0, grad[0], 1e-6)
	assert.InDelta(t, 3.0, grad[1], 1e-6)
	assert.InDelta(t, -1.0, grad[2], 1e-6)
	assert.Equal(t, counting.Calls, evals)
	assert.Positive(t, evals)
}

func TestSampleCollection(t *testing.T) {
	c := SampleCollection{
		{U: []float64{0.1, 0.2}, LogL: -3, LogLConstraint: -10},
		{U: []float64{0.3, 0.4}, LogL: -2, LogLConstraint: -3},
		{U: []float64{0.5, 0.6}, LogL: -1, LogLConstraint: -2},
	}

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Dim())
	assert.Equal(t, []float64{-3, -2, -1}, c.LogL())
	assert.Equal(t, []float64{-10, -3, -2}, c.LogLConstraints())
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}, c.Points())

	assert.Equal(t, c, c.Front(nil))
	front := c.Front([]int{2, 0})
	require.Len(t, front, 2)
	assert.Equal(t, -1.0, front[0].LogL)
	assert.Equal(t, -3.0, front[1].LogL)

	assert.Equal(t, 0, SampleCollection(nil).Dim())
}

func TestSampleClone(t *testing.T) {
	s := Sample{U: []float64{0.1}, LogL: 1}
	c := s.Clone()
	c.U[0] = 0.9
	assert.Equal(t, 0.1, s.U[0])
	assert.Contains(t, s.String(), "logL=1")
}
