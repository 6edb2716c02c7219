package ellipsoid

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// minAxisRatio bounds how thin an ellipsoid may be relative to its widest axis.
const minAxisRatio = 1e-3

const boundarySlack = 1e-9

// Ellipsoid is {x : |diag(1/Radii) Rotationᵀ (x - Mu)| <= 1}.
// The columns of Rotation are the principal axes.
type Ellipsoid struct {
	Mu       []float64
	Radii    []float64
	Rotation *mat.Dense
}

// Dim returns the dimensionality of the ellipsoid.
func (e Ellipsoid) Dim() int { return len(e.Mu) }

// LogVolume returns the natural log of the ellipsoid's volume.
func (e Ellipsoid) LogVolume() float64 {
	logVol := logUnitBallVolume(len(e.Radii))
	for _, r := range e.Radii {
		logVol += math.Log(r)
	}
	return logVol
}

// Contains reports whether x lies inside the ellipsoid.
func (e Ellipsoid) Contains(x []float64) bool {
	return e.mahalanobis2(x) <= 1
}

func (e Ellipsoid) mahalanobis2(x []float64) float64 {
	diff := make([]float64, len(x))
	floats.SubTo(diff, x, e.Mu)
	var y mat.VecDense
	y.MulVec(e.Rotation.T(), mat.NewVecDense(len(diff), diff))

	var sum float64
	for k, r := range e.Radii {
		v := y.AtVec(k) / r
		sum += v * v
	}
	return sum
}

// FromUnitBall maps a point z of the unit ball into the ellipsoid.
func (e Ellipsoid) FromUnitBall(z []float64) []float64 {
	scaled := make([]float64, len(z))
	floats.MulTo(scaled, z, e.Radii)
	var x mat.VecDense
	x.MulVec(e.Rotation, mat.NewVecDense(len(scaled), scaled))

	out := make([]float64, len(z))
	floats.AddTo(out, x.RawVector().Data, e.Mu)
	return out
}

// Bound returns the ellipsoid aligned with the covariance of points that
// encloses every point, enlarged if needed so its log-volume is at least
// logTargetVolume.
func Bound(points [][]float64, logTargetVolume float64) (Ellipsoid, error) {
	n := len(points)
	if n == 0 {
		return Ellipsoid{}, ErrNoPoints
	}
	dim := len(points[0])

	mu := make([]float64, dim)
	for _, p := range points {
		floats.Add(mu, p)
	}
	floats.Scale(1/float64(n), mu)

	cov := mat.NewSymDense(dim, nil)
	if n > 1 {
		data := make([]float64, 0, n*dim)
		for _, p := range points {
			data = append(data, p...)
		}
		stat.CovarianceMatrix(cov, mat.NewDense(n, dim, data), nil)
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return Ellipsoid{}, ErrDegenerate
	}
	lambda := es.Values(nil)
	rotation := mat.NewDense(dim, dim, nil)
	es.VectorsTo(rotation)

	floor := floats.Max(lambda) * minAxisRatio * minAxisRatio
	if floor <= 0 || math.IsNaN(floor) {
		floor = 1e-12
	}
	for k := range lambda {
		if lambda[k] < floor {
			lambda[k] = floor
		}
	}

	e := Ellipsoid{
		Mu:       mu,
		Radii:    make([]float64, dim),
		Rotation: rotation,
	}
	for k := range lambda {
		e.Radii[k] = math.Sqrt(lambda[k])
	}

	// Scale so the farthest point lies on the boundary, with rounding slack.
	k2 := 0.0
	for _, p := range points {
		k2 = math.Max(k2, e.mahalanobis2(p))
	}
	if k2 > 0 {
		floats.Scale(math.Sqrt(k2)*(1+boundarySlack), e.Radii)
	}

	if logVol := e.LogVolume(); logVol < logTargetVolume {
		floats.Scale(math.Exp((logTargetVolume-logVol)/float64(dim)), e.Radii)
	}

	return e, nil
}

// logUnitBallVolume returns log(pi^(d/2) / Gamma(d/2 + 1)).
func logUnitBallVolume(d int) float64 {
	half := float64(d) / 2
	lg, _ := math.Lgamma(half + 1)
	return half*math.Log(math.Pi) - lg
}

// MixtureState is a fitted union of ellipsoids.
type MixtureState struct {
	Ellipsoids []Ellipsoid
}

// Len returns the number of ellipsoids in the union.
func (m MixtureState) Len() int { return len(m.Ellipsoids) }

// LogVolumes returns the log-volume of every ellipsoid.
func (m MixtureState) LogVolumes() []float64 {
	out := make([]float64, len(m.Ellipsoids))
	for i, e := range m.Ellipsoids {
		out[i] = e.LogVolume()
	}
	return out
}

// NumContaining returns how many ellipsoids contain x.
func (m MixtureState) NumContaining(x []float64) int {
	count := 0
	for _, e := range m.Ellipsoids {
		if e.Contains(x) {
			count++
		}
	}
	return count
}
