package ellipsoid

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/nestgo/internal/kmeans"
	"github.com/hupe1980/nestgo/rng"
	"gonum.org/v1/gonum/floats"
)

// Method selects the clustering algorithm used to split ellipsoids.
type Method int

const (
	// MethodKMeans splits clusters with 2-means.
	MethodKMeans Method = iota
	// MethodEMGMM splits clusters with an EM-fitted Gaussian mixture. Not implemented.
	MethodEMGMM
)

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	case MethodEMGMM:
		return "em_gmm"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMethod parses a method name as returned by Method.String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "kmeans":
		return MethodKMeans, nil
	case "em_gmm":
		return MethodEMGMM, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// Fitter fits a union of at most maxNumEllipsoids ellipsoids to points,
// given the log prior volume the points are believed to occupy.
type Fitter interface {
	Fit(ctx context.Context, key rng.Key, points [][]float64, logVolume float64, maxNumEllipsoids int, method Method) (MixtureState, error)
}

// MethodSupporter is implemented by fitters that can report, before any
// fitting, whether they handle a clustering method.
type MethodSupporter interface {
	Supports(method Method) bool
}

// DefaultKMeansIterations bounds Lloyd's iterations per split.
const DefaultKMeansIterations = 100

// KMeansFitter splits clusters recursively with 2-means.
//
// A split is accepted when both children keep at least D+1 points and their
// combined volume is smaller than the parent's.
type KMeansFitter struct {
	// MaxIter bounds Lloyd's iterations per split. 0 means DefaultKMeansIterations.
	MaxIter int
}

type cluster struct {
	points [][]float64
	ell    Ellipsoid
	frozen bool
}

// Supports implements MethodSupporter. Only MethodKMeans is handled.
func (f KMeansFitter) Supports(method Method) bool { return method == MethodKMeans }

// Fit implements Fitter.
func (f KMeansFitter) Fit(ctx context.Context, key rng.Key, points [][]float64, logVolume float64, maxNumEllipsoids int, method Method) (MixtureState, error) {
	if !f.Supports(method) {
		return MixtureState{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	if len(points) == 0 {
		return MixtureState{}, ErrNoPoints
	}

	root, err := Bound(points, logVolume)
	if err != nil {
		return MixtureState{}, err
	}
	clusters := []cluster{{points: points, ell: root}}
	total := len(points)

	for len(clusters) < maxNumEllipsoids {
		var roundKey rng.Key
		key, roundKey = key.Split2()
		keys := roundKey.Split(len(clusters))

		next := make([]cluster, 0, 2*len(clusters))
		accepted := false
		for i, c := range clusters {
			// Every remaining cluster keeps at least one slot.
			if c.frozen || len(next)+(len(clusters)-i)+1 > maxNumEllipsoids {
				next = append(next, c)
				continue
			}
			children, ok, err := f.split(ctx, keys[i], c, total, logVolume)
			if err != nil {
				return MixtureState{}, err
			}
			if !ok {
				c.frozen = true
				next = append(next, c)
				continue
			}
			next = append(next, children...)
			accepted = true
		}
		clusters = next
		if !accepted {
			break
		}
	}

	state := MixtureState{Ellipsoids: make([]Ellipsoid, len(clusters))}
	for i, c := range clusters {
		state.Ellipsoids[i] = c.ell
	}
	return state, nil
}

func (f KMeansFitter) split(ctx context.Context, key rng.Key, c cluster, total int, logVolume float64) ([]cluster, bool, error) {
	dim := len(c.points[0])
	if len(c.points) < 2*(dim+1) {
		return nil, false, nil
	}

	maxIter := f.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultKMeansIterations
	}
	_, assignments, err := kmeans.Train(ctx, key, c.points, 2, maxIter)
	if err != nil {
		return nil, false, err
	}

	parts := make([][][]float64, 2)
	for i, a := range assignments {
		parts[a] = append(parts[a], c.points[i])
	}

	children := make([]cluster, 0, 2)
	logVols := make([]float64, 0, 2)
	for _, part := range parts {
		if len(part) < dim+1 {
			return nil, false, nil
		}
		target := logVolume + math.Log(float64(len(part))/float64(total))
		ell, err := Bound(part, target)
		if err != nil {
			return nil, false, err
		}
		children = append(children, cluster{points: part, ell: ell})
		logVols = append(logVols, ell.LogVolume())
	}

	if floats.LogSumExp(logVols) >= c.ell.LogVolume() {
		return nil, false, nil
	}
	return children, true, nil
}
