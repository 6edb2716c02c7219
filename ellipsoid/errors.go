package ellipsoid

import "errors"

var (
	// ErrNoPoints is returned when fitting is attempted on an empty point set.
	ErrNoPoints = errors.New("ellipsoid: no points to fit")

	// ErrNoEllipsoids is returned when sampling from an empty mixture.
	ErrNoEllipsoids = errors.New("ellipsoid: mixture has no ellipsoids")

	// ErrUnsupportedMethod is returned for clustering methods the fitter does not implement.
	ErrUnsupportedMethod = errors.New("ellipsoid: unsupported clustering method")

	// ErrDegenerate is returned when the covariance of a point set cannot be factorized.
	ErrDegenerate = errors.New("ellipsoid: degenerate covariance")
)
