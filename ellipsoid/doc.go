// Package ellipsoid fits and samples unions of bounding ellipsoids.
//
// The multi-ellipsoidal rejection sampler consumes this package through two
// narrow capabilities, Fitter and UnionSampler. Any clustering backend that
// satisfies them can be substituted. The defaults are:
//
//   - KMeansFitter: recursive 2-means splitting of the live points, each part
//     bounded by the ellipsoid of its covariance, enlarged to enclose every
//     point and to match its share of the estimated prior volume
//   - DefaultUnionSampler: uniform draws from the union, corrected for overlap,
//     optionally restricted to the unit cube
package ellipsoid
