// Package kmeans implements k-means clustering for ellipsoid splitting.
//
// Used internally by the ellipsoid package to partition a cluster of live
// points before bounding each part with its own ellipsoid.
package kmeans
