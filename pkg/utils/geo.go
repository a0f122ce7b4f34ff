package utils

import "github.com/golang/geo/s2"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances
const EarthRadiusMeters = 6371008.8

// DistanceMeters returns the great-circle distance between two points given
// in decimal degrees.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// WithinMeters reports whether two points are at most radius metres apart
func WithinMeters(lat1, lng1, lat2, lng2, radius float64) bool {
	return DistanceMeters(lat1, lng1, lat2, lng2) <= radius
}
