package core

import (
	"math"

	"github.com/signalsfoundry/ar-anchor/model"
)

// EarthRadiusM is the WGS-84 equatorial radius in metres, used for all
// geodesic math in this package. It is an approximation: the error grows
// with distance but is negligible at activation-radius scales of tens of
// metres.
const EarthRadiusM = 6378137.0

// LocalOffset is a flat-earth displacement in metres relative to some
// origin. Increasing latitude maps to positive north, increasing longitude
// to positive east.
type LocalOffset struct {
	EastM  float64
	NorthM float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceMeters returns the great-circle distance between a and b via the
// haversine formula. Symmetric in its arguments; zero when a == b.
func DistanceMeters(a, b model.GeoPoint) float64 {
	latA := degToRad(a.LatDeg)
	latB := degToRad(b.LatDeg)
	dLat := degToRad(b.LatDeg - a.LatDeg)
	dLon := degToRad(b.LonDeg - a.LonDeg)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// LocalOffsetMeters projects point onto the local tangent plane at origin
// using an equirectangular approximation: the latitude delta scaled by the
// Earth radius gives the north offset, the longitude delta scaled by the
// Earth radius and cos(origin latitude) gives the east offset.
//
// Only valid for displacements of a few hundred metres around origin. It is
// NOT a substitute for DistanceMeters at longer range.
func LocalOffsetMeters(point, origin model.GeoPoint) LocalOffset {
	dLat := degToRad(point.LatDeg - origin.LatDeg)
	dLon := degToRad(point.LonDeg - origin.LonDeg)
	return LocalOffset{
		EastM:  EarthRadiusM * dLon * math.Cos(degToRad(origin.LatDeg)),
		NorthM: EarthRadiusM * dLat,
	}
}
