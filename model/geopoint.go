package model

import "time"

// GeoPoint is a WGS-84 coordinate in decimal degrees. It is a plain value:
// copy freely, never mutate in place.
type GeoPoint struct {
	LatDeg float64
	LonDeg float64
}

// UserLocation is the most recent GPS fix for the session's user.
// Only the freshest fix is ever kept; there is no history.
type UserLocation struct {
	Geo       GeoPoint
	Timestamp time.Time
}
