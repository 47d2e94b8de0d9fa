/*
Package game
File: mechanics.go
Description:
    Contains the "Physics" helper functions: great-circle distance between
    position samples and the movement noise filter used by expeditions.
*/

package game

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine computes the great-circle distance between two positions in km.
func Haversine(a, b Position) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// MeasureStep returns the distance between two samples and whether it exceeds
// the noise threshold. Movement at or below noiseMeters does not count.
func MeasureStep(prev, next Position, noiseMeters float64) (float64, bool) {
	km := Haversine(prev, next)
	return km, km*1000 > noiseMeters
}

// PointsForDistance converts accumulated kilometers into reward points.
func PointsForDistance(km float64, perKm int) int {
	return int(math.Floor(km * float64(perKm)))
}
