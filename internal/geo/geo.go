// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geo holds the spherical-earth helpers used by routing and
// navigation: haversine distance, initial bearing and dead reckoning.
//
// All angles are degrees and all distances kilometers. Inputs are assumed
// finite; callers that receive external data check with Finite first.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used by every formula here.
const EarthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func toDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// DistanceKm returns the great-circle distance between two points using
// the haversine formula:
//
//	a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
//	c = 2 ⋅ atan2(√a, √(1−a))
//	d = R ⋅ c
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	a := sinDLat*sinDLat +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinDLon*sinDLon

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BearingDeg returns the initial bearing from point 1 to point 2 in
// [0,360). A point's bearing to itself is 0.
func BearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := toRad(lon2 - lon1)
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	return NormalizeDeg(toDeg(math.Atan2(y, x)))
}

// DeadReckon projects a new position distanceKm along bearingDeg from
// (lat, lon).
func DeadReckon(lat, lon, bearingDeg, distanceKm float64) (float64, float64) {
	brng := toRad(bearingDeg)
	d := distanceKm / EarthRadiusKm

	phi1 := toRad(lat)
	lambda1 := toRad(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(d) +
		math.Cos(phi1)*math.Sin(d)*math.Cos(brng))

	lambda2 := lambda1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(phi1),
		math.Cos(d)-math.Sin(phi1)*math.Sin(phi2),
	)

	return toDeg(phi2), toDeg(lambda2)
}

// NormalizeDeg wraps any finite angle into [0,360).
func NormalizeDeg(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -1e-15 + 360 rounds to 360
	if r >= 360 {
		r = 0
	}
	return r
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ValidCoordinate reports whether lat/lon are finite and inside the
// WGS84 ranges.
func ValidCoordinate(lat, lon float64) bool {
	return Finite(lat, lon) && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
