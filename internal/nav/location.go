// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"time"

	"github.com/relabs-tech/inertial_nav/internal/geo"
)

// Location is a single position fix.
type Location struct {
	Latitude  float64   `json:"lat"`      // decimal degrees
	Longitude float64   `json:"lon"`      // decimal degrees
	Altitude  float64   `json:"alt"`      // meters
	Accuracy  float64   `json:"accuracy"` // meters
	Bearing   float64   `json:"bearing"`  // degrees, course over ground
	Speed     float64   `json:"speed"`    // m/s
	Timestamp time.Time `json:"timestamp"`
}

// DistanceTo returns the great-circle distance to o in km.
func (l Location) DistanceTo(o Location) float64 {
	return geo.DistanceKm(l.Latitude, l.Longitude, o.Latitude, o.Longitude)
}

// BearingTo returns the initial bearing towards o in degrees.
func (l Location) BearingTo(o Location) float64 {
	return geo.BearingDeg(l.Latitude, l.Longitude, o.Latitude, o.Longitude)
}

// Valid reports whether the coordinates are finite and in range.
func (l Location) Valid() bool {
	return geo.ValidCoordinate(l.Latitude, l.Longitude) &&
		geo.Finite(l.Altitude, l.Accuracy, l.Bearing, l.Speed)
}
