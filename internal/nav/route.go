// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"time"

	"github.com/relabs-tech/inertial_nav/internal/geo"
)

// WalkingSpeedMps is the constant pace used for every duration estimate.
const WalkingSpeedMps = 1.0

// EstimateDurationSeconds converts a walking distance in km to whole
// seconds at WalkingSpeedMps.
func EstimateDurationSeconds(distanceKm float64) int64 {
	return int64(distanceKm * 1000 / WalkingSpeedMps)
}

// TurnInstruction is one maneuver along a route.
type TurnInstruction struct {
	Turn       Turn       `json:"turn"`
	StreetName string     `json:"street_name"`
	Distance   float64    `json:"distance_km"` // to the following point
	Bearing    float64    `json:"bearing"`     // outgoing, degrees
	Waypoints  []Location `json:"waypoints"`   // the 1-2 points it bridges
}

// Route is an immutable plan from Start to End through Waypoints.
// Instructions has one entry per waypoint plus a final Arrive.
type Route struct {
	ID                string            `json:"id"`
	Start             Location          `json:"start"`
	End               Location          `json:"end"`
	Waypoints         []Location        `json:"waypoints"`
	Instructions      []TurnInstruction `json:"instructions"`
	Distance          float64           `json:"distance_km"`
	EstimatedDuration int64             `json:"estimated_duration_s"`
	Bounds            geo.Bounds        `json:"bounds"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Points returns start, waypoints and end in travel order.
func (r *Route) Points() []Location {
	pts := make([]Location, 0, len(r.Waypoints)+2)
	pts = append(pts, r.Start)
	pts = append(pts, r.Waypoints...)
	return append(pts, r.End)
}
