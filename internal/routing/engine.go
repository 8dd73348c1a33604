// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package routing builds walking routes with turn-by-turn instructions from
// an ordered list of coordinates.
package routing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/inertial_nav/internal/geo"
	"github.com/relabs-tech/inertial_nav/internal/nav"
)

// Engine computes routes. It holds no per-route state.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for Route.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the random route id source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates a routing engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateRoute builds a route start → waypoints → end. Distance is the sum
// of the great-circle legs; duration assumes nav.WalkingSpeedMps.
func (e *Engine) CalculateRoute(start, end nav.Location, waypoints ...nav.Location) nav.Route {
	points := make([]nav.Location, 0, len(waypoints)+2)
	points = append(points, start)
	points = append(points, waypoints...)
	points = append(points, end)

	var bounds geo.Bounds
	distance := 0.0
	for i, p := range points {
		bounds.Extend(p.Latitude, p.Longitude)
		if i > 0 {
			distance += points[i-1].DistanceTo(p)
		}
	}

	return nav.Route{
		ID:                e.newID(),
		Start:             start,
		End:               end,
		Waypoints:         append([]nav.Location(nil), waypoints...),
		Instructions:      instructions(points),
		Distance:          distance,
		EstimatedDuration: nav.EstimateDurationSeconds(distance),
		Bounds:            bounds,
		CreatedAt:         e.now(),
	}
}

// RecalculateRoute rebuilds the whole route from the traveler's current
// position, keeping the previous route's waypoints as they are.
func (e *Engine) RecalculateRoute(current, destination nav.Location, prev nav.Route) nav.Route {
	return e.CalculateRoute(current, destination, prev.Waypoints...)
}

// instructions emits one instruction per interior point and a closing
// Arrive.
func instructions(points []nav.Location) []nav.TurnInstruction {
	out := make([]nav.TurnInstruction, 0, len(points)-1)

	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]

		bearing1 := prev.BearingTo(curr)
		bearing2 := curr.BearingTo(next)

		out = append(out, nav.TurnInstruction{
			Turn:       ClassifyTurn(TurnAngle(bearing1, bearing2)),
			StreetName: fmt.Sprintf("Street %d", i+1),
			Distance:   curr.DistanceTo(next),
			Bearing:    bearing2,
			Waypoints:  []nav.Location{curr, next},
		})
	}

	return append(out, nav.TurnInstruction{
		Turn:       nav.Arrive,
		StreetName: "Destination",
		Waypoints:  []nav.Location{points[len(points)-1]},
	})
}

// TurnAngle returns the change from incoming bearing b1 to outgoing bearing
// b2, in [0,360).
func TurnAngle(b1, b2 float64) float64 {
	return geo.NormalizeDeg(b2 - b1 + 360)
}

// ClassifyTurn maps a turn angle in [0,360) onto a maneuver:
//
//	[0,30) or (330,360)  GoStraight
//	[30,150)             TurnLeft
//	[150,210)            UTurn
//	[210,330]            TurnRight
func ClassifyTurn(angle float64) nav.Turn {
	switch {
	case angle < 30 || angle > 330:
		return nav.GoStraight
	case angle < 150:
		return nav.TurnLeft
	case angle < 210:
		return nav.UTurn
	default:
		return nav.TurnRight
	}
}

// OptimizeWaypoints reorders waypoints with a greedy nearest-neighbour tour
// starting at the first one. Ties go to the earliest remaining point.
func OptimizeWaypoints(waypoints []nav.Location) []nav.Location {
	if len(waypoints) == 0 {
		return []nav.Location{}
	}

	result := make([]nav.Location, 0, len(waypoints))
	result = append(result, waypoints[0])
	remaining := append([]nav.Location(nil), waypoints[1:]...)

	for len(remaining) > 0 {
		last := result[len(result)-1]
		nearest := 0
		minDistance := math.MaxFloat64

		for i, p := range remaining {
			if d := last.DistanceTo(p); d < minDistance {
				minDistance = d
				nearest = i
			}
		}

		result = append(result, remaining[nearest])
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	return result
}
