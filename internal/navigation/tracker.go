// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package navigation tracks a traveler's progress along a route from a
// stream of location fixes and heading updates.
package navigation

import (
	"sync/atomic"

	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

const (
	// WaypointRadiusKm is how close a fix must get to the target waypoint
	// for the cursor to move on to the next one.
	WaypointRadiusKm = 0.01

	// ArrivalRadiusKm ends navigation once the remaining distance drops
	// below it.
	ArrivalRadiusKm = 0.02
)

// Tracker is the navigation state machine. It is either idle (no route) or
// navigating a route with a forward-only waypoint cursor.
//
// Updates must come from a single goroutine. The published snapshot can be
// read from any goroutine through State.
type Tracker struct {
	route      *nav.Route
	waypoint   int
	navigating bool

	state atomic.Pointer[nav.State]
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.publish(&nav.State{})
	return t
}

// State returns the latest published snapshot. Callers must not modify it.
func (t *Tracker) State() *nav.State {
	return t.state.Load()
}

// Navigating reports whether a route is active.
func (t *Tracker) Navigating() bool { return t.navigating }

// WaypointIndex returns the index of the next unvisited waypoint.
func (t *Tracker) WaypointIndex() int { return t.waypoint }

// Start begins navigating route from its first waypoint.
func (t *Tracker) Start(route nav.Route) {
	t.route = &route
	t.waypoint = 0
	t.navigating = true

	t.publish(&nav.State{
		Route:             t.route,
		RemainingDistance: route.Distance,
		RemainingDuration: nav.EstimateDurationSeconds(route.Distance),
		Progress:          0,
		Navigating:        true,
	})
}

// Stop returns to idle and publishes an empty state.
func (t *Tracker) Stop() {
	t.navigating = false
	t.route = nil
	t.waypoint = 0
	t.publish(&nav.State{})
}

// UpdateLocation advances progress with a new fix and returns the resulting
// snapshot. It does nothing while idle. Navigation stops by itself once the
// remaining distance falls under ArrivalRadiusKm.
func (t *Tracker) UpdateLocation(loc nav.Location) *nav.State {
	if !t.navigating || t.route == nil {
		return t.State()
	}
	route := t.route

	remaining := t.remainingDistance(loc)
	progress := 1.0
	if route.Distance > 0 {
		progress = clamp((route.Distance-remaining)/route.Distance, 0, 1)
	}

	var instruction *nav.TurnInstruction
	if t.waypoint < len(route.Instructions) {
		instruction = &route.Instructions[t.waypoint]
	}

	target := route.End
	hasWaypoint := t.waypoint < len(route.Waypoints)
	if hasWaypoint {
		target = route.Waypoints[t.waypoint]
	}
	toNextTurn := loc.DistanceTo(target)

	if toNextTurn < WaypointRadiusKm && hasWaypoint {
		t.waypoint++
	}

	prev := t.State()
	t.publish(&nav.State{
		Route:              route,
		CurrentLocation:    &loc,
		CurrentHeading:     prev.CurrentHeading,
		CurrentInstruction: instruction,
		RemainingDistance:  remaining,
		RemainingDuration:  nav.EstimateDurationSeconds(remaining),
		DistanceToNextTurn: toNextTurn,
		Progress:           progress,
		Navigating:         true,
		Error:              prev.Error,
	})

	if remaining < ArrivalRadiusKm {
		t.Stop()
	}
	return t.State()
}

// UpdateHeading overwrites the heading of the current heading estimate.
// Without an estimate there is nothing to update.
func (t *Tracker) UpdateHeading(heading float64) {
	prev := t.State()
	if prev.CurrentHeading == nil {
		return
	}
	est := *prev.CurrentHeading
	est.Heading = heading

	next := *prev
	next.CurrentHeading = &est
	t.publish(&next)
}

// UpdateHeadingEstimate replaces the current heading estimate, idle or not.
func (t *Tracker) UpdateHeadingEstimate(est orientation.HeadingEstimate) {
	next := *t.State()
	next.CurrentHeading = &est
	t.publish(&next)
}

// remainingDistance sums the distance to the target waypoint, the legs
// between the remaining waypoints and the last leg to the end.
func (t *Tracker) remainingDistance(loc nav.Location) float64 {
	route := t.route
	if t.waypoint >= len(route.Waypoints) {
		return loc.DistanceTo(route.End)
	}

	remaining := loc.DistanceTo(route.Waypoints[t.waypoint])
	for i := t.waypoint; i < len(route.Waypoints)-1; i++ {
		remaining += route.Waypoints[i].DistanceTo(route.Waypoints[i+1])
	}
	remaining += route.Waypoints[len(route.Waypoints)-1].DistanceTo(route.End)
	return remaining
}

func (t *Tracker) publish(s *nav.State) {
	t.state.Store(s)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
