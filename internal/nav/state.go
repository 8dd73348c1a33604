// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import "github.com/relabs-tech/inertial_nav/internal/orientation"

// State is a navigation snapshot. Snapshots are never modified after they
// are published; every update produces a new one.
type State struct {
	Route              *Route                       `json:"route,omitempty"`
	CurrentLocation    *Location                    `json:"current_location,omitempty"`
	CurrentHeading     *orientation.HeadingEstimate `json:"current_heading,omitempty"`
	CurrentInstruction *TurnInstruction             `json:"current_instruction,omitempty"`
	RemainingDistance  float64                      `json:"remaining_distance_km"`
	RemainingDuration  int64                        `json:"remaining_duration_s"`
	DistanceToNextTurn float64                      `json:"distance_to_next_turn_km"`
	Progress           float64                      `json:"progress"`
	Navigating         bool                         `json:"navigating"`
	Error              string                       `json:"error,omitempty"`
}
