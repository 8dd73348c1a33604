// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import "fmt"

// Turn is the maneuver of a TurnInstruction.
type Turn int

// The router only produces GoStraight, TurnLeft, UTurn, TurnRight and
// Arrive; the remaining kinds are reserved for other instruction sources.
const (
	TurnLeft Turn = iota
	TurnRight
	GoStraight
	UTurn
	ForkLeft
	ForkRight
	Merge
	ExitLeft
	ExitRight
	Roundabout
	Arrive
)

var turnNames = [...]string{
	"TURN_LEFT",
	"TURN_RIGHT",
	"GO_STRAIGHT",
	"U_TURN",
	"FORK_LEFT",
	"FORK_RIGHT",
	"MERGE",
	"EXIT_LEFT",
	"EXIT_RIGHT",
	"ROUNDABOUT",
	"ARRIVE",
}

func (t Turn) String() string {
	if t >= 0 && int(t) < len(turnNames) {
		return turnNames[t]
	}
	return fmt.Sprintf("Turn(%d)", int(t))
}

// MarshalText encodes the turn by name.
func (t Turn) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(turnNames) {
		return nil, fmt.Errorf("nav: unknown turn %d", int(t))
	}
	return []byte(turnNames[t]), nil
}

// UnmarshalText decodes a turn name.
func (t *Turn) UnmarshalText(b []byte) error {
	for i, name := range turnNames {
		if name == string(b) {
			*t = Turn(i)
			return nil
		}
	}
	return fmt.Errorf("nav: unknown turn %q", string(b))
}
