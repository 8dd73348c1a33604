// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/routeplan"
	"github.com/relabs-tech/inertial_nav/internal/routing"
)

// consoleStep is the simulated IMU period of the offline console. It stays
// under orientation.MaxGyroGap so every gyro sample is integrated.
const consoleStep = 20 * time.Millisecond

// printPublisher prints navigation snapshots and remembers the last heading.
type printPublisher struct {
	w       io.Writer
	heading orientation.HeadingEstimate
}

func (p *printPublisher) Publish(_ string, _ bool, v any) error {
	switch v := v.(type) {
	case orientation.HeadingEstimate:
		p.heading = v
	case *nav.State:
		printState(p.w, v)
	}
	return nil
}

// RunMockConsole walks plan in simulated time with the whole navigation
// core in process and prints one heading and one state line per simulated
// second. It returns once the tracker reports arrival.
func RunMockConsole(w io.Writer, plan *routeplan.Plan, speedMps float64) error {
	if speedMps <= 0 {
		return errors.New("console: walking speed must be positive")
	}

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	pub := &printPublisher{w: w}
	n := NewNavigator(pub,
		Topics{Heading: "heading", NavState: "state"},
		orientation.NewFusion(orientation.WithClock(now)),
		routing.NewEngine(routing.WithClock(now)),
	)
	if err := n.HandleCommand(Command{Action: ActionStart, Plan: plan}); err != nil {
		return err
	}
	route := n.State().Route
	sim := NewSimulator(*route, speedMps, 1)

	fixEvery := int(time.Second / consoleStep)
	limit := int(route.Distance*1000/speedMps/consoleStep.Seconds()) + 2*fixEvery

	for tick := 1; tick <= limit; tick++ {
		clock = clock.Add(consoleStep)
		loc, sample := sim.Step(consoleStep, clock)

		if _, err := n.HandleIMU(sample); err != nil {
			return err
		}
		if tick%fixEvery != 0 && !sim.Done() {
			continue
		}

		printHeading(w, pub.heading)
		st, err := n.HandleLocation(loc)
		if err != nil {
			return err
		}
		if !st.Navigating {
			fmt.Fprintf(w, "arrived after %s and %d steps\n", time.Duration(tick)*consoleStep, n.Steps())
			return nil
		}
	}
	return fmt.Errorf("console: walk did not reach the destination after %d samples", limit)
}
