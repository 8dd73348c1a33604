// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/routeplan"
	"github.com/relabs-tech/inertial_nav/internal/routing"
)

// Command actions accepted on the command topic.
const (
	ActionStart       = "start"
	ActionStop        = "stop"
	ActionRecalibrate = "recalibrate"
	ActionReroute     = "reroute"
)

// Command controls the navigator.
type Command struct {
	Action string          `json:"action"`
	Plan   *routeplan.Plan `json:"plan,omitempty"`
}

// Topics the navigator publishes to.
type Topics struct {
	Heading  string
	NavState string
}

// Navigator owns one fusion filter, routing engine and tracker. Its Handle
// methods are not safe for concurrent use; RunNavigator serializes them on
// a single goroutine.
type Navigator struct {
	fusion  *orientation.Fusion
	engine  *routing.Engine
	tracker *navigation.Tracker
	steps   orientation.StepDetector

	pub    Publisher
	topics Topics

	seeded  bool
	lastFix *nav.Location
}

// NewNavigator wires a navigator that publishes through pub.
func NewNavigator(pub Publisher, topics Topics, fusion *orientation.Fusion, engine *routing.Engine) *Navigator {
	return &Navigator{
		fusion:  fusion,
		engine:  engine,
		tracker: navigation.NewTracker(),
		pub:     pub,
		topics:  topics,
	}
}

// State returns the latest navigation snapshot.
func (n *Navigator) State() *nav.State { return n.tracker.State() }

// Steps returns the number of steps detected since the last start.
func (n *Navigator) Steps() int { return n.steps.Count() }

// HandleIMU runs one fusion cycle for a raw sample and publishes the
// heading. Samples without a usable magnetometer reading advance the
// filter on gyroscope and accelerometer alone.
func (n *Navigator) HandleIMU(s imu.Sample) (orientation.HeadingEstimate, error) {
	if err := s.Validate(); err != nil {
		return orientation.HeadingEstimate{}, err
	}
	accel, gyro, mag := s.Vectors()
	n.steps.Update(accel)

	compass, ok := orientation.CompassEstimate(accel, mag, s.Calibrated, s.Timestamp)
	if ok && !n.seeded {
		n.fusion.UpdateWithMagnetometer(compass.Heading)
		n.seeded = true
	}

	est := n.fusion.Fuse(compass, gyro, accel)
	n.tracker.UpdateHeadingEstimate(est)

	return est, n.pub.Publish(n.topics.Heading, true, est)
}

// HandleLocation feeds a fix to the tracker and publishes the new state.
func (n *Navigator) HandleLocation(loc nav.Location) (*nav.State, error) {
	if !loc.Valid() {
		return n.State(), fmt.Errorf("navigator: invalid location %.6f,%.6f", loc.Latitude, loc.Longitude)
	}
	n.lastFix = &loc

	wasNavigating := n.tracker.Navigating()
	st := n.tracker.UpdateLocation(loc)
	if wasNavigating && !n.tracker.Navigating() {
		log.Printf("navigator: arrived after %d steps", n.steps.Count())
	}
	return st, n.publishState()
}

// HandleCommand applies a start, stop, recalibrate or reroute command.
func (n *Navigator) HandleCommand(cmd Command) error {
	switch cmd.Action {
	case ActionStart:
		if cmd.Plan == nil {
			return errors.New("navigator: start needs a plan")
		}
		if err := cmd.Plan.Validate(); err != nil {
			return err
		}
		route := cmd.Plan.Build(n.engine)
		n.steps.Reset()
		n.tracker.Start(route)
		log.Printf("navigator: route %s started, %.3f km, %d instructions",
			route.ID, route.Distance, len(route.Instructions))

	case ActionStop:
		n.tracker.Stop()
		log.Println("navigator: navigation stopped")

	case ActionRecalibrate:
		n.fusion.Reset()
		n.seeded = false
		log.Println("navigator: fusion reset")
		return nil

	case ActionReroute:
		prev := n.State().Route
		if prev == nil || !n.tracker.Navigating() {
			return errors.New("navigator: reroute while not navigating")
		}
		if n.lastFix == nil {
			return errors.New("navigator: reroute needs a location fix")
		}
		route := n.engine.RecalculateRoute(*n.lastFix, prev.End, *prev)
		n.tracker.Start(route)
		log.Printf("navigator: rerouted from %.6f,%.6f, %.3f km left",
			n.lastFix.Latitude, n.lastFix.Longitude, route.Distance)

	default:
		return fmt.Errorf("navigator: unknown action %q", cmd.Action)
	}
	return n.publishState()
}

func (n *Navigator) publishState() error {
	return n.pub.Publish(n.topics.NavState, true, n.State())
}

type navEvent struct {
	sample  *imu.Sample
	loc     *nav.Location
	command *Command
}

// RunNavigator subscribes to IMU, GPS and command topics and runs the
// navigator until interrupted.
func RunNavigator() error {
	cfg := config.Get()

	client, err := connectMQTT("navigator", cfg.MQTTBroker, cfg.MQTTClientIDNavigator)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	n := NewNavigator(
		mqttPublisher{client: client},
		Topics{Heading: cfg.TopicHeading, NavState: cfg.TopicNavState},
		orientation.NewFusion(),
		routing.NewEngine(),
	)

	events := make(chan navEvent, 64)
	send := func(ev navEvent) {
		select {
		case events <- ev:
		default:
			log.Println("navigator: event queue full, dropping message")
		}
	}

	if err := subscribe("navigator", client, cfg.TopicIMU, func(_ mqtt.Client, msg mqtt.Message) {
		s, err := imu.Decode(msg.Payload())
		if err != nil {
			log.Printf("navigator: %v", err)
			return
		}
		send(navEvent{sample: &s})
	}); err != nil {
		return err
	}

	if err := subscribe("navigator", client, cfg.TopicGPS, func(_ mqtt.Client, msg mqtt.Message) {
		var loc nav.Location
		if err := json.Unmarshal(msg.Payload(), &loc); err != nil {
			log.Printf("navigator: location unmarshal error: %v", err)
			return
		}
		send(navEvent{loc: &loc})
	}); err != nil {
		return err
	}

	if err := subscribe("navigator", client, cfg.TopicNavCommand, func(_ mqtt.Client, msg mqtt.Message) {
		var cmd Command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			log.Printf("navigator: command unmarshal error: %v", err)
			return
		}
		send(navEvent{command: &cmd})
	}); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return n.loop(ctx, events)
}

func (n *Navigator) loop(ctx context.Context, events <-chan navEvent) error {
	status := time.NewTicker(10 * time.Second)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("navigator: shutting down")
			return nil

		case ev := <-events:
			var err error
			switch {
			case ev.sample != nil:
				_, err = n.HandleIMU(*ev.sample)
			case ev.loc != nil:
				_, err = n.HandleLocation(*ev.loc)
			case ev.command != nil:
				err = n.HandleCommand(*ev.command)
			}
			if err != nil {
				log.Printf("navigator: %v", err)
			}

		case <-status.C:
			st := n.State()
			if st.Navigating {
				log.Printf("navigator: %.3f km left, progress %.0f%%, steps %d",
					st.RemainingDistance, st.Progress*100, n.steps.Count())
			}
		}
	}
}
