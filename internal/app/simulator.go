// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/geo"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/routeplan"
)

const simAccuracyMeters = 5.0

// Simulator walks a route leg by leg at constant speed, producing location
// fixes and the raw IMU samples a phone carried along would report.
type Simulator struct {
	points []nav.Location
	leg    int

	pos      nav.Location
	heading  float64
	speedMps float64

	imu *orientation.MockIMU
}

// NewSimulator starts at the route's start, facing the first leg.
func NewSimulator(route nav.Route, speedMps float64, seed int64) *Simulator {
	points := route.Points()
	s := &Simulator{
		points:   points,
		pos:      points[0],
		speedMps: speedMps,
		imu:      orientation.NewMockIMU(seed),
	}
	if len(points) > 1 {
		s.heading = points[0].BearingTo(points[1])
	}
	return s
}

// Done reports whether the end of the route has been reached.
func (s *Simulator) Done() bool { return s.leg >= len(s.points)-1 }

// Heading returns the current walking direction in degrees.
func (s *Simulator) Heading() float64 { return s.heading }

// Step advances the walker by dt and returns the fix and IMU sample stamped
// with ts.
func (s *Simulator) Step(dt time.Duration, ts time.Time) (nav.Location, imu.Sample) {
	step := s.speedMps * dt.Seconds() / 1000.0 // km

	for step > 0 && !s.Done() {
		target := s.points[s.leg+1]
		d := s.pos.DistanceTo(target)
		if d <= step {
			s.pos = target
			step -= d
			s.leg++
			if !s.Done() {
				s.heading = target.BearingTo(s.points[s.leg+1])
			}
			continue
		}
		s.heading = s.pos.BearingTo(target)
		s.pos.Latitude, s.pos.Longitude = geo.DeadReckon(s.pos.Latitude, s.pos.Longitude, s.heading, step)
		step = 0
	}

	speed := s.speedMps
	if s.Done() {
		speed = 0
	}
	loc := nav.Location{
		Latitude:  s.pos.Latitude,
		Longitude: s.pos.Longitude,
		Altitude:  s.pos.Altitude,
		Accuracy:  simAccuracyMeters,
		Bearing:   s.heading,
		Speed:     speed,
		Timestamp: ts,
	}

	accel, gyro, mag := s.imu.Next(s.heading, dt)
	return loc, imu.NewSample("sim", ts, accel, gyro, mag, true)
}

// RunSimulator loads ROUTE_PLAN, asks the navigator to start it and then
// publishes simulated IMU samples every SIM_INTERVAL and a GPS fix once a
// second until the walk ends.
func RunSimulator() error {
	cfg := config.Get()
	if cfg.RoutePlan == "" {
		return fmt.Errorf("simulator: ROUTE_PLAN is required")
	}
	plan, err := routeplan.Load(cfg.RoutePlan)
	if err != nil {
		return err
	}

	client, err := connectMQTT("simulator", cfg.MQTTBroker, cfg.MQTTClientIDSimulator)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	pub := mqttPublisher{client: client}

	if err := pub.Publish(cfg.TopicNavCommand, false, Command{Action: ActionStart, Plan: plan}); err != nil {
		return err
	}
	log.Printf("simulator: started plan %q", plan.Name)

	ctx, stop := signalContext()
	defer stop()

	return simulate(ctx, pub, cfg, plan)
}

func simulate(ctx context.Context, pub Publisher, cfg *config.Config, plan *routeplan.Plan) error {
	start, end, waypoints := plan.Locations()
	route := nav.Route{Start: start, End: end, Waypoints: waypoints}
	sim := NewSimulator(route, cfg.SimSpeedMps, time.Now().UnixNano())

	interval := cfg.SimTick()
	fixEvery := max(1, int(time.Second/interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			log.Println("simulator: shutting down")
			return nil
		case t := <-ticker.C:
			loc, sample := sim.Step(interval, t)

			if err := pub.Publish(cfg.TopicIMU, false, sample); err != nil {
				log.Printf("simulator: %v", err)
				continue
			}
			if tick%fixEvery == 0 || sim.Done() {
				if err := pub.Publish(cfg.TopicGPS, false, loc); err != nil {
					log.Printf("simulator: %v", err)
					continue
				}
				log.Printf("simulator: at %.6f,%.6f heading %.1f", loc.Latitude, loc.Longitude, sim.Heading())
			}
			if sim.Done() {
				log.Println("simulator: reached destination")
				return nil
			}
		}
	}
}
