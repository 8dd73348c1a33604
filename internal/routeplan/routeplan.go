// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package routeplan loads walking route plans from YAML files. A plan is a
// start, an end and optional intermediate waypoints; the routing engine turns
// it into a nav.Route.
package routeplan

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/routing"
)

// Point is a coordinate in a plan file.
type Point struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"latitude"`
	Lon float64 `yaml:"lon" json:"lon" validate:"longitude"`
}

// Location converts the point into a bare nav.Location.
func (p Point) Location() nav.Location {
	return nav.Location{Latitude: p.Lat, Longitude: p.Lon}
}

// Plan describes a walk.
type Plan struct {
	Name      string  `yaml:"name" json:"name,omitempty"`
	Start     Point   `yaml:"start" json:"start"`
	End       Point   `yaml:"end" json:"end"`
	Waypoints []Point `yaml:"waypoints" json:"waypoints,omitempty" validate:"omitempty,dive"`
	Optimize  bool    `yaml:"optimize" json:"optimize,omitempty"`
}

var validate = validator.New()

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routeplan: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML plan data.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("routeplan: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every coordinate of the plan.
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("routeplan: invalid plan %q: %w", p.Name, err)
	}
	return nil
}

// Locations returns start, end and the waypoints in visiting order,
// reordered by nearest neighbour when the plan asks for it.
func (p *Plan) Locations() (start, end nav.Location, waypoints []nav.Location) {
	waypoints = make([]nav.Location, 0, len(p.Waypoints))
	for _, w := range p.Waypoints {
		waypoints = append(waypoints, w.Location())
	}
	if p.Optimize {
		waypoints = routing.OptimizeWaypoints(waypoints)
	}
	return p.Start.Location(), p.End.Location(), waypoints
}

// Build computes the plan's route with the given engine.
func (p *Plan) Build(e *routing.Engine) nav.Route {
	start, end, waypoints := p.Locations()
	return e.CalculateRoute(start, end, waypoints...)
}
