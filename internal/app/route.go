// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/relabs-tech/inertial_nav/internal/routeplan"
	"github.com/relabs-tech/inertial_nav/internal/routing"
)

// WriteRoute computes the route for a plan file and writes it as indented
// JSON.
func WriteRoute(w io.Writer, planPath string) error {
	plan, err := routeplan.Load(planPath)
	if err != nil {
		return err
	}
	route := plan.Build(routing.NewEngine())

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(route); err != nil {
		return fmt.Errorf("route: encode: %w", err)
	}
	return nil
}
