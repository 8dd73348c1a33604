// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/inertial_nav/internal/app"
	"github.com/relabs-tech/inertial_nav/internal/routeplan"
)

func main() {
	planPath := flag.String("plan", "./routes/demo.yaml", "route plan to walk")
	speed := flag.Float64("speed", 1.4, "walking speed in m/s")
	flag.Parse()

	log.Println("starting inertial-nav (mock console)")

	plan, err := routeplan.Load(*planPath)
	if err != nil {
		log.Fatalf("failed to load plan: %v", err)
	}

	if err := app.RunMockConsole(os.Stdout, plan, *speed); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
