// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/inertial_nav/internal/app"
)

func main() {
	planPath := flag.String("plan", "./routes/demo.yaml", "route plan file")
	flag.Parse()

	if err := app.WriteRoute(os.Stdout, *planPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
