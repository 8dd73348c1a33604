// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

// RunConsoleMQTT prints heading and navigation snapshots as they arrive.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT("console", cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	// Wait for Ctrl+C
	ctx, stop := signalContext()
	defer stop()

	return runConsole(ctx, client, cfg, os.Stdout)
}

// runConsole owns client: it is disconnected on every return path.
func runConsole(ctx context.Context, client mqtt.Client, cfg *config.Config, w io.Writer) error {
	defer client.Disconnect(250)

	if err := subscribe("console", client, cfg.TopicHeading, func(_ mqtt.Client, msg mqtt.Message) {
		var h orientation.HeadingEstimate
		if err := json.Unmarshal(msg.Payload(), &h); err != nil {
			log.Printf("console: heading unmarshal error: %v", err)
			return
		}
		printHeading(w, h)
	}); err != nil {
		return err
	}

	if err := subscribe("console", client, cfg.TopicNavState, func(_ mqtt.Client, msg mqtt.Message) {
		var st nav.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}
		printState(w, &st)
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}

func printHeading(w io.Writer, h orientation.HeadingEstimate) {
	fmt.Fprintf(w,
		"[HEAD] heading=%6.2f pitch=%6.2f roll=%6.2f accuracy=%.2f calibrated=%t\n",
		h.Heading, h.Raw[1], h.Raw[2], h.Accuracy, h.Calibrated,
	)
}

func printState(w io.Writer, st *nav.State) {
	if !st.Navigating {
		fmt.Fprintln(w, "[NAV ] idle")
		return
	}

	next := "-"
	if st.CurrentInstruction != nil {
		next = fmt.Sprintf("%s on %s", st.CurrentInstruction.Turn, st.CurrentInstruction.StreetName)
	}
	fmt.Fprintf(w,
		"[NAV ] %5.1f%% left=%.3fkm eta=%ds next=%.3fkm %s\n",
		st.Progress*100, st.RemainingDistance, st.RemainingDuration, st.DistanceToNextTurn, next,
	)
}
