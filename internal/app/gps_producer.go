// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/gps"
	"github.com/relabs-tech/inertial_nav/internal/nav"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes every valid fix as a nav.Location on TOPIC_GPS.
func RunGPSProducer() error {
	cfg := config.Get()
	if err := cfg.RequireGPS(); err != nil {
		return err
	}

	client, err := connectMQTT("gps", cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("gps: open %s: %w", serialOpts.PortName, err)
	}
	defer port.Close()
	log.Printf("gps: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return publishFixes(port, mqttPublisher{client: client}, cfg.TopicGPS)
}

// publishFixes streams NMEA from r and publishes each fix until r ends.
func publishFixes(r io.Reader, pub Publisher, topic string) error {
	return gps.ReadFixes(r, func(loc nav.Location) {
		if err := pub.Publish(topic, true, loc); err != nil {
			log.Printf("gps: %v", err)
			return
		}
		log.Printf("gps: published fix %.6f,%.6f speed=%.1fm/s course=%.1f",
			loc.Latitude, loc.Longitude, loc.Speed, loc.Bearing)
	}, func(err error) {
		// noisy receivers emit partial sentences at power-up
		log.Printf("gps: %v", err)
	})
}
