// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/geo"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

// Sample is one raw accelerometer + gyroscope + magnetometer reading as it
// travels over MQTT. Axes are device axes.
type Sample struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	Accel []float64 `json:"accel"` // m/s²
	Gyro  []float64 `json:"gyro"`  // rad/s
	Mag   []float64 `json:"mag"`   // µT

	Calibrated bool `json:"calibrated"` // magnetometer calibration status
}

// NewSample packs fused-ready vectors into a wire sample.
func NewSample(source string, ts time.Time, accel, gyro, mag orientation.Vec3, calibrated bool) Sample {
	return Sample{
		Source:     source,
		Timestamp:  ts,
		Accel:      accel[:],
		Gyro:       gyro[:],
		Mag:        mag[:],
		Calibrated: calibrated,
	}
}

// Validate checks that every vector has three finite axes.
func (s Sample) Validate() error {
	for _, v := range []struct {
		name   string
		values []float64
	}{
		{"accel", s.Accel},
		{"gyro", s.Gyro},
		{"mag", s.Mag},
	} {
		if len(v.values) != 3 {
			return fmt.Errorf("imu: %s has %d axes, want 3", v.name, len(v.values))
		}
		if !geo.Finite(v.values...) {
			return fmt.Errorf("imu: %s has non-finite values", v.name)
		}
	}
	return nil
}

// Vectors returns the three sensor vectors. Validate must have passed.
func (s Sample) Vectors() (accel, gyro, mag orientation.Vec3) {
	return orientation.MustVec3(s.Accel), orientation.MustVec3(s.Gyro), orientation.MustVec3(s.Mag)
}

// Decode unmarshals and validates a JSON sample.
func Decode(payload []byte) (Sample, error) {
	var s Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return Sample{}, fmt.Errorf("imu: decode sample: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return s, nil
}
