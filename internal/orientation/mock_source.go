// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand"
	"time"
)

// Simulated earth field, µT: horizontal north component and vertical
// component (negative z, pointing into the ground for a device lying flat).
const (
	simFieldHorizontal = 20.0
	simFieldVertical   = -40.0
	simGravity         = 9.81
	simHeelStrike      = 3.0
)

// MockIMU synthesizes raw accelerometer, gyroscope and magnetometer samples
// for a device held flat while walking along a given heading.
type MockIMU struct {
	rng      *rand.Rand
	heading  float64
	haveLast bool
	phase    float64

	// StepHz is the walking cadence in strides per second.
	StepHz float64
	// Noise is the standard deviation added to every axis.
	Noise float64
}

// NewMockIMU creates a mock IMU with a deterministic noise source.
func NewMockIMU(seed int64) *MockIMU {
	return &MockIMU{
		rng:    rand.New(rand.NewSource(seed)),
		StepHz: 1.8,
		Noise:  0.02,
	}
}

// Next returns the raw samples for a device facing heading (degrees) after
// dt has elapsed since the previous call.
func (m *MockIMU) Next(heading float64, dt time.Duration) (accel, gyro, mag Vec3) {
	turn := 0.0
	if m.haveLast && dt > 0 {
		delta := math.Remainder(heading-m.heading, 360)
		turn = delta / radToDeg / dt.Seconds()
	}
	m.heading = heading
	m.haveLast = true

	// One heel strike per stride, on the sample that crosses into it.
	prev := math.Floor(m.phase)
	m.phase += m.StepHz * dt.Seconds()
	strike := 0.0
	if math.Floor(m.phase) > prev {
		strike = simHeelStrike
	}

	rad := heading * math.Pi / 180.0
	accel = Vec3{m.noise(), m.noise(), simGravity + strike + m.noise()}
	gyro = Vec3{m.noise(), m.noise(), turn}
	mag = Vec3{
		-simFieldHorizontal*math.Sin(rad) + m.noise(),
		simFieldHorizontal*math.Cos(rad) + m.noise(),
		simFieldVertical + m.noise(),
	}
	return accel, gyro, mag
}

func (m *MockIMU) noise() float64 {
	if m.Noise == 0 {
		return 0
	}
	return m.rng.NormFloat64() * m.Noise
}
