// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/geo"
)

// Complementary filter weights. They intentionally do not sum to one.
const (
	Alpha = 0.95 // weight of the running (gyro-integrated) state
	Beta  = 0.05 // weight of the new accelerometer/magnetometer reading
)

const (
	// MaxGyroGap is the longest interval integrated from one gyroscope
	// sample. Longer gaps are dropped as clock glitches.
	MaxGyroGap = 50 * time.Millisecond

	// MagRecency is how far behind the last gyroscope update a
	// magnetometer sample may be and still correct the heading.
	MagRecency = 200 * time.Millisecond
)

// Fusion merges magnetometer, gyroscope and accelerometer samples into a
// heading/pitch/roll estimate with a complementary filter.
//
// A Fusion is not safe for concurrent use; all updates for one instance
// must be serialized by the caller.
type Fusion struct {
	heading float64
	pitch   float64
	roll    float64

	lastUpdate time.Time
	now        func() time.Time
}

// Option configures a Fusion.
type Option func(*Fusion)

// WithClock replaces time.Now as the fusion clock.
func WithClock(now func() time.Time) Option {
	return func(f *Fusion) { f.now = now }
}

// NewFusion returns a zeroed filter whose clock starts now.
func NewFusion(opts ...Option) *Fusion {
	f := &Fusion{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.lastUpdate = f.now()
	return f
}

// UpdateWithMagnetometer overwrites the tracked heading.
func (f *Fusion) UpdateWithMagnetometer(heading float64) {
	f.heading = heading
}

// UpdateWithGyroscope integrates the z-axis rate (rad/s) over the time since
// the previous gyroscope update and returns the new heading.
func (f *Fusion) UpdateWithGyroscope(gyro Vec3) float64 {
	now := f.now()
	elapsed := now.Sub(f.lastUpdate)
	f.lastUpdate = now

	if elapsed < MaxGyroGap {
		f.heading += gyro[2] * elapsed.Seconds() * radToDeg
	}

	f.heading = geo.NormalizeDeg(f.heading)
	return f.heading
}

// UpdateWithAccelerometer blends the accelerometer tilt into the running
// pitch and roll and returns the resulting pose.
func (f *Fusion) UpdateWithAccelerometer(accel Vec3) Pose {
	ax, ay, az := accel[0], accel[1], accel[2]

	pitch := math.Atan2(ax, math.Sqrt(ay*ay+az*az)) * radToDeg
	roll := math.Atan2(ay, az) * radToDeg

	f.pitch = Alpha*f.pitch + Beta*pitch
	f.roll = Alpha*f.roll + Beta*roll

	return f.Pose()
}

// Fuse runs one fusion cycle: gyroscope prediction, magnetometer correction
// when mag is recent enough, then accelerometer stabilization. The result
// carries the fused angles with the magnetometer's accuracy and
// calibration flag.
func (f *Fusion) Fuse(mag HeadingEstimate, gyro, accel Vec3) HeadingEstimate {
	f.UpdateWithGyroscope(gyro)

	if mag.Timestamp.After(f.lastUpdate.Add(-MagRecency)) {
		f.heading = Alpha*f.heading + Beta*mag.Heading
	}

	f.UpdateWithAccelerometer(accel)

	f.heading = geo.NormalizeDeg(f.heading)

	return HeadingEstimate{
		Heading:    f.heading,
		Accuracy:   mag.Accuracy,
		Calibrated: mag.Calibrated,
		Timestamp:  f.now(),
		Raw:        Vec3{f.heading, f.pitch, f.roll},
	}
}

// Reset zeros the filter state and restarts its clock.
func (f *Fusion) Reset() {
	f.heading = 0
	f.pitch = 0
	f.roll = 0
	f.lastUpdate = f.now()
}

// Heading returns the fused heading in degrees, [0,360).
func (f *Fusion) Heading() float64 { return f.heading }

// Pitch returns the fused pitch in degrees.
func (f *Fusion) Pitch() float64 { return f.pitch }

// Roll returns the fused roll in degrees.
func (f *Fusion) Roll() float64 { return f.roll }

// Pose returns the current fused orientation with the heading as yaw.
func (f *Fusion) Pose() Pose {
	return Pose{Roll: f.roll, Pitch: f.pitch, Yaw: f.heading}
}
