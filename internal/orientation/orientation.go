// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"time"
)

// radToDeg is the conversion factor used by the fusion filter for both
// gyroscope rates and accelerometer tilt angles.
const radToDeg = 57.2958

// Vec3 is one 3-axis sensor sample in device axes (x, y, z).
type Vec3 [3]float64

// MustVec3 converts a raw sample slice into a Vec3. Every formula in this
// package assumes three axes, so any other length is a caller bug.
func MustVec3(values []float64) Vec3 {
	if len(values) != 3 {
		panic(fmt.Sprintf("orientation: sample must have 3 axes, got %d", len(values)))
	}
	return Vec3{values[0], values[1], values[2]}
}

// Norm returns the euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Pose is the canonical representation of orientation for your app.
// Yaw carries the fused heading in [0,360).
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// HeadingEstimate is one heading snapshot produced by a compass reading or
// by a fusion cycle.
type HeadingEstimate struct {
	Heading    float64   `json:"heading"`  // degrees, [0,360)
	Accuracy   float64   `json:"accuracy"` // compass field strength ratio, ~0-2
	Calibrated bool      `json:"calibrated"`
	Timestamp  time.Time `json:"timestamp"`
	Raw        Vec3      `json:"raw"`
}

// Equal compares heading, accuracy and timestamp. Raw is ignored.
func (h HeadingEstimate) Equal(o HeadingEstimate) bool {
	return h.Heading == o.Heading && h.Accuracy == o.Accuracy && h.Timestamp.Equal(o.Timestamp)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is left at 0.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(ax, sqrt(ay² + az²))
func ComputePoseFromAccel(accel Vec3) Pose {
	ax, ay, az := accel[0], accel[1], accel[2]
	return Pose{
		Roll:  math.Atan2(ay, az) * radToDeg,
		Pitch: math.Atan2(ax, math.Sqrt(ay*ay+az*az)) * radToDeg,
	}
}
