// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/geo"
)

// compassFieldNorm scales the field magnitude (µT) into the 0-2 accuracy
// range reported alongside compass headings.
const compassFieldNorm = 50.0

// minHorizontalField is the smallest |gravity × field| accepted; below it
// the device is in free fall or pointing along the field lines.
const minHorizontalField = 0.1

// CompassHeading returns the tilt-compensated azimuth of the device from a
// gravity vector and a geomagnetic vector, in [0,360). ok is false when the
// two vectors do not define a horizontal plane.
func CompassHeading(accel, mag Vec3) (heading float64, ok bool) {
	ax, ay, az := accel[0], accel[1], accel[2]
	ex, ey, ez := mag[0], mag[1], mag[2]

	// H = E × A points east in device coordinates.
	hx := ey*az - ez*ay
	hy := ez*ax - ex*az
	hz := ex*ay - ey*ax
	normH := math.Sqrt(hx*hx + hy*hy + hz*hz)
	if normH < minHorizontalField {
		return 0, false
	}
	normA := accel.Norm()
	if normA == 0 {
		return 0, false
	}

	hx, hy, hz = hx/normH, hy/normH, hz/normH
	ax, az = ax/normA, az/normA

	// M = A × H points north; only its y component is needed.
	my := az*hx - ax*hz

	return geo.NormalizeDeg(math.Atan2(hy, my) * 180.0 / math.Pi), true
}

// CompassAccuracy maps the magnetometer field strength to an accuracy
// figure: |B| / 50.
func CompassAccuracy(mag Vec3) float64 {
	return mag.Norm() / compassFieldNorm
}

// CompassEstimate builds the magnetometer-side HeadingEstimate that Fuse
// expects. ok is false when no heading can be derived.
func CompassEstimate(accel, mag Vec3, calibrated bool, ts time.Time) (HeadingEstimate, bool) {
	h, ok := CompassHeading(accel, mag)
	if !ok {
		return HeadingEstimate{}, false
	}
	return HeadingEstimate{
		Heading:    h,
		Accuracy:   CompassAccuracy(mag),
		Calibrated: calibrated,
		Timestamp:  ts,
		Raw:        mag,
	}, true
}
