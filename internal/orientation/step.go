// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// Thresholds on the change of acceleration magnitude between samples.
const (
	stepRiseThreshold = 2.0
	stepFallThreshold = 1.0
)

// StepDetector counts steps from accelerometer magnitude swings. A rise of
// more than 2 m/s² starts a step, a change below 1 m/s² ends it.
type StepDetector struct {
	lastMagnitude float64
	moving        bool
	count         int
}

// Update feeds one accelerometer sample and reports whether it started a
// new step.
func (d *StepDetector) Update(accel Vec3) bool {
	magnitude := accel.Norm()
	delta := magnitude - d.lastMagnitude
	d.lastMagnitude = magnitude

	switch {
	case delta > stepRiseThreshold && !d.moving:
		d.moving = true
		d.count++
		return true
	case delta < stepFallThreshold && d.moving:
		d.moving = false
	}
	return false
}

// Count returns the number of steps detected since the last Reset.
func (d *StepDetector) Count() int { return d.count }

// Reset clears the step count. The magnitude history is kept.
func (d *StepDetector) Reset() { d.count = 0 }
