package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out a time that only moves when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestFusion() (*Fusion, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewFusion(WithClock(clk.now)), clk
}

func TestUpdateWithMagnetometer(t *testing.T) {
	t.Parallel()

	f, _ := newTestFusion()
	f.UpdateWithMagnetometer(123.4)
	assert.Equal(t, 123.4, f.Heading())

	f.UpdateWithMagnetometer(5)
	assert.Equal(t, 5.0, f.Heading())
}

func TestUpdateWithGyroscope(t *testing.T) {
	t.Parallel()

	t.Run("integrates short intervals", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		clk.advance(20 * time.Millisecond)

		h := f.UpdateWithGyroscope(Vec3{0, 0, 1})
		assert.InDelta(t, 0.02*radToDeg, h, 1e-9)
		assert.Equal(t, h, f.Heading())
	})

	t.Run("discards gaps at the bound", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(42)
		clk.advance(MaxGyroGap)

		assert.Equal(t, 42.0, f.UpdateWithGyroscope(Vec3{0, 0, 3}))
	})

	t.Run("discards long gaps", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(42)
		clk.advance(2 * time.Second)

		assert.Equal(t, 42.0, f.UpdateWithGyroscope(Vec3{0, 0, 3}))
	})

	t.Run("discarded sample still moves the clock", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		clk.advance(time.Second)
		f.UpdateWithGyroscope(Vec3{0, 0, 1})

		clk.advance(10 * time.Millisecond)
		assert.InDelta(t, 0.01*radToDeg, f.UpdateWithGyroscope(Vec3{0, 0, 1}), 1e-9)
	})

	t.Run("wraps below zero", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(0.5)
		clk.advance(40 * time.Millisecond)

		h := f.UpdateWithGyroscope(Vec3{0, 0, -1})
		assert.InDelta(t, 360+0.5-0.04*radToDeg, h, 1e-9)
	})

	t.Run("wraps above 360", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(359.9)
		clk.advance(40 * time.Millisecond)

		h := f.UpdateWithGyroscope(Vec3{0, 0, 1})
		assert.InDelta(t, 359.9+0.04*radToDeg-360, h, 1e-9)
	})
}

func TestUpdateWithAccelerometer(t *testing.T) {
	t.Parallel()

	f, _ := newTestFusion()
	accel := Vec3{1, 1, 9.81}
	instant := ComputePoseFromAccel(accel)

	p := f.UpdateWithAccelerometer(accel)
	assert.InDelta(t, Beta*instant.Pitch, p.Pitch, 1e-12)
	assert.InDelta(t, Beta*instant.Roll, p.Roll, 1e-12)

	p = f.UpdateWithAccelerometer(accel)
	assert.InDelta(t, Alpha*Beta*instant.Pitch+Beta*instant.Pitch, p.Pitch, 1e-12)
	assert.InDelta(t, Alpha*Beta*instant.Roll+Beta*instant.Roll, p.Roll, 1e-12)
	assert.Equal(t, f.Heading(), p.Yaw)
}

func TestComputePoseFromAccel(t *testing.T) {
	t.Parallel()

	flat := ComputePoseFromAccel(Vec3{0, 0, 9.81})
	assert.InDelta(t, 0, flat.Pitch, 1e-9)
	assert.InDelta(t, 0, flat.Roll, 1e-9)

	nose := ComputePoseFromAccel(Vec3{9.81, 0, 0})
	assert.InDelta(t, 90, nose.Pitch, 1e-3)

	side := ComputePoseFromAccel(Vec3{0, 9.81, 0})
	assert.InDelta(t, 90, side.Roll, 1e-3)
}

func TestFuse(t *testing.T) {
	t.Parallel()

	t.Run("recent magnetometer corrects heading", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(100)
		clk.advance(10 * time.Millisecond)

		mag := HeadingEstimate{Heading: 120, Accuracy: 0.9, Calibrated: true, Timestamp: clk.now()}
		est := f.Fuse(mag, Vec3{}, Vec3{0, 0, 9.81})

		assert.InDelta(t, Alpha*100+Beta*120, est.Heading, 1e-9)
		assert.Equal(t, 0.9, est.Accuracy)
		assert.True(t, est.Calibrated)
		assert.Equal(t, clk.now(), est.Timestamp)
		assert.Equal(t, Vec3{est.Heading, f.Pitch(), f.Roll()}, est.Raw)
	})

	t.Run("stale magnetometer is ignored", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(100)
		stale := clk.now().Add(-time.Second)
		clk.advance(10 * time.Millisecond)

		est := f.Fuse(HeadingEstimate{Heading: 300, Timestamp: stale}, Vec3{}, Vec3{0, 0, 9.81})
		assert.InDelta(t, 100, est.Heading, 1e-9)
	})

	t.Run("magnetometer exactly at the recency bound is ignored", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		f.UpdateWithMagnetometer(100)
		clk.advance(10 * time.Millisecond)
		edge := clk.now().Add(-MagRecency)

		est := f.Fuse(HeadingEstimate{Heading: 300, Timestamp: edge}, Vec3{}, Vec3{0, 0, 9.81})
		assert.InDelta(t, 100, est.Heading, 1e-9)
	})

	t.Run("gyro prediction runs before correction", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		clk.advance(20 * time.Millisecond)

		est := f.Fuse(HeadingEstimate{Heading: 0, Timestamp: clk.now()}, Vec3{0, 0, 1}, Vec3{0, 0, 9.81})
		assert.InDelta(t, Alpha*0.02*radToDeg, est.Heading, 1e-9)
	})

	t.Run("heading stays in range", func(t *testing.T) {
		t.Parallel()
		f, clk := newTestFusion()
		for i := 0; i < 500; i++ {
			clk.advance(20 * time.Millisecond)
			est := f.Fuse(HeadingEstimate{Heading: 359, Timestamp: clk.now()}, Vec3{0, 0, -2}, Vec3{0.3, 0.1, 9.7})
			require.GreaterOrEqual(t, est.Heading, 0.0)
			require.Less(t, est.Heading, 360.0)
		}
	})
}

func TestReset(t *testing.T) {
	t.Parallel()

	f, clk := newTestFusion()
	f.UpdateWithMagnetometer(200)
	f.UpdateWithAccelerometer(Vec3{3, 2, 9})
	clk.advance(time.Hour)

	f.Reset()
	assert.Equal(t, 0.0, f.Heading())
	assert.Equal(t, 0.0, f.Pitch())
	assert.Equal(t, 0.0, f.Roll())

	// clock restarted: a short interval after reset is integrated
	clk.advance(10 * time.Millisecond)
	assert.InDelta(t, 0.01*radToDeg, f.UpdateWithGyroscope(Vec3{0, 0, 1}), 1e-9)
}

func TestMustVec3(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Vec3{1, 2, 3}, MustVec3([]float64{1, 2, 3}))
	assert.Panics(t, func() { MustVec3([]float64{1, 2}) })
	assert.Panics(t, func() { MustVec3(nil) })
}

func TestHeadingEstimateEqual(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := HeadingEstimate{Heading: 10, Accuracy: 1, Timestamp: ts, Raw: Vec3{1, 2, 3}}
	b := HeadingEstimate{Heading: 10, Accuracy: 1, Timestamp: ts, Raw: Vec3{9, 9, 9}, Calibrated: true}

	assert.True(t, a.Equal(b))
	b.Accuracy = 2
	assert.False(t, a.Equal(b))
}

func TestCompassHeading(t *testing.T) {
	t.Parallel()

	gravity := Vec3{0, 0, 9.81}
	for _, want := range []float64{0, 45, 90, 180, 271.5} {
		rad := want * math.Pi / 180
		mag := Vec3{-20 * math.Sin(rad), 20 * math.Cos(rad), -40}

		h, ok := CompassHeading(gravity, mag)
		require.True(t, ok)
		assert.InDelta(t, want, h, 1e-6)
	}

	_, ok := CompassHeading(gravity, Vec3{0, 0, -40})
	assert.False(t, ok, "field parallel to gravity")

	_, ok = CompassHeading(Vec3{}, Vec3{20, 0, -40})
	assert.False(t, ok, "free fall")
}

func TestCompassEstimate(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)
	est, ok := CompassEstimate(Vec3{0, 0, 9.81}, Vec3{0, 30, -40}, true, ts)
	require.True(t, ok)
	assert.InDelta(t, 0, est.Heading, 1e-9)
	assert.InDelta(t, 1.0, est.Accuracy, 1e-9)
	assert.True(t, est.Calibrated)
	assert.Equal(t, ts, est.Timestamp)
}

func TestStepDetector(t *testing.T) {
	t.Parallel()

	var d StepDetector
	// first sample jumps from 0 to 1 g
	assert.True(t, d.Update(Vec3{0, 0, 9.8}))
	assert.False(t, d.Update(Vec3{0, 0, 9.8}), "settled, step ends")
	assert.True(t, d.Update(Vec3{0, 0, 12.5}))
	assert.False(t, d.Update(Vec3{0, 0, 15}), "still rising, same step")
	assert.False(t, d.Update(Vec3{0, 0, 9.8}))
	assert.True(t, d.Update(Vec3{0, 0, 12.5}))
	assert.Equal(t, 3, d.Count())

	d.Reset()
	assert.Equal(t, 0, d.Count())
}

func TestMockIMU(t *testing.T) {
	t.Parallel()

	m := NewMockIMU(1)
	m.Noise = 0

	accel, gyro, mag := m.Next(90, 0)
	h, ok := CompassHeading(accel, mag)
	require.True(t, ok)
	assert.InDelta(t, 90, h, 1e-6)
	assert.Equal(t, 0.0, gyro[2])

	_, gyro, _ = m.Next(100, 100*time.Millisecond)
	assert.InDelta(t, 10/radToDeg/0.1, gyro[2], 1e-9)

	_, gyro, _ = m.Next(350, 100*time.Millisecond)
	assert.InDelta(t, -110/radToDeg/0.1, gyro[2], 1e-9, "shortest way round")
}

func TestMockIMUStrides(t *testing.T) {
	t.Parallel()

	m := NewMockIMU(7)
	m.Noise = 0

	var d StepDetector
	for i := 0; i < 40; i++ {
		accel, _, _ := m.Next(0, 100*time.Millisecond)
		d.Update(accel)
	}
	// 4 s at 1.8 strides/s, plus the jump from rest on the first sample.
	assert.Equal(t, 8, d.Count())
}

func TestFusionAccessors(t *testing.T) {
	t.Parallel()

	f, _ := newTestFusion()
	f.UpdateWithMagnetometer(123)
	p := f.UpdateWithAccelerometer(Vec3{1, 2, 9})

	assert.Equal(t, 123.0, f.Heading())
	assert.Equal(t, p.Pitch, f.Pitch())
	assert.Equal(t, p.Roll, f.Roll())
	assert.Equal(t, Pose{Roll: f.Roll(), Pitch: f.Pitch(), Yaw: f.Heading()}, f.Pose())
}
