package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/nav"
	"github.com/relabs-tech/inertial_nav/internal/routeplan"
)

func TestSimulatorStraightLeg(t *testing.T) {
	t.Parallel()

	route := nav.Route{
		Start: nav.Location{Latitude: 0, Longitude: 0},
		End:   nav.Location{Latitude: 0, Longitude: 0.001},
	}
	sim := NewSimulator(route, 10, 1)
	assert.InDelta(t, 90, sim.Heading(), 1e-9)

	ts := time.Unix(1700000000, 0)
	loc, sample := sim.Step(time.Second, ts)
	assert.InDelta(t, 0.01, route.Start.DistanceTo(loc), 1e-6)
	assert.InDelta(t, 90, loc.Bearing, 1e-6)
	assert.Equal(t, 10.0, loc.Speed)
	assert.Equal(t, ts, loc.Timestamp)
	assert.False(t, sim.Done())

	require.NoError(t, sample.Validate())
	assert.Equal(t, "sim", sample.Source)
	assert.True(t, sample.Calibrated)

	// 111 m at 10 m/s
	for i := 0; i < 11; i++ {
		loc, _ = sim.Step(time.Second, ts)
	}
	assert.True(t, sim.Done())
	assert.Equal(t, route.End.Latitude, loc.Latitude)
	assert.Equal(t, route.End.Longitude, loc.Longitude)
	assert.Zero(t, loc.Speed)
}

func TestSimulatorTurnsAtWaypoints(t *testing.T) {
	t.Parallel()

	route := nav.Route{
		Start:     nav.Location{Latitude: 0, Longitude: 0},
		Waypoints: []nav.Location{{Latitude: 0.0009, Longitude: 0}},
		End:       nav.Location{Latitude: 0.0009, Longitude: 0.0009},
	}
	sim := NewSimulator(route, 20, 1)
	assert.InDelta(t, 0, sim.Heading(), 1e-9, "north first")

	// ~100 m north; the sixth step rounds the corner.
	var loc nav.Location
	for i := 0; i < 6; i++ {
		loc, _ = sim.Step(time.Second, time.Time{})
	}
	assert.InDelta(t, 90, sim.Heading(), 0.01)
	assert.Greater(t, loc.Longitude, 0.0)
	assert.InDelta(t, 0.0009, loc.Latitude, 1e-6)
	assert.False(t, sim.Done())
}

func TestSimulatorZeroLengthRoute(t *testing.T) {
	t.Parallel()

	here := nav.Location{Latitude: 10, Longitude: 10}
	sim := NewSimulator(nav.Route{Start: here, End: here}, 1.4, 1)
	loc, _ := sim.Step(100*time.Millisecond, time.Time{})
	assert.True(t, sim.Done())
	assert.Equal(t, here.Latitude, loc.Latitude)
}

func TestSimulate(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		TopicIMU:    "imu",
		TopicGPS:    "gps",
		SimInterval: 10,
		SimSpeedMps: 10,
	}
	plan := &routeplan.Plan{
		Start: routeplan.Point{Lat: 0, Lon: 0},
		End:   routeplan.Point{Lat: 0, Lon: 0.0002},
	}
	pub := &fakePublisher{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, simulate(ctx, pub, cfg, plan))

	// 22 m at 10 m/s in 10 ms ticks
	samples := pub.on("imu")
	assert.Len(t, samples, 223)
	for _, m := range samples {
		_, ok := m.v.(imu.Sample)
		require.True(t, ok)
	}

	fixes := pub.on("gps")
	require.NotEmpty(t, fixes)
	last := fixes[len(fixes)-1].v.(nav.Location)
	assert.Equal(t, 0.0002, last.Longitude)
}
