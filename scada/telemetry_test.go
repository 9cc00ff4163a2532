package scada

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angas/windfarm-go/types"
)

func f64(v float64) *float64 { return &v }

func TestMovingAverage(t *testing.T) {
	ma := NewMovingAverage(3)
	assert.Zero(t, ma.Avg())

	ma.Add(1)
	ma.Add(2)
	assert.InDelta(t, 1.5, ma.Avg(), 1e-9)

	ma.Add(3)
	assert.InDelta(t, 2.0, ma.Avg(), 1e-9)

	// Window slides: 1 falls out.
	ma.Add(7)
	assert.InDelta(t, 4.0, ma.Avg(), 1e-9)

	ma.Reset()
	assert.Zero(t, ma.Avg())
}

func TestInMemDataSnapshot(t *testing.T) {
	d := NewInMemData()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	d.Set(1, Telemetry{FleetID: 10, PowerKw: 1500, WindSpeedMs: f64(9.2), WindDirectionDeg: f64(190)})
	d.Set(1, Telemetry{FleetID: 11, PowerKw: 0, WindSpeedMs: f64(9.0)})

	snap, ok := d.Snapshot(1)
	require.True(t, ok)
	assert.InDelta(t, 1500, snap.PowerKw, 1e-9)
	assert.InDelta(t, 9.1, snap.WindSpeed.Value(), 1e-9)
	assert.InDelta(t, 190, snap.WindDirection.Value(), 1e-9)
	assert.False(t, snap.Temperature.IsValid())
	assert.Equal(t, []int64{10}, snap.Statuses.ActiveFleetIDs())
	assert.Equal(t, now, snap.LastSeen)

	status, ok := snap.Statuses.GetStatus(11)
	require.True(t, ok)
	assert.Equal(t, types.FleetStatusOff, status)
}

func TestInMemDataUnknownFarm(t *testing.T) {
	d := NewInMemData()
	_, ok := d.Snapshot(99)
	assert.False(t, ok)
	assert.False(t, d.Healthy())
}

func TestInMemDataStaleSamplesDropOut(t *testing.T) {
	d := NewInMemData()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	d.Set(1, Telemetry{FleetID: 10, PowerKw: 1500})

	// Time passes beyond the staleness window.
	now = now.Add(staleAfter + time.Minute)

	snap, ok := d.Snapshot(1)
	require.True(t, ok)
	assert.Zero(t, snap.PowerKw)
	assert.Empty(t, snap.Statuses.ActiveFleetIDs())
	assert.False(t, d.Healthy())
}

func TestInMemDataLatestSampleWins(t *testing.T) {
	d := NewInMemData()
	d.Set(1, Telemetry{FleetID: 10, PowerKw: 1000})
	d.Set(1, Telemetry{FleetID: 10, PowerKw: 2000})

	snap, ok := d.Snapshot(1)
	require.True(t, ok)
	assert.InDelta(t, 2000, snap.PowerKw, 1e-9)
	// The moving average saw both totals.
	assert.InDelta(t, 1500, snap.AvgPowerKw, 1e-9)
}

func TestFarmIDFromTopic(t *testing.T) {
	id, err := farmIDFromTopic("windfarm/42/telemetry")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = farmIDFromTopic("windfarm/abc/telemetry")
	assert.Error(t, err)
	_, err = farmIDFromTopic("windfarm/telemetry")
	assert.Error(t, err)
}
