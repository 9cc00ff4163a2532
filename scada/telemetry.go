package scada

import (
	"sync"
	"time"

	"github.com/angas/windfarm-go/convert"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// Telemetry is one fleet-level sample published by a farm's SCADA gateway.
type Telemetry struct {
	FleetID          int64    `json:"fleetId"`
	PowerKw          float64  `json:"powerKw"`
	WindSpeedMs      *float64 `json:"windSpeedMs"`
	WindDirectionDeg *float64 `json:"windDirectionDeg"`
	TemperatureC     *float64 `json:"temperatureC"`
}

// FarmSnapshot is the farm-level view assembled from the latest sample of
// each reporting fleet.
type FarmSnapshot struct {
	WindFarmID    int64                `json:"windFarmId"`
	PowerKw       float64              `json:"powerKw"`
	AvgPowerKw    float64              `json:"avgPowerKw"`
	WindSpeed     maybe.Maybe[float64] `json:"-"`
	WindDirection maybe.Maybe[float64] `json:"-"`
	Temperature   maybe.Maybe[float64] `json:"-"`
	Statuses      types.FleetStatusMap `json:"statuses"`
	LastSeen      time.Time            `json:"lastSeen"`
}

// Samples older than this no longer count as live, the fleet is reported
// "off" and dropped from the farm totals.
const staleAfter = 15 * time.Minute

const avgWindowSize = 60

type fleetSample struct {
	telemetry  Telemetry
	receivedAt time.Time
}

// InMemData is the live telemetry state, latest sample per (farm, fleet)
// plus a moving average of farm power.
type InMemData struct {
	mu    sync.RWMutex
	farms map[int64]map[int64]fleetSample
	avg   map[int64]*MovingAverage
	now   func() time.Time
}

func NewInMemData() *InMemData {
	return &InMemData{
		farms: make(map[int64]map[int64]fleetSample),
		avg:   make(map[int64]*MovingAverage),
		now:   time.Now,
	}
}

func (d *InMemData) Set(windFarmID int64, t Telemetry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fleets, ok := d.farms[windFarmID]
	if !ok {
		fleets = make(map[int64]fleetSample)
		d.farms[windFarmID] = fleets
		d.avg[windFarmID] = NewMovingAverage(avgWindowSize)
	}
	fleets[t.FleetID] = fleetSample{telemetry: t, receivedAt: d.now()}

	var total float64
	for _, sample := range fleets {
		total += sample.telemetry.PowerKw
	}
	d.avg[windFarmID].Add(total)
}

// Healthy reports whether any farm has live telemetry.
func (d *InMemData) Healthy() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now()
	for _, fleets := range d.farms {
		for _, sample := range fleets {
			if now.Sub(sample.receivedAt) < staleAfter {
				return true
			}
		}
	}
	return false
}

// FarmIDs lists the farms seen so far, live or stale.
func (d *InMemData) FarmIDs() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]int64, 0, len(d.farms))
	for id := range d.farms {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot assembles the farm-level state. The second return is false when
// the farm has never reported.
func (d *InMemData) Snapshot(windFarmID int64) (FarmSnapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	fleets, ok := d.farms[windFarmID]
	if !ok || len(fleets) == 0 {
		return FarmSnapshot{}, false
	}

	snap := FarmSnapshot{
		WindFarmID: windFarmID,
		Statuses:   types.NewFleetStatusMap(),
	}

	now := d.now()
	var speedSum, directionSum, temperatureSum float64
	var speedN, directionN, temperatureN int
	for fleetID, sample := range fleets {
		if sample.receivedAt.After(snap.LastSeen) {
			snap.LastSeen = sample.receivedAt
		}
		if now.Sub(sample.receivedAt) >= staleAfter {
			snap.Statuses.SetStatus(fleetID, types.FleetStatusOff)
			continue
		}

		t := sample.telemetry
		snap.PowerKw += t.PowerKw
		if t.PowerKw > 0 {
			snap.Statuses.SetStatus(fleetID, types.FleetStatusOn)
		} else {
			snap.Statuses.SetStatus(fleetID, types.FleetStatusOff)
		}

		if t.WindSpeedMs != nil {
			speedSum += *t.WindSpeedMs
			speedN++
		}
		if t.WindDirectionDeg != nil {
			directionSum += *t.WindDirectionDeg
			directionN++
		}
		if t.TemperatureC != nil {
			temperatureSum += *t.TemperatureC
			temperatureN++
		}
	}

	snap.PowerKw = convert.TwoDecimals(snap.PowerKw)
	snap.AvgPowerKw = convert.TwoDecimals(d.avg[windFarmID].Avg())
	if speedN > 0 {
		snap.WindSpeed = maybe.Some(convert.TwoDecimals(speedSum / float64(speedN)))
	}
	if directionN > 0 {
		snap.WindDirection = maybe.Some(convert.OneDecimal(directionSum / float64(directionN)))
	}
	if temperatureN > 0 {
		snap.Temperature = maybe.Some(convert.OneDecimal(temperatureSum / float64(temperatureN)))
	}

	return snap, true
}
