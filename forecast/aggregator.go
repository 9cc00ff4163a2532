package forecast

import (
	"time"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// fleetGate decides, before any weather lookup, whether a fleet is forced
// off at this timestamp (outage simulation). A nil gate keeps every fleet
// eligible.
type fleetGate func(fleetID int64) bool

// powerTransform post-processes a fleet's computed power, e.g. to add
// measurement noise. A nil transform is the identity.
type powerTransform func(powerKw float64) float64

// farmAggregate is the farm-level outcome for one timestamp. Generation is
// unrounded; covariates are means over the fleets that contributed and
// absent when no fleet did.
type farmAggregate struct {
	GenerationKw  float64
	WindSpeed     maybe.Maybe[float64]
	WindDirection maybe.Maybe[float64]
	Temperature   maybe.Maybe[float64]
	Statuses      types.FleetStatusMap
}

// aggregateFarm sums fleet outputs at one timestamp. A fleet that is gated
// off, has no weather sample at its location, or no usable wind speed in
// that sample, is marked "off" and contributes nothing. Hub-height wind
// speed (100m) is preferred, surface (10m) is the fallback.
func aggregateFarm(
	graph *database.WindFarmGraph,
	idx *weatherIndex,
	ts time.Time,
	gate fleetGate,
	transform powerTransform,
) farmAggregate {
	agg := farmAggregate{Statuses: types.NewFleetStatusMap()}

	var speedSum, directionSum, temperatureSum float64
	var speedN, directionN, temperatureN int

	for _, fleet := range graph.Fleets {
		if gate != nil && gate(fleet.ID) {
			agg.Statuses.SetStatus(fleet.ID, types.FleetStatusOff)
			continue
		}

		rec, ok := idx.At(fleet.Location.ID, ts)
		if !ok {
			agg.Statuses.SetStatus(fleet.ID, types.FleetStatusOff)
			continue
		}

		windSpeed := rec.WindSpeed100m
		if !windSpeed.IsValid() {
			windSpeed = rec.WindSpeed
		}
		if !windSpeed.IsValid() {
			agg.Statuses.SetStatus(fleet.ID, types.FleetStatusOff)
			continue
		}

		speedSum += windSpeed.Value()
		speedN++
		if rec.WindDirection.IsValid() {
			directionSum += rec.WindDirection.Value()
			directionN++
		}
		if rec.Temperature.IsValid() {
			temperatureSum += rec.Temperature.Value()
			temperatureN++
		}

		powerKw := TurbinePower(fleet.Turbine, fleet.Curve, windSpeed.Value(), fleet.NumberOfTurbines)
		if transform != nil {
			powerKw = transform(powerKw)
		}
		agg.GenerationKw += powerKw

		if powerKw > 0 {
			agg.Statuses.SetStatus(fleet.ID, types.FleetStatusOn)
		} else {
			agg.Statuses.SetStatus(fleet.ID, types.FleetStatusOff)
		}
	}

	if speedN > 0 {
		agg.WindSpeed = maybe.Some(speedSum / float64(speedN))
	}
	if directionN > 0 {
		agg.WindDirection = maybe.Some(directionSum / float64(directionN))
	}
	if temperatureN > 0 {
		agg.Temperature = maybe.Some(temperatureSum / float64(temperatureN))
	}

	return agg
}
