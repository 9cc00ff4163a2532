package types

import (
	"encoding/json"
	"sort"
	"strconv"
)

// PowerCurve maps wind speed (m/s) to single-turbine power output (kW).
// Keys are serialized as strings so the curve round-trips through JSON
// columns unchanged; Set defines the canonical float-to-string form.
type PowerCurve map[string]float64

type PowerCurvePoint struct {
	WindSpeed float64
	PowerKw   float64
}

func (pc PowerCurve) Set(windSpeed, powerKw float64) {
	pc[strconv.FormatFloat(windSpeed, 'f', -1, 64)] = powerKw
}

// Points returns the curve sorted by wind speed ascending. Entries with
// unparsable keys are dropped.
func (pc PowerCurve) Points() []PowerCurvePoint {
	points := make([]PowerCurvePoint, 0, len(pc))
	for k, v := range pc {
		speed, err := strconv.ParseFloat(k, 64)
		if err != nil {
			continue
		}
		points = append(points, PowerCurvePoint{WindSpeed: speed, PowerKw: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].WindSpeed < points[j].WindSpeed
	})
	return points
}

func (pc PowerCurve) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64(pc))
}

func (pc *PowerCurve) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*pc = m
	return nil
}
