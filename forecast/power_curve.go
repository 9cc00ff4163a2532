package forecast

import (
	"github.com/angas/windfarm-go/convert"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
)

// Fallback turbine characteristics used when a turbine has no power curve.
const (
	cutInSpeed  = 3.0  // m/s
	ratedSpeed  = 12.0 // m/s
	cutOutSpeed = 25.0 // m/s
)

// TurbinePower computes the power output in kW for a group of identical
// turbines at the given wind speed. A turbine with a non-empty power curve
// is interpolated against it, otherwise a cubic approximation from the
// nominal power is used. Never fails: missing or empty curve data degrades
// to the fallback or to zero.
func TurbinePower(turbine database.WindTurbineRow, curve types.PowerCurve, windSpeed float64, numTurbines int) float64 {
	if windSpeed <= 0 {
		return 0
	}

	var powerKw float64
	if points := curve.Points(); len(points) > 0 {
		powerKw = interpolateCurve(points, windSpeed)
	} else {
		powerKw = fallbackPower(windSpeed, convert.MwToKw(turbine.NominalPower))
	}

	return powerKw * float64(numTurbines)
}

// interpolateCurve is piecewise-linear interpolation with flat
// extrapolation beyond the first and last points.
func interpolateCurve(points []types.PowerCurvePoint, windSpeed float64) float64 {
	if windSpeed <= points[0].WindSpeed {
		return points[0].PowerKw
	}
	last := points[len(points)-1]
	if windSpeed >= last.WindSpeed {
		return last.PowerKw
	}

	for i := 1; i < len(points); i++ {
		if windSpeed > points[i].WindSpeed {
			continue
		}
		lo, hi := points[i-1], points[i]
		if hi.WindSpeed == lo.WindSpeed {
			return lo.PowerKw
		}
		frac := (windSpeed - lo.WindSpeed) / (hi.WindSpeed - lo.WindSpeed)
		return lo.PowerKw + frac*(hi.PowerKw-lo.PowerKw)
	}

	return last.PowerKw
}

// fallbackPower is a cubic ramp between cut-in and rated speed, flat at
// nominal up to cut-out and zero beyond it.
func fallbackPower(windSpeed, nominalPowerKw float64) float64 {
	switch {
	case windSpeed < cutInSpeed:
		return 0
	case windSpeed < ratedSpeed:
		frac := (windSpeed - cutInSpeed) / (ratedSpeed - cutInSpeed)
		return nominalPowerKw * frac * frac * frac
	case windSpeed <= cutOutSpeed:
		return nominalPowerKw
	default:
		return 0
	}
}
