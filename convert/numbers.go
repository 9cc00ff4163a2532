package convert

import (
	"math"
)

func OneDecimal(number float64) float64 {
	return RoundFloat64(number, 1)
}

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(int(decimals))) / math.Pow10(int(decimals))
}

func MwToKw(mw float64) float64 {
	return mw * 1000.0
}

// KwhFromKw converts an average power over one record interval into energy.
func KwhFromKw(kw float64, intervalMinutes int) float64 {
	return kw * float64(intervalMinutes) / 60.0
}
