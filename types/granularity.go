package types

import "time"

// Granularity is the time spacing of output records.
type Granularity string

const (
	Granularity1Min  Granularity = "1min"
	Granularity5Min  Granularity = "5min"
	Granularity15Min Granularity = "15min"
	Granularity30Min Granularity = "30min"
	Granularity60Min Granularity = "60min"
)

func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Granularity1Min, Granularity5Min, Granularity15Min, Granularity30Min:
		return Granularity(s)
	default:
		return Granularity60Min
	}
}

// ResolutionMinutes maps an output granularity to the resolution requested
// from the weather provider. Sub-quarter-hour output uses the provider's
// 15-minute data; 30-minute output is approximated by the provider from
// hourly data; everything else is hourly.
func (g Granularity) ResolutionMinutes() int {
	switch g {
	case Granularity1Min, Granularity5Min, Granularity15Min:
		return 15
	case Granularity30Min:
		return 30
	default:
		return 60
	}
}

func (g Granularity) Duration() time.Duration {
	switch g {
	case Granularity1Min:
		return time.Minute
	case Granularity5Min:
		return 5 * time.Minute
	case Granularity15Min:
		return 15 * time.Minute
	case Granularity30Min:
		return 30 * time.Minute
	default:
		return time.Hour
	}
}

func (g Granularity) String() string {
	return string(g)
}
