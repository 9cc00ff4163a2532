package types

import (
	"context"
	"time"

	"github.com/angas/windfarm-go/types/maybe"
)

// WeatherRecord is one timestamped sample from a weather provider. Any
// covariate may be absent (model or sensor gap).
type WeatherRecord struct {
	Time              time.Time
	Temperature       maybe.Maybe[float64] // Air temperature at 2m (°C)
	Temperature80m    maybe.Maybe[float64]
	WindSpeed         maybe.Maybe[float64] // Wind speed at 10m (m/s)
	WindSpeed80m      maybe.Maybe[float64]
	WindSpeed100m     maybe.Maybe[float64]
	WindDirection     maybe.Maybe[float64] // Wind direction at 10m (°)
	WindDirection80m  maybe.Maybe[float64]
	WindDirection100m maybe.Maybe[float64]
	Pressure          maybe.Maybe[float64] // Mean sea level pressure (hPa)
	Precipitation     maybe.Maybe[float64] // (mm/h)
	CloudCover        maybe.Maybe[float64] // (%)
}

type WeatherQuery struct {
	Latitude          float64
	Longitude         float64
	PastDays          int
	ForecastDays      int
	ResolutionMinutes int // 15, 30 or 60
	Model             string
}

// WeatherProvider fetches an ordered weather series for one location.
// An empty result means "no data here", not an error.
type WeatherProvider interface {
	Fetch(ctx context.Context, q WeatherQuery) ([]WeatherRecord, error)
}
