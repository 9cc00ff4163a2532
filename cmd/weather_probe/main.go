package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/angas/windfarm-go/openmeteo"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

func main() {
	lat := flag.Float64("lat", 57.5, "latitude")
	lon := flag.Float64("lon", 11.9, "longitude")
	days := flag.Int("days", 2, "forecast days")
	flag.Parse()

	client := openmeteo.New(30 * time.Second)
	records, err := client.Fetch(context.Background(), types.WeatherQuery{
		Latitude:          *lat,
		Longitude:         *lon,
		ForecastDays:      *days,
		ResolutionMinutes: 60,
	})
	if err != nil {
		panic(err)
	}

	for _, r := range records {
		fmt.Printf("Time: %s, Wind@100m: %s m/s, Dir: %s°, Temp: %s°C\n",
			r.Time.Format(time.RFC3339),
			fmtMaybe(r.WindSpeed100m),
			fmtMaybe(r.WindDirection100m),
			fmtMaybe(r.Temperature))
	}
}

func fmtMaybe(m maybe.Maybe[float64]) string {
	if !m.IsValid() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", m.Value())
}
