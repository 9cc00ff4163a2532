package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/types"
)

// NewWeatherHandler is a thin passthrough to the weather provider, useful
// for checking what a farm location would be forecast from.
func NewWeatherHandler(logger *slog.Logger, provider types.WeatherProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, latOk := floatParam(r.URL, "lat")
		lon, lonOk := floatParam(r.URL, "lon")
		if !latOk || !lonOk {
			writeError(logger, w, http.StatusBadRequest, errors.New("lat and lon are required"))
			return
		}

		granularity := types.ParseGranularity(r.URL.Query().Get("granularity"))
		records, err := provider.Fetch(r.Context(), types.WeatherQuery{
			Latitude:          lat,
			Longitude:         lon,
			PastDays:          intOrDefault(r.URL, "past_days", 0),
			ForecastDays:      intOrDefault(r.URL, "forecast_days", 2),
			ResolutionMinutes: granularity.ResolutionMinutes(),
			Model:             r.URL.Query().Get("model"),
		})
		if err != nil {
			writeError(logger, w, http.StatusBadGateway, err)
			return
		}

		out := make([]weatherRecordJSON, 0, len(records))
		for _, rec := range records {
			out = append(out, toWeatherRecordJSON(rec))
		}
		writeJSON(logger, w, http.StatusOK, out)
	}
}
