package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/forecast"
	"github.com/angas/windfarm-go/types"
)

type forecastRequest struct {
	WindFarmID    int64  `json:"windFarmId"`
	ForecastHours int    `json:"forecastHours"`
	Granularity   string `json:"granularity"`
	WeatherModel  string `json:"weatherModel"`
}

// NewForecastHandler triggers a forward forecast run. Unset request fields
// fall back to the configured defaults. Completed runs are pushed to the
// websocket hub so dashboards update without polling.
func NewForecastHandler(logger *slog.Logger, cnfg config.AppConfigForecast, svc *forecast.Service, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}

		hours := req.ForecastHours
		if hours == 0 {
			hours = cnfg.GetHoursAhead()
		}
		model := req.WeatherModel
		if model == "" {
			model = cnfg.GetWeatherModel()
		}

		summary, err := svc.GenerateForecast(r.Context(), req.WindFarmID, hours, granularityOrDefault(req.Granularity, cnfg), model)
		if err != nil {
			writeError(logger, w, statusForError(err), err)
			return
		}

		broadcastJSON(logger, hub, "runCompleted", summary)
		writeJSON(logger, w, http.StatusCreated, summary)
	}
}

type historicalForecastRequest struct {
	WindFarmID  int64  `json:"windFarmId"`
	DaysBack    int    `json:"daysBack"`
	Granularity string `json:"granularity"`
}

func NewHistoricalForecastHandler(logger *slog.Logger, cnfg config.AppConfigForecast, svc *forecast.Service, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req historicalForecastRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}

		summary, err := svc.GenerateHistoricalForecast(r.Context(), req.WindFarmID, req.DaysBack, granularityOrDefault(req.Granularity, cnfg))
		if err != nil {
			writeError(logger, w, statusForError(err), err)
			return
		}

		broadcastJSON(logger, hub, "runCompleted", summary)
		writeJSON(logger, w, http.StatusCreated, summary)
	}
}

type syntheticRequest struct {
	WindFarmID          int64    `json:"windFarmId"`
	DaysBack            int      `json:"daysBack"`
	Granularity         string   `json:"granularity"`
	AddNoise            *bool    `json:"addNoise"`
	NoiseStdPercent     *float64 `json:"noiseStdPercent"`
	RandomOutages       *bool    `json:"randomOutages"`
	OutageProbability   *float64 `json:"outageProbability"`
	OutageDurationHours *int     `json:"outageDurationHours"`
}

// NewSyntheticHandler backfills synthetic generation records. Noise and
// outage knobs default to the configured values when omitted.
func NewSyntheticHandler(logger *slog.Logger, fcCnfg config.AppConfigForecast, synCnfg config.AppConfigSynthetic, svc *forecast.SyntheticService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syntheticRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(logger, w, http.StatusBadRequest, err)
			return
		}

		cfg := forecast.SyntheticConfig{
			AddNoise:            synCnfg.GetAddNoise(),
			NoiseStdPercent:     synCnfg.GetNoiseStdPercent(),
			RandomOutages:       synCnfg.GetRandomOutages(),
			OutageProbability:   synCnfg.GetOutageProbability(),
			OutageDurationHours: synCnfg.GetOutageDurationHours(),
		}
		if req.AddNoise != nil {
			cfg.AddNoise = *req.AddNoise
		}
		if req.NoiseStdPercent != nil {
			cfg.NoiseStdPercent = *req.NoiseStdPercent
		}
		if req.RandomOutages != nil {
			cfg.RandomOutages = *req.RandomOutages
		}
		if req.OutageProbability != nil {
			cfg.OutageProbability = *req.OutageProbability
		}
		if req.OutageDurationHours != nil {
			cfg.OutageDurationHours = *req.OutageDurationHours
		}

		summary, err := svc.GenerateForWindFarm(r.Context(), req.WindFarmID, req.DaysBack, granularityOrDefault(req.Granularity, fcCnfg), cfg)
		if err != nil {
			writeError(logger, w, statusForError(err), err)
			return
		}

		writeJSON(logger, w, http.StatusCreated, summary)
	}
}

func granularityOrDefault(s string, cnfg config.AppConfigForecast) types.Granularity {
	if s == "" {
		return cnfg.GetGranularity()
	}
	return types.ParseGranularity(s)
}

// statusForError maps forecast core errors onto HTTP statuses. The core
// reports caller mistakes in plain prose, so this is a string match.
func statusForError(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "must be between"),
		strings.Contains(msg, "has no turbine fleets"),
		strings.Contains(msg, "has no fleet locations"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func broadcastJSON(logger *slog.Logger, hub *Hub, msgType string, data any) {
	buf, err := json.Marshal(map[string]any{"type": msgType, "data": data})
	if err != nil {
		logger.Error("broadcast encoding failed", slog.Any("error", err))
		return
	}
	hub.Broadcast <- buf
}
