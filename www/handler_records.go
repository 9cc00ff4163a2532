package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/angas/windfarm-go/database"
)

const defaultListLimit = 500

func NewForecastListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID, ok := int64Param(r.URL, "farm_id")
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("farm_id is required"))
			return
		}

		rows, err := db.GetForecasts(r.Context(), farmID, intOrDefault(r.URL, "limit", defaultListLimit))
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		forecasts := make([]forecastJSON, 0, len(rows))
		for _, row := range rows {
			forecasts = append(forecasts, toForecastJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, forecasts)
	}
}

func NewGenerationListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID, ok := int64Param(r.URL, "farm_id")
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("farm_id is required"))
			return
		}

		rows, err := db.GetGenerationRecords(r.Context(), farmID, intOrDefault(r.URL, "limit", defaultListLimit))
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		records := make([]generationJSON, 0, len(rows))
		for _, row := range rows {
			records = append(records, toGenerationJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, records)
	}
}

func NewRunListHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID, ok := int64Param(r.URL, "farm_id")
		if !ok {
			writeError(logger, w, http.StatusBadRequest, errors.New("farm_id is required"))
			return
		}

		rows, err := db.ListForecastRuns(r.Context(), farmID, intOrDefault(r.URL, "limit", 50))
		if err != nil {
			writeError(logger, w, http.StatusInternalServerError, err)
			return
		}
		runs := make([]forecastRunJSON, 0, len(rows))
		for _, row := range rows {
			runs = append(runs, toForecastRunJSON(row))
		}
		writeJSON(logger, w, http.StatusOK, runs)
	}
}
