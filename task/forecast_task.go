package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/forecast"
)

// NewForecastTask refreshes the forecast of every farm on schedule. One
// failing farm does not stop the others.
func NewForecastTask(logger *slog.Logger, db *database.Database, svc *forecast.Service, cnfg config.AppConfigForecast) func() {
	return func() {
		logger.Debug("running forecast refresh task...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		farms, err := db.ListWindFarms(ctx)
		if err != nil {
			logger.Error("forecast task error", slog.Any("error", err))
			return
		}

		var refreshed int
		for _, farm := range farms {
			summary, err := svc.GenerateForecast(ctx, farm.ID,
				cnfg.GetHoursAhead(), cnfg.GetGranularity(), cnfg.GetWeatherModel())
			if err != nil {
				logger.Error("forecast task error",
					slog.Int64("windFarmId", farm.ID),
					slog.Any("error", err))
				continue
			}
			refreshed++
			logger.Debug("forecast refreshed",
				slog.Int64("windFarmId", farm.ID),
				slog.Int("records", summary.RecordsCreated))
		}

		logger.Info("forecast refresh task done",
			slog.Int("farms", len(farms)),
			slog.Int("refreshed", refreshed))
	}
}
