package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/scada"
)

// NewActualsTask persists the live telemetry snapshot of every reporting
// farm as an actual (non-synthetic) generation record.
func NewActualsTask(logger *slog.Logger, db *database.Database, data *scada.InMemData, cnfg config.AppConfigForecast) func() {
	return func() {
		logger.Debug("running actuals task...")

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		var saved int
		for _, farmID := range data.FarmIDs() {
			snap, ok := data.Snapshot(farmID)
			if !ok {
				continue
			}

			row := database.GenerationRecordRow{
				WindFarmID:    farmID,
				Timestamp:     time.Now().UTC().Truncate(time.Minute),
				Generation:    snap.PowerKw,
				Granularity:   cnfg.GetGranularity(),
				FleetStatuses: snap.Statuses,
				IsSynthetic:   false,
				WindSpeed:     snap.WindSpeed,
				WindDirection: snap.WindDirection,
				Temperature:   snap.Temperature,
			}
			if err := db.SaveGenerationRecord(ctx, row); err != nil {
				logger.Error("actuals task error",
					slog.Int64("windFarmId", farmID),
					slog.Any("error", err))
				continue
			}
			saved++
		}

		logger.Info("actuals task done", slog.Int("farms", saved))
	}
}
