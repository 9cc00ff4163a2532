package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// GenerationForecastRow is one future-looking forecast record.
type GenerationForecastRow struct {
	ID                   int64
	WindFarmID           int64
	ForecastTime         time.Time
	Generation           float64 // kW
	Granularity          types.Granularity
	WindSpeed            maybe.Maybe[float64]
	WindDirection        maybe.Maybe[float64]
	Temperature          maybe.Maybe[float64]
	WeatherModel         string
	ForecastHorizonHours int
}

// ReplaceForecasts deletes every prior forecast for the farm and inserts the
// new batch in one transaction, so readers never observe a partial replace.
func (d *Database) ReplaceForecasts(ctx context.Context, windFarmID int64, rows []GenerationForecastRow) error {
	return d.replaceForecasts(ctx, windFarmID, rows, `
		DELETE FROM generation_forecast WHERE wind_farm_id = ?`,
		windFarmID)
}

// ReplaceForecastsInRange replaces only forecasts whose time falls within
// [from, to], leaving records outside the range untouched.
func (d *Database) ReplaceForecastsInRange(ctx context.Context, windFarmID int64, from, to time.Time, rows []GenerationForecastRow) error {
	return d.replaceForecasts(ctx, windFarmID, rows, `
		DELETE FROM generation_forecast
		WHERE wind_farm_id = ? AND forecast_time >= ? AND forecast_time <= ?`,
		windFarmID, formatTime(from), formatTime(to))
}

func (d *Database) replaceForecasts(ctx context.Context, windFarmID int64, rows []GenerationForecastRow, deleteStmt string, deleteArgs ...any) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting forecast replace transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, deleteStmt, deleteArgs...)
	if err != nil {
		return fmt.Errorf("deleting prior forecasts for wind farm %d: %w", windFarmID, err)
	}
	if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
		d.logger.Debug("deleted prior forecasts",
			slog.Int64("windFarmId", windFarmID),
			slog.Int64("deleted", deleted))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO generation_forecast (
			wind_farm_id, forecast_time, generation, granularity,
			wind_speed, wind_direction, temperature,
			weather_model, forecast_horizon_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing forecast insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.WindFarmID,
			formatTime(row.ForecastTime),
			row.Generation,
			row.Granularity.String(),
			sqlFromMaybe(row.WindSpeed),
			sqlFromMaybe(row.WindDirection),
			sqlFromMaybe(row.Temperature),
			row.WeatherModel,
			row.ForecastHorizonHours)
		if err != nil {
			return fmt.Errorf("inserting forecast record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing forecast replace: %w", err)
	}

	d.logger.Info("saved forecast records",
		slog.Int64("windFarmId", windFarmID),
		slog.Int("records", len(rows)))
	return nil
}

func (d *Database) GetForecasts(ctx context.Context, windFarmID int64, limit int) ([]GenerationForecastRow, error) {
	if limit < 1 {
		limit = 1000
	}
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, wind_farm_id, forecast_time, generation, granularity,
			wind_speed, wind_direction, temperature, weather_model, forecast_horizon_hours
		FROM generation_forecast
		WHERE wind_farm_id = ?
		ORDER BY forecast_time
		LIMIT ?`, windFarmID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []GenerationForecastRow
	for rows.Next() {
		var row GenerationForecastRow
		var forecastTime, granularity string
		var windSpeed, windDirection, temperature sql.NullFloat64
		var weatherModel sql.NullString
		err := rows.Scan(
			&row.ID,
			&row.WindFarmID,
			&forecastTime,
			&row.Generation,
			&granularity,
			&windSpeed,
			&windDirection,
			&temperature,
			&weatherModel,
			&row.ForecastHorizonHours)
		if err != nil {
			return nil, fmt.Errorf("scanning forecast record: %w", err)
		}
		if row.ForecastTime, err = parseTime(forecastTime); err != nil {
			return nil, err
		}
		row.Granularity = types.ParseGranularity(granularity)
		row.WindSpeed = maybe.SqlNull(windSpeed.Float64, windSpeed.Valid)
		row.WindDirection = maybe.SqlNull(windDirection.Float64, windDirection.Valid)
		row.Temperature = maybe.SqlNull(temperature.Float64, temperature.Valid)
		row.WeatherModel = weatherModel.String
		forecasts = append(forecasts, row)
	}

	return forecasts, rows.Err()
}
