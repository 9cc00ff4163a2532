package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/angas/windfarm-go/types/maybe"
)

const (
	RunStatusRunning   = "running"
	RunStatusSuccess   = "success"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Error messages on failed runs are truncated to this length.
const maxErrorMessageLen = 1000

type ForecastRunRow struct {
	ID             int64
	WindFarmID     int64
	StartedAt      time.Time
	CompletedAt    maybe.Maybe[time.Time]
	Status         string
	RecordsCreated int
	ForecastHours  int
	WeatherModel   maybe.Maybe[string]
	ErrorMessage   maybe.Maybe[string]
}

// CreateForecastRun inserts a run in the "running" state and returns its id.
func (d *Database) CreateForecastRun(ctx context.Context, windFarmID int64, forecastHours int, weatherModel string) (int64, error) {
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO forecast_run (wind_farm_id, started_at, status, forecast_hours, weather_model)
		VALUES (?, ?, ?, ?, ?)`,
		windFarmID, formatTime(time.Now()), RunStatusRunning, forecastHours, weatherModel)
	if err != nil {
		return 0, fmt.Errorf("creating forecast run: %w", err)
	}
	return res.LastInsertId()
}

// CompleteForecastRun stamps the terminal state of a run. The error message
// is truncated, completion time is always set.
func (d *Database) CompleteForecastRun(ctx context.Context, id int64, status string, recordsCreated int, errorMessage string) error {
	if len(errorMessage) > maxErrorMessageLen {
		errorMessage = errorMessage[:maxErrorMessageLen]
	}
	var errMsg any
	if errorMessage != "" {
		errMsg = errorMessage
	}
	_, err := d.write.ExecContext(ctx, `
		UPDATE forecast_run
		SET status = ?, records_created = ?, error_message = ?, completed_at = ?
		WHERE id = ?`,
		status, recordsCreated, errMsg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("completing forecast run %d: %w", id, err)
	}
	return nil
}

func (d *Database) GetForecastRun(ctx context.Context, id int64) (ForecastRunRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT id, wind_farm_id, started_at, completed_at, status,
			records_created, forecast_hours, weather_model, error_message
		FROM forecast_run WHERE id = ?`, id)
	return scanForecastRun(row.Scan)
}

func (d *Database) ListForecastRuns(ctx context.Context, windFarmID int64, limit int) ([]ForecastRunRow, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, wind_farm_id, started_at, completed_at, status,
			records_created, forecast_hours, weather_model, error_message
		FROM forecast_run
		WHERE wind_farm_id = ?
		ORDER BY id DESC
		LIMIT ?`, windFarmID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast runs: %w", err)
	}
	defer rows.Close()

	var runs []ForecastRunRow
	for rows.Next() {
		run, err := scanForecastRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// PurgeForecastRuns removes terminal runs older than the retention window.
func (d *Database) PurgeForecastRuns(ctx context.Context, retentionDays int) error {
	before := formatTime(time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour))
	_, err := d.write.ExecContext(ctx, `
		DELETE FROM forecast_run WHERE status != ? AND started_at < ?`,
		RunStatusRunning, before)
	if err != nil {
		return fmt.Errorf("purging forecast runs: %w", err)
	}
	return nil
}

func scanForecastRun(scan func(...any) error) (ForecastRunRow, error) {
	var run ForecastRunRow
	var startedAt string
	var completedAt, weatherModel, errorMessage sql.NullString
	err := scan(
		&run.ID,
		&run.WindFarmID,
		&startedAt,
		&completedAt,
		&run.Status,
		&run.RecordsCreated,
		&run.ForecastHours,
		&weatherModel,
		&errorMessage)
	if err != nil {
		return ForecastRunRow{}, fmt.Errorf("scanning forecast run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return ForecastRunRow{}, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return ForecastRunRow{}, err
		}
		run.CompletedAt = maybe.Some(t)
	}
	run.WeatherModel = maybe.SqlNull(weatherModel.String, weatherModel.Valid)
	run.ErrorMessage = maybe.SqlNull(errorMessage.String, errorMessage.Valid)
	return run, nil
}
