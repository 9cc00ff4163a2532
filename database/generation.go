package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// GenerationRecordRow is an actual or synthetic generation record.
type GenerationRecordRow struct {
	ID            int64
	WindFarmID    int64
	Timestamp     time.Time
	Generation    float64 // kW
	Granularity   types.Granularity
	FleetStatuses types.FleetStatusMap
	IsSynthetic   bool
	WindSpeed     maybe.Maybe[float64]
	WindDirection maybe.Maybe[float64]
	Temperature   maybe.Maybe[float64]
}

// SaveGenerationRecord inserts a single record, used for actuals ingestion.
func (d *Database) SaveGenerationRecord(ctx context.Context, row GenerationRecordRow) error {
	statuses, err := json.Marshal(row.FleetStatuses)
	if err != nil {
		return fmt.Errorf("marshaling fleet statuses: %w", err)
	}
	_, err = d.write.ExecContext(ctx, `
		INSERT INTO generation_record (
			wind_farm_id, timestamp, generation, granularity,
			fleet_statuses, is_synthetic, wind_speed, wind_direction, temperature
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.WindFarmID,
		formatTime(row.Timestamp),
		row.Generation,
		row.Granularity.String(),
		string(statuses),
		row.IsSynthetic,
		sqlFromMaybe(row.WindSpeed),
		sqlFromMaybe(row.WindDirection),
		sqlFromMaybe(row.Temperature))
	if err != nil {
		return fmt.Errorf("saving generation record: %w", err)
	}
	return nil
}

// ReplaceSyntheticGeneration deletes synthetic records in [from, to] and
// inserts the new batch in one transaction. Actual (non-synthetic) records
// are never touched by this path.
func (d *Database) ReplaceSyntheticGeneration(ctx context.Context, windFarmID int64, from, to time.Time, rows []GenerationRecordRow) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting synthetic replace transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM generation_record
		WHERE wind_farm_id = ? AND is_synthetic = 1 AND timestamp >= ? AND timestamp <= ?`,
		windFarmID, formatTime(from), formatTime(to))
	if err != nil {
		return fmt.Errorf("deleting prior synthetic records for wind farm %d: %w", windFarmID, err)
	}
	if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
		d.logger.Debug("deleted prior synthetic records",
			slog.Int64("windFarmId", windFarmID),
			slog.Int64("deleted", deleted))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO generation_record (
			wind_farm_id, timestamp, generation, granularity,
			fleet_statuses, is_synthetic, wind_speed, wind_direction, temperature
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing generation record insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		statuses, err := json.Marshal(row.FleetStatuses)
		if err != nil {
			return fmt.Errorf("marshaling fleet statuses: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			row.WindFarmID,
			formatTime(row.Timestamp),
			row.Generation,
			row.Granularity.String(),
			string(statuses),
			row.IsSynthetic,
			sqlFromMaybe(row.WindSpeed),
			sqlFromMaybe(row.WindDirection),
			sqlFromMaybe(row.Temperature))
		if err != nil {
			return fmt.Errorf("inserting generation record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing synthetic replace: %w", err)
	}

	d.logger.Info("saved synthetic generation records",
		slog.Int64("windFarmId", windFarmID),
		slog.Int("records", len(rows)))
	return nil
}

func (d *Database) GetGenerationRecords(ctx context.Context, windFarmID int64, limit int) ([]GenerationRecordRow, error) {
	if limit < 1 {
		limit = 1000
	}
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, wind_farm_id, timestamp, generation, granularity,
			fleet_statuses, is_synthetic, wind_speed, wind_direction, temperature
		FROM generation_record
		WHERE wind_farm_id = ?
		ORDER BY timestamp
		LIMIT ?`, windFarmID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching generation records: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecordRow
	for rows.Next() {
		var row GenerationRecordRow
		var timestamp, granularity, statuses string
		var windSpeed, windDirection, temperature sql.NullFloat64
		err := rows.Scan(
			&row.ID,
			&row.WindFarmID,
			&timestamp,
			&row.Generation,
			&granularity,
			&statuses,
			&row.IsSynthetic,
			&windSpeed,
			&windDirection,
			&temperature)
		if err != nil {
			return nil, fmt.Errorf("scanning generation record: %w", err)
		}
		if row.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		row.Granularity = types.ParseGranularity(granularity)
		if err := json.Unmarshal([]byte(statuses), &row.FleetStatuses); err != nil {
			return nil, fmt.Errorf("unmarshaling fleet statuses: %w", err)
		}
		row.WindSpeed = maybe.SqlNull(windSpeed.Float64, windSpeed.Valid)
		row.WindDirection = maybe.SqlNull(windDirection.Float64, windDirection.Valid)
		row.Temperature = maybe.SqlNull(temperature.Float64, temperature.Valid)
		records = append(records, row)
	}

	return records, rows.Err()
}
