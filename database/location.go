package database

import (
	"context"
	"fmt"
)

type LocationRow struct {
	ID        int64
	Latitude  float64
	Longitude float64
}

func (d *Database) SaveLocation(ctx context.Context, row LocationRow) (int64, error) {
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO location (latitude, longitude)
		VALUES (?, ?)`,
		row.Latitude, row.Longitude)
	if err != nil {
		return 0, fmt.Errorf("saving location: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) GetLocation(ctx context.Context, id int64) (LocationRow, error) {
	var row LocationRow
	err := d.read.QueryRowContext(ctx, `
		SELECT id, latitude, longitude FROM location WHERE id = ?`, id).
		Scan(&row.ID, &row.Latitude, &row.Longitude)
	if err != nil {
		return LocationRow{}, fmt.Errorf("fetching location %d: %w", id, err)
	}
	return row, nil
}

func (d *Database) ListLocations(ctx context.Context) ([]LocationRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, latitude, longitude FROM location ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetching locations: %w", err)
	}
	defer rows.Close()

	var locations []LocationRow
	for rows.Next() {
		var row LocationRow
		if err := rows.Scan(&row.ID, &row.Latitude, &row.Longitude); err != nil {
			return nil, err
		}
		locations = append(locations, row)
	}

	return locations, rows.Err()
}
