package database

import (
	"context"
	"fmt"
)

// FleetRow links a turbine template and a location to a wind farm.
type FleetRow struct {
	ID               int64
	WindFarmID       int64
	WindTurbineID    int64
	LocationID       int64
	NumberOfTurbines int
}

func (d *Database) SaveFleet(ctx context.Context, row FleetRow) (int64, error) {
	if row.NumberOfTurbines < 1 {
		return 0, fmt.Errorf("fleet must have at least one turbine, got %d", row.NumberOfTurbines)
	}
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO wind_turbine_fleet (wind_farm_id, wind_turbine_id, location_id, number_of_turbines)
		VALUES (?, ?, ?, ?)`,
		row.WindFarmID, row.WindTurbineID, row.LocationID, row.NumberOfTurbines)
	if err != nil {
		return 0, fmt.Errorf("saving fleet: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) ListFleets(ctx context.Context, windFarmID int64) ([]FleetRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, wind_farm_id, wind_turbine_id, location_id, number_of_turbines
		FROM wind_turbine_fleet
		WHERE wind_farm_id = ?
		ORDER BY id`, windFarmID)
	if err != nil {
		return nil, fmt.Errorf("fetching fleets: %w", err)
	}
	defer rows.Close()

	var fleets []FleetRow
	for rows.Next() {
		var row FleetRow
		err := rows.Scan(&row.ID, &row.WindFarmID, &row.WindTurbineID, &row.LocationID, &row.NumberOfTurbines)
		if err != nil {
			return nil, err
		}
		fleets = append(fleets, row)
	}

	return fleets, rows.Err()
}

func (d *Database) DeleteFleet(ctx context.Context, id int64) error {
	if _, err := d.write.ExecContext(ctx, `DELETE FROM wind_turbine_fleet WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting fleet %d: %w", id, err)
	}
	return nil
}
