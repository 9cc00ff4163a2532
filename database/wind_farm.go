package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

type WindFarmRow struct {
	ID          int64
	Name        string
	Description maybe.Maybe[string]
}

// WindFarmFleet is one fleet with its turbine, curve and location resolved.
type WindFarmFleet struct {
	ID               int64
	NumberOfTurbines int
	Turbine          WindTurbineRow
	Curve            types.PowerCurve // nil when the turbine has no curve
	Location         LocationRow
}

// WindFarmGraph is the fully resolved farm object graph, loaded once before
// a forecast or synthetic run starts.
type WindFarmGraph struct {
	Farm   WindFarmRow
	Fleets []WindFarmFleet
}

// Locations returns the distinct fleet locations keyed by location id.
func (g *WindFarmGraph) Locations() map[int64]LocationRow {
	locations := make(map[int64]LocationRow)
	for _, fleet := range g.Fleets {
		if _, ok := locations[fleet.Location.ID]; !ok {
			locations[fleet.Location.ID] = fleet.Location
		}
	}
	return locations
}

// CapacityMw is the farm's aggregate nameplate capacity.
func (g *WindFarmGraph) CapacityMw() float64 {
	var capacity float64
	for _, fleet := range g.Fleets {
		capacity += float64(fleet.NumberOfTurbines) * fleet.Turbine.NominalPower
	}
	return capacity
}

func (d *Database) SaveWindFarm(ctx context.Context, row WindFarmRow) (int64, error) {
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO wind_farm (name, description) VALUES (?, ?)`,
		row.Name, sqlFromMaybe(row.Description))
	if err != nil {
		return 0, fmt.Errorf("saving wind farm: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) GetWindFarm(ctx context.Context, id int64) (WindFarmRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT id, name, description FROM wind_farm WHERE id = ?`, id)

	var farm WindFarmRow
	var description sql.NullString
	if err := row.Scan(&farm.ID, &farm.Name, &description); err != nil {
		return WindFarmRow{}, fmt.Errorf("fetching wind farm %d: %w", id, err)
	}
	farm.Description = maybe.SqlNull(description.String, description.Valid)
	return farm, nil
}

func (d *Database) ListWindFarms(ctx context.Context) ([]WindFarmRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, name, description FROM wind_farm ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetching wind farms: %w", err)
	}
	defer rows.Close()

	var farms []WindFarmRow
	for rows.Next() {
		var farm WindFarmRow
		var description sql.NullString
		if err := rows.Scan(&farm.ID, &farm.Name, &description); err != nil {
			return nil, err
		}
		farm.Description = maybe.SqlNull(description.String, description.Valid)
		farms = append(farms, farm)
	}

	return farms, rows.Err()
}

func (d *Database) DeleteWindFarm(ctx context.Context, id int64) error {
	if _, err := d.write.ExecContext(ctx, `DELETE FROM wind_farm WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting wind farm %d: %w", id, err)
	}
	return nil
}

// GetWindFarmGraph eagerly loads a farm with its fleets, turbines, power
// curves and locations. Returns sql.ErrNoRows (wrapped) when the farm does
// not exist.
func (d *Database) GetWindFarmGraph(ctx context.Context, id int64) (*WindFarmGraph, error) {
	farm, err := d.GetWindFarm(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT
			f.id,
			f.number_of_turbines,
			t.id, t.turbine_type, t.hub_height, t.nominal_power, t.power_curve_id,
			pc.curve,
			l.id, l.latitude, l.longitude
		FROM wind_turbine_fleet f
		JOIN wind_turbine t ON t.id = f.wind_turbine_id
		JOIN location l ON l.id = f.location_id
		LEFT JOIN power_curve pc ON pc.id = t.power_curve_id
		WHERE f.wind_farm_id = ?
		ORDER BY f.id`, id)
	if err != nil {
		return nil, fmt.Errorf("fetching fleets for wind farm %d: %w", id, err)
	}
	defer rows.Close()

	graph := &WindFarmGraph{Farm: farm}
	for rows.Next() {
		var fleet WindFarmFleet
		var turbineType sql.NullString
		var curveID sql.NullInt64
		var curve sql.NullString
		err := rows.Scan(
			&fleet.ID,
			&fleet.NumberOfTurbines,
			&fleet.Turbine.ID,
			&turbineType,
			&fleet.Turbine.HubHeight,
			&fleet.Turbine.NominalPower,
			&curveID,
			&curve,
			&fleet.Location.ID,
			&fleet.Location.Latitude,
			&fleet.Location.Longitude)
		if err != nil {
			return nil, fmt.Errorf("scanning fleet for wind farm %d: %w", id, err)
		}
		fleet.Turbine.TurbineType = maybe.SqlNull(turbineType.String, turbineType.Valid)
		fleet.Turbine.PowerCurveID = maybe.SqlNull(curveID.Int64, curveID.Valid)
		if curve.Valid {
			if err := json.Unmarshal([]byte(curve.String), &fleet.Curve); err != nil {
				return nil, fmt.Errorf("unmarshaling power curve for fleet %d: %w", fleet.ID, err)
			}
		}
		graph.Fleets = append(graph.Fleets, fleet)
	}

	return graph, rows.Err()
}
