package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// WindTurbineRow is an immutable turbine template, reusable across fleets.
type WindTurbineRow struct {
	ID           int64
	TurbineType  maybe.Maybe[string]
	HubHeight    float64 // meters
	NominalPower float64 // MW
	PowerCurveID maybe.Maybe[int64]
}

type PowerCurveRow struct {
	ID    int64
	Name  maybe.Maybe[string]
	Curve types.PowerCurve
}

func (d *Database) SavePowerCurve(ctx context.Context, row PowerCurveRow) (int64, error) {
	curve, err := json.Marshal(row.Curve)
	if err != nil {
		return 0, fmt.Errorf("marshaling power curve: %w", err)
	}
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO power_curve (name, curve) VALUES (?, ?)`,
		sqlFromMaybe(row.Name), string(curve))
	if err != nil {
		return 0, fmt.Errorf("saving power curve: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) GetPowerCurve(ctx context.Context, id int64) (PowerCurveRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT id, name, curve FROM power_curve WHERE id = ?`, id)

	var pc PowerCurveRow
	var name sql.NullString
	var curve string
	if err := row.Scan(&pc.ID, &name, &curve); err != nil {
		return PowerCurveRow{}, fmt.Errorf("fetching power curve %d: %w", id, err)
	}
	pc.Name = maybe.SqlNull(name.String, name.Valid)
	if err := json.Unmarshal([]byte(curve), &pc.Curve); err != nil {
		return PowerCurveRow{}, fmt.Errorf("unmarshaling power curve %d: %w", id, err)
	}
	return pc, nil
}

func (d *Database) ListPowerCurves(ctx context.Context) ([]PowerCurveRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, name, curve FROM power_curve ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetching power curves: %w", err)
	}
	defer rows.Close()

	var curves []PowerCurveRow
	for rows.Next() {
		var pc PowerCurveRow
		var name sql.NullString
		var curve string
		if err := rows.Scan(&pc.ID, &name, &curve); err != nil {
			return nil, err
		}
		pc.Name = maybe.SqlNull(name.String, name.Valid)
		if err := json.Unmarshal([]byte(curve), &pc.Curve); err != nil {
			return nil, fmt.Errorf("unmarshaling power curve %d: %w", pc.ID, err)
		}
		curves = append(curves, pc)
	}

	return curves, rows.Err()
}

func (d *Database) SaveWindTurbine(ctx context.Context, row WindTurbineRow) (int64, error) {
	res, err := d.write.ExecContext(ctx, `
		INSERT INTO wind_turbine (turbine_type, hub_height, nominal_power, power_curve_id)
		VALUES (?, ?, ?, ?)`,
		sqlFromMaybe(row.TurbineType),
		row.HubHeight,
		row.NominalPower,
		sqlFromMaybe(row.PowerCurveID))
	if err != nil {
		return 0, fmt.Errorf("saving wind turbine: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) ListWindTurbines(ctx context.Context) ([]WindTurbineRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT id, turbine_type, hub_height, nominal_power, power_curve_id
		FROM wind_turbine ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetching wind turbines: %w", err)
	}
	defer rows.Close()

	var turbines []WindTurbineRow
	for rows.Next() {
		row, err := scanWindTurbine(rows)
		if err != nil {
			return nil, err
		}
		turbines = append(turbines, row)
	}

	return turbines, rows.Err()
}

func (d *Database) GetWindTurbine(ctx context.Context, id int64) (WindTurbineRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT id, turbine_type, hub_height, nominal_power, power_curve_id
		FROM wind_turbine WHERE id = ?`, id)

	var t WindTurbineRow
	var turbineType sql.NullString
	var curveID sql.NullInt64
	if err := row.Scan(&t.ID, &turbineType, &t.HubHeight, &t.NominalPower, &curveID); err != nil {
		return WindTurbineRow{}, fmt.Errorf("fetching wind turbine %d: %w", id, err)
	}
	t.TurbineType = maybe.SqlNull(turbineType.String, turbineType.Valid)
	t.PowerCurveID = maybe.SqlNull(curveID.Int64, curveID.Valid)
	return t, nil
}

func scanWindTurbine(rows *sql.Rows) (WindTurbineRow, error) {
	var t WindTurbineRow
	var turbineType sql.NullString
	var curveID sql.NullInt64
	if err := rows.Scan(&t.ID, &turbineType, &t.HubHeight, &t.NominalPower, &curveID); err != nil {
		return WindTurbineRow{}, err
	}
	t.TurbineType = maybe.SqlNull(turbineType.String, turbineType.Valid)
	t.PowerCurveID = maybe.SqlNull(curveID.Int64, curveID.Valid)
	return t, nil
}

func sqlFromMaybe[T any](m maybe.Maybe[T]) any {
	if !m.IsValid() {
		return nil
	}
	return m.Value()
}
