package turbinelib

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// Entry is one turbine template with its power curve, either from a local
// catalog file or from the OEDB turbine library.
type Entry struct {
	TurbineType    string           `json:"turbineType"`
	HubHeight      float64          `json:"hubHeight"`
	NominalPowerMw float64          `json:"nominalPower"`
	Curve          types.PowerCurve `json:"powerCurve"`
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

const (
	defaultHubHeight      = 100.0
	defaultNominalPowerMw = 1.0
)

// loadCatalogFile reads a JSON array of entries.
func loadCatalogFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading turbine catalog %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing turbine catalog %s: %w", path, err)
	}
	return entries, nil
}

// Import persists entries as power curve + turbine pairs. Turbine types
// already in the database are skipped, as are entries without a curve;
// existing data is never deleted.
func Import(ctx context.Context, db *database.Database, entries []Entry) (ImportResult, error) {
	existing, err := db.ListWindTurbines(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		if t.TurbineType.IsValid() {
			seen[t.TurbineType.Value()] = true
		}
	}

	var result ImportResult
	for _, entry := range entries {
		turbineType := entry.TurbineType
		if turbineType == "" {
			turbineType = "Unknown"
		}
		if len(entry.Curve) == 0 || seen[turbineType] {
			result.Skipped++
			continue
		}

		curveID, err := db.SavePowerCurve(ctx, database.PowerCurveRow{
			Name:  maybe.Some(turbineType),
			Curve: entry.Curve,
		})
		if err != nil {
			return result, err
		}

		turbine := database.WindTurbineRow{
			TurbineType:  maybe.Some(turbineType),
			HubHeight:    entry.HubHeight,
			NominalPower: entry.NominalPowerMw,
			PowerCurveID: maybe.Some(curveID),
		}
		if turbine.HubHeight <= 0 {
			turbine.HubHeight = defaultHubHeight
		}
		if turbine.NominalPower <= 0 {
			turbine.NominalPower = defaultNominalPowerMw
		}
		if _, err := db.SaveWindTurbine(ctx, turbine); err != nil {
			return result, err
		}

		seen[turbineType] = true
		result.Imported++
	}

	return result, nil
}
