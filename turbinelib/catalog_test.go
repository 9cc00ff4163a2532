package turbinelib

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
)

const catalogJSON = `[
	{
		"turbineType": "Test/2000",
		"hubHeight": 98,
		"nominalPower": 2.0,
		"powerCurve": {"3": 0, "12": 2000, "25": 2000}
	},
	{
		"turbineType": "Curveless/500",
		"nominalPower": 0.5,
		"powerCurve": {}
	}
]`

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLibraryLoadsCatalogDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "turbines.json", catalogJSON)

	lib, err := NewLibrary(dir)
	require.NoError(t, err)
	defer lib.Close()

	entries := lib.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Test/2000", entries[0].TurbineType)
	assert.InDelta(t, 98, entries[0].HubHeight, 1e-9)
	assert.Len(t, entries[0].Curve.Points(), 3)
}

func TestLibraryReloadPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "a.json", `[{"turbineType": "A", "powerCurve": {"3": 0}}]`)

	lib, err := NewLibrary(dir)
	require.NoError(t, err)
	defer lib.Close()
	require.Len(t, lib.Entries(), 1)

	writeCatalog(t, dir, "b.json", `[{"turbineType": "B", "powerCurve": {"3": 0}}]`)
	require.NoError(t, lib.Reload())
	assert.Len(t, lib.Entries(), 2)
}

func TestLibraryBrokenFileKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "a.json", `[{"turbineType": "A", "powerCurve": {"3": 0}}]`)

	lib, err := NewLibrary(dir)
	require.NoError(t, err)
	defer lib.Close()

	writeCatalog(t, dir, "b.json", `{broken`)
	assert.Error(t, lib.Reload())
	assert.Len(t, lib.Entries(), 1)
}

func TestImportSkipsDuplicatesAndCurveless(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	entries := []Entry{
		{TurbineType: "Test/2000", HubHeight: 98, NominalPowerMw: 2.0,
			Curve: types.PowerCurve{"3": 0, "12": 2000}},
		{TurbineType: "Curveless/500", NominalPowerMw: 0.5},
	}

	result, err := Import(ctx, db, entries)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	// Re-importing skips everything, nothing is deleted.
	result, err = Import(ctx, db, entries)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, 2, result.Skipped)

	turbines, err := db.ListWindTurbines(ctx)
	require.NoError(t, err)
	require.Len(t, turbines, 1)
	assert.Equal(t, "Test/2000", turbines[0].TurbineType.Value())
	require.True(t, turbines[0].PowerCurveID.IsValid())

	curve, err := db.GetPowerCurve(ctx, turbines[0].PowerCurveID.Value())
	require.NoError(t, err)
	assert.Len(t, curve.Curve.Points(), 2)
}

func TestImportAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := Import(ctx, db, []Entry{
		{Curve: types.PowerCurve{"3": 0}},
	})
	require.NoError(t, err)

	turbines, err := db.ListWindTurbines(ctx)
	require.NoError(t, err)
	require.Len(t, turbines, 1)
	assert.Equal(t, "Unknown", turbines[0].TurbineType.Value())
	assert.InDelta(t, defaultHubHeight, turbines[0].HubHeight, 1e-9)
	assert.InDelta(t, defaultNominalPowerMw, turbines[0].NominalPower, 1e-9)
}
