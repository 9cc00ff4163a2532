package forecast

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

var runNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubProvider serves a canned series and records the queries it got.
type stubProvider struct {
	records []types.WeatherRecord
	err     error
	queries []types.WeatherQuery
}

func (p *stubProvider) Fetch(_ context.Context, q types.WeatherQuery) ([]types.WeatherRecord, error) {
	p.queries = append(p.queries, q)
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

// hourlySeries is count hourly samples starting at start, all at the given
// 100m wind speed.
func hourlySeries(start time.Time, count int, windSpeed100m float64) []types.WeatherRecord {
	records := make([]types.WeatherRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, types.WeatherRecord{
			Time:          start.Add(time.Duration(i) * time.Hour),
			WindSpeed100m: maybe.Some(windSpeed100m),
			WindDirection: maybe.Some(200.0),
			Temperature:   maybe.Some(6.5),
		})
	}
	return records
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

// seedFarm creates a farm with a single fleet of five 2 MW turbines without
// a power curve, so output follows the cubic fallback.
func seedFarm(t *testing.T, db *database.Database) int64 {
	t.Helper()
	ctx := context.Background()

	locationID, err := db.SaveLocation(ctx, database.LocationRow{Latitude: 57.5, Longitude: 11.9})
	require.NoError(t, err)

	turbineID, err := db.SaveWindTurbine(ctx, database.WindTurbineRow{
		TurbineType:  maybe.Some("Test/2000"),
		HubHeight:    100,
		NominalPower: 2.0,
	})
	require.NoError(t, err)

	farmID, err := db.SaveWindFarm(ctx, database.WindFarmRow{Name: "offshore test"})
	require.NoError(t, err)

	_, err = db.SaveFleet(ctx, database.FleetRow{
		WindFarmID:       farmID,
		WindTurbineID:    turbineID,
		LocationID:       locationID,
		NumberOfTurbines: 5,
	})
	require.NoError(t, err)

	return farmID
}

func newTestService(db *database.Database, provider types.WeatherProvider) *Service {
	svc := NewService(db, provider)
	svc.now = func() time.Time { return runNow }
	return svc
}

func TestGenerateForecastEndToEnd(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	// Samples well past the horizon, the service must window them.
	provider := &stubProvider{records: hourlySeries(runNow, 6, 10.0)}
	svc := newTestService(db, provider)

	summary, err := svc.GenerateForecast(ctx, farmID, 2, types.Granularity60Min, "icon_global")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RecordsCreated) // hours 0, 1 and 2
	assert.Equal(t, runNow, summary.Start)
	assert.Equal(t, runNow.Add(2*time.Hour), summary.End)
	assert.Equal(t, "icon_global", summary.WeatherModel)
	// 5 turbines x 2000 kW x ((10-3)/(12-3))^3 per hour.
	assert.InDelta(t, 3*4705.08, summary.TotalGenerationKwh, 0.01)

	require.Len(t, provider.queries, 1)
	assert.Equal(t, 2, provider.queries[0].ForecastDays) // ceil(2/24)+1
	assert.Equal(t, 60, provider.queries[0].ResolutionMinutes)
	assert.Equal(t, "icon_global", provider.queries[0].Model)

	rows, err := db.GetForecasts(ctx, farmID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.InDelta(t, 4705.08, row.Generation, 0.01)
		assert.Equal(t, i, row.ForecastHorizonHours)
		assert.Equal(t, "icon_global", row.WeatherModel)
		assert.Equal(t, types.Granularity60Min, row.Granularity)
		assert.InDelta(t, 10.0, row.WindSpeed.Value(), 1e-9)
		assert.InDelta(t, 200.0, row.WindDirection.Value(), 1e-9)
		assert.InDelta(t, 6.5, row.Temperature.Value(), 1e-9)
	}

	run, err := db.GetForecastRun(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, database.RunStatusSuccess, run.Status)
	assert.Equal(t, 3, run.RecordsCreated)
	assert.True(t, run.CompletedAt.IsValid())
	assert.False(t, run.ErrorMessage.IsValid())
}

func TestGenerateForecastReplacesPriorBatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	provider := &stubProvider{records: hourlySeries(runNow, 4, 10.0)}
	svc := newTestService(db, provider)

	_, err := svc.GenerateForecast(ctx, farmID, 3, types.Granularity60Min, "best_match")
	require.NoError(t, err)

	// Second run at rated speed supersedes the whole first batch.
	provider.records = hourlySeries(runNow, 3, 12.0)
	_, err = svc.GenerateForecast(ctx, farmID, 2, types.Granularity60Min, "best_match")
	require.NoError(t, err)

	rows, err := db.GetForecasts(ctx, farmID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.InDelta(t, 10000, row.Generation, 1e-9)
	}
}

func TestGenerateForecastRejectsBadHorizon(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)
	svc := newTestService(db, &stubProvider{})

	_, err := svc.GenerateForecast(ctx, farmID, 0, types.Granularity60Min, "best_match")
	assert.Error(t, err)

	_, err = svc.GenerateForecast(ctx, farmID, MaxForecastHours+1, types.Granularity60Min, "best_match")
	assert.Error(t, err)

	runs, err := db.ListForecastRuns(ctx, farmID, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGenerateForecastUnknownFarm(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(db, &stubProvider{})

	_, err := svc.GenerateForecast(ctx, 12345, 24, types.Granularity60Min, "best_match")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerateForecastFarmWithoutFleetsMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	farmID, err := db.SaveWindFarm(ctx, database.WindFarmRow{Name: "empty farm"})
	require.NoError(t, err)

	svc := newTestService(db, &stubProvider{})
	_, err = svc.GenerateForecast(ctx, farmID, 24, types.Granularity60Min, "best_match")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no turbine fleets")

	// The farm exists, so the failure is bookkept on a run row
	runs, err := db.ListForecastRuns(ctx, farmID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, database.RunStatusFailed, runs[0].Status)
	assert.Equal(t, 0, runs[0].RecordsCreated)
	assert.True(t, runs[0].CompletedAt.IsValid())
	assert.Contains(t, runs[0].ErrorMessage.Value(), "no turbine fleets")
}

func TestGenerateHistoricalForecastFarmWithoutFleetsMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	farmID, err := db.SaveWindFarm(ctx, database.WindFarmRow{Name: "empty farm"})
	require.NoError(t, err)

	svc := newTestService(db, &stubProvider{})
	_, err = svc.GenerateHistoricalForecast(ctx, farmID, 1, types.Granularity60Min)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no turbine fleets")

	runs, err := db.ListForecastRuns(ctx, farmID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, database.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].ErrorMessage.Value(), "no turbine fleets")
}

func TestGenerateForecastProviderFailureMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	svc := newTestService(db, &stubProvider{err: errors.New("upstream unavailable")})
	_, err := svc.GenerateForecast(ctx, farmID, 24, types.Granularity60Min, "best_match")
	require.Error(t, err)

	runs, err := db.ListForecastRuns(ctx, farmID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, database.RunStatusFailed, runs[0].Status)
	assert.True(t, runs[0].CompletedAt.IsValid())
	assert.Contains(t, runs[0].ErrorMessage.Value(), "upstream unavailable")

	rows, err := db.GetForecasts(ctx, farmID, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGenerateForecastIgnoresPastTimestamps(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	// Series starts two hours before "now".
	provider := &stubProvider{records: hourlySeries(runNow.Add(-2*time.Hour), 5, 10.0)}
	svc := newTestService(db, provider)

	summary, err := svc.GenerateForecast(ctx, farmID, 2, types.Granularity60Min, "best_match")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecordsCreated)
	assert.Equal(t, runNow, summary.Start)
}

func TestGenerateHistoricalForecast(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	// A forward-looking record outside the historical range must survive.
	future := database.GenerationForecastRow{
		WindFarmID:   farmID,
		ForecastTime: runNow.Add(10 * time.Hour),
		Generation:   1234,
		Granularity:  types.Granularity60Min,
		WeatherModel: "best_match",
	}
	require.NoError(t, db.ReplaceForecasts(ctx, farmID, []database.GenerationForecastRow{future}))

	provider := &stubProvider{records: hourlySeries(runNow.Add(-2*time.Hour), 3, 10.0)}
	svc := newTestService(db, provider)

	summary, err := svc.GenerateHistoricalForecast(ctx, farmID, 1, types.Granularity60Min)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecordsCreated)
	assert.Equal(t, "historical", summary.WeatherModel)

	require.Len(t, provider.queries, 1)
	assert.Equal(t, 1, provider.queries[0].PastDays)
	assert.Zero(t, provider.queries[0].ForecastDays)

	run, err := db.GetForecastRun(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, database.RunStatusCompleted, run.Status)

	rows, err := db.GetForecasts(ctx, farmID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows[:3] {
		assert.Equal(t, "historical", row.WeatherModel)
		assert.Zero(t, row.ForecastHorizonHours)
	}
	assert.Equal(t, future.ForecastTime, rows[3].ForecastTime)
	assert.InDelta(t, 1234, rows[3].Generation, 1e-9)
}

func TestGenerateHistoricalForecastRejectsBadDaysBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	farmID := seedFarm(t, db)
	svc := newTestService(db, &stubProvider{})

	_, err := svc.GenerateHistoricalForecast(ctx, farmID, 0, types.Granularity60Min)
	assert.Error(t, err)
}
