package www

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/forecast"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

type stubProvider struct {
	records []types.WeatherRecord
	err     error
}

func (p *stubProvider) Fetch(_ context.Context, _ types.WeatherQuery) ([]types.WeatherRecord, error) {
	return p.records, p.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// seedFarm stands up a farm with one fleet of five 2 MW turbines.
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

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestFarmCreateListGetDelete(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	mux := http.NewServeMux()
	mux.Handle("POST /api/farms", NewFarmCreateHandler(logger, db))
	mux.Handle("GET /api/farms", NewFarmListHandler(logger, db))
	mux.Handle("GET /api/farms/{id}", NewFarmGetHandler(logger, db))
	mux.Handle("DELETE /api/farms/{id}", NewFarmDeleteHandler(logger, db))

	desc := "test site"
	rec := doJSON(t, mux, http.MethodPost, "/api/farms", createFarmRequest{Name: "yttre stengrund", Description: &desc})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeJSON[map[string]int64](t, rec)["id"]
	require.NotZero(t, id)

	rec = doJSON(t, mux, http.MethodGet, "/api/farms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	farms := decodeJSON[[]windFarmJSON](t, rec)
	require.Len(t, farms, 1)
	assert.Equal(t, "yttre stengrund", farms[0].Name)
	require.NotNil(t, farms[0].Description)
	assert.Equal(t, desc, *farms[0].Description)

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/api/farms/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/farms", nil)
	assert.Empty(t, decodeJSON[[]windFarmJSON](t, rec))
}

func TestFarmCreateRequiresName(t *testing.T) {
	db := newTestDB(t)
	handler := NewFarmCreateHandler(testLogger(), db)

	rec := doJSON(t, handler, http.MethodPost, "/api/farms", createFarmRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFarmGetReturnsGraphWithCapacity(t *testing.T) {
	db := newTestDB(t)
	farmID := seedFarm(t, db)

	mux := http.NewServeMux()
	mux.Handle("GET /api/farms/{id}", NewFarmGetHandler(testLogger(), db))

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/farms/%d", farmID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, 10.0, detail["capacityMw"])
	assert.Len(t, detail["fleets"], 1)

	rec = doJSON(t, mux, http.MethodGet, "/api/farms/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTurbineCreateWithInlineCurve(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()

	rec := doJSON(t, NewTurbineCreateHandler(logger, db), http.MethodPost, "/api/turbines", createTurbineRequest{
		TurbineType:  ptr("V90/3000"),
		HubHeight:    105,
		NominalPower: 3.0,
		PowerCurve:   types.PowerCurve{"4": 0, "9": 1500, "15": 3000},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, NewTurbineListHandler(logger, db), http.MethodGet, "/api/turbines", nil)
	turbines := decodeJSON[[]windTurbineJSON](t, rec)
	require.Len(t, turbines, 1)
	require.NotNil(t, turbines[0].PowerCurveID)

	rec = doJSON(t, NewPowerCurveListHandler(logger, db), http.MethodGet, "/api/power_curves", nil)
	curves := decodeJSON[[]powerCurveJSON](t, rec)
	require.Len(t, curves, 1)
	assert.Equal(t, 1500.0, curves[0].Curve["9"])
}

func TestTurbineCreateRejectsCurveAndCurveID(t *testing.T) {
	db := newTestDB(t)
	id := int64(1)

	rec := doJSON(t, NewTurbineCreateHandler(testLogger(), db), http.MethodPost, "/api/turbines", createTurbineRequest{
		NominalPower: 2.0,
		PowerCurveID: &id,
		PowerCurve:   types.PowerCurve{"4": 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFleetCreateRejectsBadReferences(t *testing.T) {
	db := newTestDB(t)

	rec := doJSON(t, NewFleetCreateHandler(testLogger(), db), http.MethodPost, "/api/fleets", createFleetRequest{
		WindFarmID:       42,
		WindTurbineID:    43,
		LocationID:       44,
		NumberOfTurbines: 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastHandlerCreatesRun(t *testing.T) {
	db := newTestDB(t)
	farmID := seedFarm(t, db)
	logger := testLogger()

	start := time.Now().UTC().Truncate(time.Hour)
	records := make([]types.WeatherRecord, 0, 48)
	for i := 0; i < 48; i++ {
		records = append(records, types.WeatherRecord{
			Time:          start.Add(time.Duration(i) * time.Hour),
			WindSpeed100m: maybe.Some(12.0),
		})
	}
	svc := forecast.NewService(db, &stubProvider{records: records})

	hub := NewHub(logger)
	go hub.Run()
	handler := NewForecastHandler(logger, config.AppConfigForecast{}, svc, hub)

	rec := doJSON(t, handler, http.MethodPost, "/api/forecast", forecastRequest{
		WindFarmID:    farmID,
		ForecastHours: 6,
		Granularity:   "60min",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	summary := decodeJSON[forecast.RunSummary](t, rec)
	assert.Equal(t, farmID, summary.WindFarmID)
	assert.Greater(t, summary.RecordsCreated, 0)
	assert.Greater(t, summary.TotalGenerationKwh, 0.0)

	listRec := doJSON(t, NewForecastListHandler(logger, db),
		http.MethodGet, fmt.Sprintf("/api/forecast?farm_id=%d", farmID), nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	forecasts := decodeJSON[[]forecastJSON](t, listRec)
	assert.Len(t, forecasts, summary.RecordsCreated)

	runsRec := doJSON(t, NewRunListHandler(logger, db),
		http.MethodGet, fmt.Sprintf("/api/runs?farm_id=%d", farmID), nil)
	runs := decodeJSON[[]forecastRunJSON](t, runsRec)
	require.Len(t, runs, 1)
	assert.Equal(t, database.RunStatusSuccess, runs[0].Status)
}

func TestForecastHandlerUnknownFarmIs404(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()
	svc := forecast.NewService(db, &stubProvider{})
	hub := NewHub(logger)
	go hub.Run()

	rec := doJSON(t, NewForecastHandler(logger, config.AppConfigForecast{}, svc, hub),
		http.MethodPost, "/api/forecast", forecastRequest{WindFarmID: 123, ForecastHours: 6})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForecastHandlerBadHorizonIs400(t *testing.T) {
	db := newTestDB(t)
	farmID := seedFarm(t, db)
	logger := testLogger()
	svc := forecast.NewService(db, &stubProvider{})
	hub := NewHub(logger)
	go hub.Run()

	rec := doJSON(t, NewForecastHandler(logger, config.AppConfigForecast{}, svc, hub),
		http.MethodPost, "/api/forecast", forecastRequest{WindFarmID: farmID, ForecastHours: 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastHandlerRejectsUnknownFields(t *testing.T) {
	db := newTestDB(t)
	logger := testLogger()
	svc := forecast.NewService(db, &stubProvider{})
	hub := NewHub(logger)
	go hub.Run()

	rec := doJSON(t, NewForecastHandler(logger, config.AppConfigForecast{}, svc, hub),
		http.MethodPost, "/api/forecast", map[string]any{"windFarmId": 1, "bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyntheticHandlerBackfills(t *testing.T) {
	db := newTestDB(t)
	farmID := seedFarm(t, db)
	logger := testLogger()

	start := time.Now().UTC().Truncate(time.Hour).Add(-24 * time.Hour)
	records := make([]types.WeatherRecord, 0, 24)
	for i := 0; i < 24; i++ {
		records = append(records, types.WeatherRecord{
			Time:          start.Add(time.Duration(i) * time.Hour),
			WindSpeed100m: maybe.Some(10.0),
		})
	}
	svc := forecast.NewSyntheticService(db, &stubProvider{records: records}, forecast.NewRng(1))

	off := false
	rec := doJSON(t, NewSyntheticHandler(logger, config.AppConfigForecast{}, config.AppConfigSynthetic{}, svc),
		http.MethodPost, "/api/synthetic", syntheticRequest{
			WindFarmID:    farmID,
			DaysBack:      1,
			Granularity:   "60min",
			AddNoise:      &off,
			RandomOutages: &off,
		})
	require.Equal(t, http.StatusCreated, rec.Code)

	summary := decodeJSON[forecast.SyntheticSummary](t, rec)
	assert.Equal(t, 24, summary.RecordsCreated)

	listRec := doJSON(t, NewGenerationListHandler(logger, db),
		http.MethodGet, fmt.Sprintf("/api/generation?farm_id=%d", farmID), nil)
	generation := decodeJSON[[]generationJSON](t, listRec)
	require.Len(t, generation, 24)
	assert.True(t, generation[0].IsSynthetic)
}

func TestWeatherHandlerPassthrough(t *testing.T) {
	provider := &stubProvider{records: []types.WeatherRecord{{
		Time:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		WindSpeed100m: maybe.Some(8.5),
		Temperature:   maybe.Some(4.0),
	}}}

	rec := doJSON(t, NewWeatherHandler(testLogger(), provider),
		http.MethodGet, "/api/weather?lat=57.5&lon=11.9", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	records := decodeJSON[[]weatherRecordJSON](t, rec)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].WindSpeed100m)
	assert.Equal(t, 8.5, *records[0].WindSpeed100m)

	rec = doJSON(t, NewWeatherHandler(testLogger(), provider), http.MethodGet, "/api/weather?lat=57.5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusForError(fmt.Errorf("wind farm 7 not found")))
	assert.Equal(t, http.StatusBadRequest, statusForError(fmt.Errorf("forecast hours must be between 1 and 168, got 500")))
	assert.Equal(t, http.StatusBadRequest, statusForError(fmt.Errorf("wind farm 7 has no turbine fleets")))
	assert.Equal(t, http.StatusInternalServerError, statusForError(fmt.Errorf("disk is sad")))
}

func ptr[T any](v T) *T { return &v }
