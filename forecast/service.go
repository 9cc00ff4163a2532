package forecast

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/convert"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// MaxForecastHours caps the forward horizon (7 days).
const MaxForecastHours = 168

// RunSummary is what a completed forecast run reports back to its caller.
type RunSummary struct {
	RunID              int64     `json:"runId"`
	WindFarmID         int64     `json:"windFarmId"`
	RecordsCreated     int       `json:"recordsCreated"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	WeatherModel       string    `json:"weatherModel"`
	TotalGenerationKwh float64   `json:"totalGenerationKwh"`
}

// Service produces generation forecasts for wind farms from a weather
// provider and persists them. It is safe for concurrent use; all state
// lives in the database.
type Service struct {
	logger  *slog.Logger
	db      *database.Database
	weather types.WeatherProvider
	now     func() time.Time
}

func NewService(db *database.Database, weather types.WeatherProvider) *Service {
	return &Service{
		logger:  slog.Default().With("module", "forecast"),
		db:      db,
		weather: weather,
		now:     time.Now,
	}
}

// GenerateForecast runs a forward-looking forecast for one farm. Every run
// is recorded: failures after run creation mark the run failed with the
// error message, and existing forecasts for the farm are replaced
// atomically on success.
func (s *Service) GenerateForecast(
	ctx context.Context,
	windFarmID int64,
	forecastHours int,
	granularity types.Granularity,
	weatherModel string,
) (*RunSummary, error) {
	if forecastHours < 1 || forecastHours > MaxForecastHours {
		return nil, fmt.Errorf("forecast hours must be between 1 and %d, got %d", MaxForecastHours, forecastHours)
	}

	// An unknown farm fails fast, the run row has a foreign key on the
	// farm. Everything after this point is recorded on a run row.
	graph, err := loadFarmGraph(ctx, s.db, windFarmID)
	if err != nil {
		return nil, err
	}

	runID, err := s.db.CreateForecastRun(ctx, windFarmID, forecastHours, weatherModel)
	if err != nil {
		return nil, err
	}
	s.logger.Info("forecast run started",
		slog.Int64("runId", runID),
		slog.Int64("windFarmId", windFarmID),
		slog.Int("forecastHours", forecastHours),
		slog.String("weatherModel", weatherModel))

	summary, err := s.generate(ctx, runID, graph, forecastHours, granularity, weatherModel)
	if err != nil {
		if dbErr := s.db.CompleteForecastRun(ctx, runID, database.RunStatusFailed, 0, err.Error()); dbErr != nil {
			s.logger.Error("failed to mark forecast run failed", slog.Any("error", dbErr))
		}
		return nil, fmt.Errorf("forecast run %d: %w", runID, err)
	}

	if err := s.db.CompleteForecastRun(ctx, runID, database.RunStatusSuccess, summary.RecordsCreated, ""); err != nil {
		return nil, err
	}
	s.logger.Info("forecast run succeeded",
		slog.Int64("runId", runID),
		slog.Int("records", summary.RecordsCreated))
	return summary, nil
}

func (s *Service) generate(
	ctx context.Context,
	runID int64,
	graph *database.WindFarmGraph,
	forecastHours int,
	granularity types.Granularity,
	weatherModel string,
) (*RunSummary, error) {
	windFarmID := graph.Farm.ID

	if err := validateGraph(graph); err != nil {
		return nil, err
	}

	// Fetch one extra day so the horizon is covered even when the run
	// starts late in the day.
	forecastDays := (forecastHours+23)/24 + 1
	series, err := fetchWeather(ctx, s.logger, s.weather, graph.Locations(), types.WeatherQuery{
		ForecastDays:      forecastDays,
		ResolutionMinutes: granularity.ResolutionMinutes(),
		Model:             weatherModel,
	})
	if err != nil {
		return nil, err
	}
	idx := newWeatherIndex(series)

	now := s.now()
	var rows []database.GenerationForecastRow
	for _, ts := range idx.Timestamps() {
		hoursAhead := ts.Sub(now).Hours()
		if hoursAhead < 0 || hoursAhead > float64(forecastHours) {
			continue
		}

		agg := aggregateFarm(graph, idx, ts, nil, nil)
		rows = append(rows, database.GenerationForecastRow{
			WindFarmID:           windFarmID,
			ForecastTime:         ts,
			Generation:           convert.TwoDecimals(agg.GenerationKw),
			Granularity:          granularity,
			WindSpeed:            maybe.Map(agg.WindSpeed, convert.TwoDecimals),
			WindDirection:        maybe.Map(agg.WindDirection, convert.OneDecimal),
			Temperature:          maybe.Map(agg.Temperature, convert.OneDecimal),
			WeatherModel:         weatherModel,
			ForecastHorizonHours: int(hoursAhead),
		})
	}

	if len(rows) > 0 {
		if err := s.db.ReplaceForecasts(ctx, windFarmID, rows); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("no forecast records produced", slog.Int64("windFarmId", windFarmID))
	}

	summary := summarize(rows, granularity)
	summary.RunID = runID
	summary.WindFarmID = windFarmID
	summary.WeatherModel = weatherModel
	return summary, nil
}

// GenerateHistoricalForecast backfills forecasts over the past daysBack
// days from archive weather. Only records inside the produced time range
// are replaced, forward-looking forecasts stay untouched.
func (s *Service) GenerateHistoricalForecast(
	ctx context.Context,
	windFarmID int64,
	daysBack int,
	granularity types.Granularity,
) (*RunSummary, error) {
	if daysBack < 1 {
		return nil, fmt.Errorf("days back must be positive, got %d", daysBack)
	}

	graph, err := loadFarmGraph(ctx, s.db, windFarmID)
	if err != nil {
		return nil, err
	}

	weatherModel := "historical"
	runID, err := s.db.CreateForecastRun(ctx, windFarmID, daysBack*24, weatherModel)
	if err != nil {
		return nil, err
	}
	s.logger.Info("historical forecast run started",
		slog.Int64("runId", runID),
		slog.Int64("windFarmId", windFarmID),
		slog.Int("daysBack", daysBack))

	summary, err := s.generateHistorical(ctx, runID, graph, daysBack, granularity, weatherModel)
	if err != nil {
		if dbErr := s.db.CompleteForecastRun(ctx, runID, database.RunStatusFailed, 0, err.Error()); dbErr != nil {
			s.logger.Error("failed to mark forecast run failed", slog.Any("error", dbErr))
		}
		return nil, fmt.Errorf("historical forecast run %d: %w", runID, err)
	}

	if err := s.db.CompleteForecastRun(ctx, runID, database.RunStatusCompleted, summary.RecordsCreated, ""); err != nil {
		return nil, err
	}
	s.logger.Info("historical forecast run completed",
		slog.Int64("runId", runID),
		slog.Int("records", summary.RecordsCreated))
	return summary, nil
}

func (s *Service) generateHistorical(
	ctx context.Context,
	runID int64,
	graph *database.WindFarmGraph,
	daysBack int,
	granularity types.Granularity,
	weatherModel string,
) (*RunSummary, error) {
	windFarmID := graph.Farm.ID

	if err := validateGraph(graph); err != nil {
		return nil, err
	}

	series, err := fetchWeather(ctx, s.logger, s.weather, graph.Locations(), types.WeatherQuery{
		PastDays:          daysBack,
		ResolutionMinutes: granularity.ResolutionMinutes(),
	})
	if err != nil {
		return nil, err
	}
	idx := newWeatherIndex(series)

	var rows []database.GenerationForecastRow
	for _, ts := range idx.Timestamps() {
		agg := aggregateFarm(graph, idx, ts, nil, nil)
		rows = append(rows, database.GenerationForecastRow{
			WindFarmID:    windFarmID,
			ForecastTime:  ts,
			Generation:    convert.TwoDecimals(agg.GenerationKw),
			Granularity:   granularity,
			WindSpeed:     maybe.Map(agg.WindSpeed, convert.TwoDecimals),
			WindDirection: maybe.Map(agg.WindDirection, convert.OneDecimal),
			Temperature:   maybe.Map(agg.Temperature, convert.OneDecimal),
			WeatherModel:  weatherModel,
		})
	}

	if len(rows) > 0 {
		from := rows[0].ForecastTime
		to := rows[len(rows)-1].ForecastTime
		if err := s.db.ReplaceForecastsInRange(ctx, windFarmID, from, to, rows); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("no historical forecast records produced", slog.Int64("windFarmId", windFarmID))
	}

	summary := summarize(rows, granularity)
	summary.RunID = runID
	summary.WindFarmID = windFarmID
	summary.WeatherModel = weatherModel
	return summary, nil
}

// loadFarmGraph loads the farm with fleets resolved. A missing farm is the
// only error here; whether the graph can produce a forecast is checked by
// validateGraph, inside the run so the failure is recorded on the run row.
func loadFarmGraph(ctx context.Context, db *database.Database, windFarmID int64) (*database.WindFarmGraph, error) {
	graph, err := db.GetWindFarmGraph(ctx, windFarmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wind farm %d not found", windFarmID)
		}
		return nil, err
	}
	return graph, nil
}

func validateGraph(graph *database.WindFarmGraph) error {
	if len(graph.Fleets) == 0 {
		return fmt.Errorf("wind farm %d has no turbine fleets", graph.Farm.ID)
	}
	if len(graph.Locations()) == 0 {
		return fmt.Errorf("wind farm %d has no fleet locations", graph.Farm.ID)
	}
	return nil
}

func summarize(rows []database.GenerationForecastRow, granularity types.Granularity) *RunSummary {
	summary := &RunSummary{RecordsCreated: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	summary.Start = rows[0].ForecastTime
	summary.End = rows[len(rows)-1].ForecastTime

	intervalMinutes := int(granularity.Duration().Minutes())
	for _, row := range rows {
		summary.TotalGenerationKwh += convert.KwhFromKw(row.Generation, intervalMinutes)
	}
	summary.TotalGenerationKwh = convert.TwoDecimals(summary.TotalGenerationKwh)
	return summary
}
