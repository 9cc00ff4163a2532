package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/windfarm-go/convert"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// MaxSyntheticDaysBack caps backfill generation at one year.
const MaxSyntheticDaysBack = 365

// SyntheticConfig tunes the realism knobs of synthetic generation.
type SyntheticConfig struct {
	AddNoise            bool
	NoiseStdPercent     float64
	RandomOutages       bool
	OutageProbability   float64
	OutageDurationHours int
}

func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		AddNoise:            true,
		NoiseStdPercent:     5.0,
		RandomOutages:       true,
		OutageProbability:   0.01,
		OutageDurationHours: 4,
	}
}

// SyntheticSummary reports what a synthetic backfill produced.
type SyntheticSummary struct {
	WindFarmID         int64     `json:"windFarmId"`
	RecordsCreated     int       `json:"recordsCreated"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	TotalGenerationKwh float64   `json:"totalGenerationKwh"`
}

// SyntheticService produces plausible historical generation records for
// farms without real telemetry, driven by archive weather with optional
// noise and simulated outages.
type SyntheticService struct {
	logger  *slog.Logger
	db      *database.Database
	weather types.WeatherProvider
	rng     Rng
}

func NewSyntheticService(db *database.Database, weather types.WeatherProvider, rng Rng) *SyntheticService {
	return &SyntheticService{
		logger:  slog.Default().With("module", "synthetic"),
		db:      db,
		weather: weather,
		rng:     rng,
	}
}

// GenerateForWindFarm backfills synthetic generation for the past daysBack
// days. Previous synthetic records in the produced time range are replaced;
// actual records are never touched.
func (s *SyntheticService) GenerateForWindFarm(
	ctx context.Context,
	windFarmID int64,
	daysBack int,
	granularity types.Granularity,
	cfg SyntheticConfig,
) (*SyntheticSummary, error) {
	if daysBack < 1 || daysBack > MaxSyntheticDaysBack {
		return nil, fmt.Errorf("days back must be between 1 and %d, got %d", MaxSyntheticDaysBack, daysBack)
	}

	graph, err := loadFarmGraph(ctx, s.db, windFarmID)
	if err != nil {
		return nil, err
	}
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

	var gate fleetGate
	if cfg.RandomOutages {
		sim := newOutageSimulator(s.rng, cfg.OutageProbability, cfg.OutageDurationHours)
		gate = sim.tick
	}
	var transform powerTransform
	if cfg.AddNoise {
		transform = func(powerKw float64) float64 {
			return noisyPower(s.rng, powerKw, cfg.NoiseStdPercent)
		}
	}

	var rows []database.GenerationRecordRow
	for _, ts := range idx.Timestamps() {
		agg := aggregateFarm(graph, idx, ts, gate, transform)
		rows = append(rows, database.GenerationRecordRow{
			WindFarmID:    windFarmID,
			Timestamp:     ts,
			Generation:    convert.TwoDecimals(agg.GenerationKw),
			Granularity:   granularity,
			FleetStatuses: agg.Statuses,
			IsSynthetic:   true,
			WindSpeed:     maybe.Map(agg.WindSpeed, convert.TwoDecimals),
			WindDirection: maybe.Map(agg.WindDirection, convert.OneDecimal),
			Temperature:   maybe.Map(agg.Temperature, convert.OneDecimal),
		})
	}

	summary := &SyntheticSummary{WindFarmID: windFarmID, RecordsCreated: len(rows)}
	if len(rows) == 0 {
		s.logger.Warn("no synthetic records produced", slog.Int64("windFarmId", windFarmID))
		return summary, nil
	}

	summary.Start = rows[0].Timestamp
	summary.End = rows[len(rows)-1].Timestamp
	if err := s.db.ReplaceSyntheticGeneration(ctx, windFarmID, summary.Start, summary.End, rows); err != nil {
		return nil, err
	}

	intervalMinutes := int(granularity.Duration().Minutes())
	for _, row := range rows {
		summary.TotalGenerationKwh += convert.KwhFromKw(row.Generation, intervalMinutes)
	}
	summary.TotalGenerationKwh = convert.TwoDecimals(summary.TotalGenerationKwh)

	s.logger.Info("synthetic generation completed",
		slog.Int64("windFarmId", windFarmID),
		slog.Int("records", summary.RecordsCreated),
		slog.Int("daysBack", daysBack))
	return summary, nil
}
