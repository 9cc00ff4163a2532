package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/types"
)

// weatherIndex aligns weather series from several locations onto a single
// timestamp axis. The axis is the sorted union of every location's
// timestamps, so a gap at one location never drops a timestamp that another
// location covers.
type weatherIndex struct {
	byLocation map[int64]map[int64]types.WeatherRecord
	timestamps []time.Time
}

func newWeatherIndex(series map[int64][]types.WeatherRecord) *weatherIndex {
	idx := &weatherIndex{byLocation: make(map[int64]map[int64]types.WeatherRecord)}

	union := make(map[int64]time.Time)
	for locationID, records := range series {
		byTime := make(map[int64]types.WeatherRecord, len(records))
		for _, rec := range records {
			ts := rec.Time.UTC()
			rec.Time = ts
			byTime[ts.Unix()] = rec
			union[ts.Unix()] = ts
		}
		idx.byLocation[locationID] = byTime
	}

	idx.timestamps = make([]time.Time, 0, len(union))
	for _, ts := range union {
		idx.timestamps = append(idx.timestamps, ts)
	}
	sort.Slice(idx.timestamps, func(i, j int) bool {
		return idx.timestamps[i].Before(idx.timestamps[j])
	})

	return idx
}

// Timestamps is the sorted union axis.
func (idx *weatherIndex) Timestamps() []time.Time {
	return idx.timestamps
}

// At looks up the record for a location at a timestamp. The second return
// is false when that location has no sample there.
func (idx *weatherIndex) At(locationID int64, ts time.Time) (types.WeatherRecord, bool) {
	byTime, ok := idx.byLocation[locationID]
	if !ok {
		return types.WeatherRecord{}, false
	}
	rec, ok := byTime[ts.UTC().Unix()]
	return rec, ok
}

// fetchWeather pulls one series per distinct fleet location. A provider
// error aborts the whole run; an empty series just leaves that location
// without samples.
func fetchWeather(
	ctx context.Context,
	logger *slog.Logger,
	provider types.WeatherProvider,
	locations map[int64]database.LocationRow,
	base types.WeatherQuery,
) (map[int64][]types.WeatherRecord, error) {
	series := make(map[int64][]types.WeatherRecord, len(locations))
	for id, loc := range locations {
		q := base
		q.Latitude = loc.Latitude
		q.Longitude = loc.Longitude

		records, err := provider.Fetch(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("fetching weather for location %d: %w", id, err)
		}
		logger.Debug("fetched weather series",
			slog.Int64("locationId", id),
			slog.Int("records", len(records)))
		series[id] = records
	}
	return series, nil
}
