package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angas/windfarm-go/types"
	"github.com/angas/windfarm-go/types/maybe"
)

// Client fetches weather series from the Open-Meteo forecast and archive
// APIs. It implements types.WeatherProvider.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		logger:     slog.Default().With("module", "openmeteo"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the historical series (PastDays back) followed by the
// forecast series (ForecastDays ahead). A failing or empty endpoint yields
// an empty slice for that part, not an error, so a location without data is
// simply absent from the caller's index.
func (c *Client) Fetch(ctx context.Context, q types.WeatherQuery) ([]types.WeatherRecord, error) {
	var records []types.WeatherRecord

	if q.PastDays > 0 {
		historical, err := c.fetchHistorical(ctx, q)
		if err != nil {
			return nil, err
		}
		records = append(records, historical...)
	}

	if q.ForecastDays > 0 {
		forecast, err := c.fetchForecast(ctx, q)
		if err != nil {
			return nil, err
		}
		records = append(records, forecast...)
	}

	return records, nil
}

func (c *Client) fetchHistorical(ctx context.Context, q types.WeatherQuery) ([]types.WeatherRecord, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -q.PastDays)

	params := url.Values{}
	params.Set("latitude", formatCoord(q.Latitude))
	params.Set("longitude", formatCoord(q.Longitude))
	params.Set("start_date", startDate.Format("2006-01-02"))
	params.Set("end_date", endDate.Format("2006-01-02"))
	params.Set("hourly", strings.Join(archiveVars, ","))
	params.Set("wind_speed_unit", "ms")
	params.Set("timezone", "UTC")

	res, err := c.get(ctx, BASE_URL_ARCHIVE, params)
	if err != nil {
		return nil, err
	}
	if res.Hourly == nil {
		return nil, nil
	}

	records, err := parseSeries(res.Hourly)
	if err != nil {
		return nil, err
	}
	if q.ResolutionMinutes == 30 {
		records = interpolateTo30Min(records)
	}
	return records, nil
}

func (c *Client) fetchForecast(ctx context.Context, q types.WeatherQuery) ([]types.WeatherRecord, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(q.Latitude))
	params.Set("longitude", formatCoord(q.Longitude))
	params.Set("wind_speed_unit", "ms")
	params.Set("timezone", "UTC")

	switch q.ResolutionMinutes {
	case 15:
		// Native 15-minute data is only served by the ICON-D2 model.
		params.Set("minutely_15", strings.Join(forecastVars, ","))
		params.Set("models", "icon_d2")
		params.Set("forecast_minutely_15", strconv.Itoa(q.ForecastDays*96))
	default:
		params.Set("hourly", strings.Join(forecastVars, ","))
		params.Set("models", modelOrDefault(q.Model))
		params.Set("forecast_days", strconv.Itoa(q.ForecastDays))
	}

	res, err := c.get(ctx, BASE_URL_FORECAST, params)
	if err != nil {
		return nil, err
	}

	if res.Minutely15 != nil {
		return parseSeries(res.Minutely15)
	}
	if res.Hourly != nil {
		records, err := parseSeries(res.Hourly)
		if err != nil {
			return nil, err
		}
		if q.ResolutionMinutes == 30 {
			records = interpolateTo30Min(records)
		}
		return records, nil
	}

	return nil, nil
}

func (c *Client) get(ctx context.Context, baseURL string, params url.Values) (*apiResponse, error) {
	reqURL := baseURL + "?" + params.Encode()
	c.logger.Debug("fetching weather from Open-Meteo...", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building Open-Meteo request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting Open-Meteo data: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading Open-Meteo response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open-Meteo returned status %d: %s", res.StatusCode, string(body))
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshaling Open-Meteo json: %w", err)
	}

	return &payload, nil
}

// Open-Meteo serves naive local times; with timezone=UTC they are UTC.
func parseSeries(s *apiSeries) ([]types.WeatherRecord, error) {
	records := make([]types.WeatherRecord, 0, len(s.Time))
	for i, ts := range s.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("error parsing Open-Meteo timestamp %q: %w", ts, err)
		}
		records = append(records, types.WeatherRecord{
			Time:              t,
			Temperature:       valueAt(s.Temperature2m, i),
			Temperature80m:    valueAt(s.Temperature80m, i),
			WindSpeed:         valueAt(s.WindSpeed10m, i),
			WindSpeed80m:      valueAt(s.WindSpeed80m, i),
			WindSpeed100m:     valueAt(s.WindSpeed100m, i),
			WindDirection:     valueAt(s.WindDirection10m, i),
			WindDirection80m:  valueAt(s.WindDirection80m, i),
			WindDirection100m: valueAt(s.WindDirection100m, i),
			Pressure:          valueAt(s.PressureMsl, i),
			Precipitation:     valueAt(s.Precipitation, i),
			CloudCover:        valueAt(s.CloudCover, i),
		})
	}
	return records, nil
}

func valueAt(values []*float64, i int) maybe.Maybe[float64] {
	if i >= len(values) {
		return maybe.None[float64]()
	}
	return maybe.FromPtr(values[i])
}

// interpolateTo30Min inserts a midpoint sample between consecutive hourly
// samples. The provider has no native 30-minute data.
func interpolateTo30Min(records []types.WeatherRecord) []types.WeatherRecord {
	if len(records) < 2 {
		return records
	}

	interpolated := make([]types.WeatherRecord, 0, len(records)*2-1)
	for i := 0; i < len(records)-1; i++ {
		curr, next := records[i], records[i+1]
		interpolated = append(interpolated, curr)
		interpolated = append(interpolated, types.WeatherRecord{
			Time:              curr.Time.Add(30 * time.Minute),
			Temperature:       midpoint(curr.Temperature, next.Temperature),
			Temperature80m:    midpoint(curr.Temperature80m, next.Temperature80m),
			WindSpeed:         midpoint(curr.WindSpeed, next.WindSpeed),
			WindSpeed80m:      midpoint(curr.WindSpeed80m, next.WindSpeed80m),
			WindSpeed100m:     midpoint(curr.WindSpeed100m, next.WindSpeed100m),
			WindDirection:     midpoint(curr.WindDirection, next.WindDirection),
			WindDirection80m:  midpoint(curr.WindDirection80m, next.WindDirection80m),
			WindDirection100m: midpoint(curr.WindDirection100m, next.WindDirection100m),
			Pressure:          midpoint(curr.Pressure, next.Pressure),
			Precipitation:     midpoint(curr.Precipitation, next.Precipitation),
			CloudCover:        midpoint(curr.CloudCover, next.CloudCover),
		})
	}
	return append(interpolated, records[len(records)-1])
}

func midpoint(a, b maybe.Maybe[float64]) maybe.Maybe[float64] {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	return maybe.Some((a.Value() + b.Value()) / 2)
}

func modelOrDefault(model string) string {
	if model == "" {
		return "best_match"
	}
	return model
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
