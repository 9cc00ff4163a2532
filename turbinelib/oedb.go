package turbinelib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angas/windfarm-go/types"
)

// OEDB_URL is the Open Energy Database wind turbine library.
const OEDB_URL = "https://oep.iks.cs.ovgu.de/api/v0/schema/supply/tables/wind_turbine_library/rows/"

// Fetcher downloads turbine templates from the OEDB library.
type Fetcher struct {
	logger     *slog.Logger
	httpClient *http.Client
	url        string
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		logger:     slog.Default().With("module", "turbinelib"),
		httpClient: &http.Client{Timeout: timeout},
		url:        OEDB_URL,
	}
}

// The OEDB rows are loosely typed: numeric fields arrive as numbers or
// strings, list fields as JSON arrays or Python-style list strings.
type oedbRow struct {
	TurbineType          string          `json:"turbine_type"`
	HubHeight            json.RawMessage `json:"hub_height"`
	NominalPower         json.RawMessage `json:"nominal_power"`
	PowerCurveWindSpeeds json.RawMessage `json:"power_curve_wind_speeds"`
	PowerCurveValues     json.RawMessage `json:"power_curve_values"`
}

// Fetch downloads and parses the library. Rows without a usable power curve
// are dropped.
func (f *Fetcher) Fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building OEDB request: %w", err)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting OEDB turbine library: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading OEDB response body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OEDB returned status %d: %s", res.StatusCode, string(body))
	}

	var rows []oedbRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("error unmarshaling OEDB json: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, ok := entryFromRow(row)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	f.logger.Info("parsed OEDB turbine library",
		slog.Int("rows", len(rows)),
		slog.Int("entries", len(entries)))
	return entries, nil
}

func entryFromRow(row oedbRow) (Entry, bool) {
	speeds := floatList(row.PowerCurveWindSpeeds)
	powers := floatList(row.PowerCurveValues)
	if len(speeds) == 0 || len(powers) == 0 {
		return Entry{}, false
	}
	if len(powers) < len(speeds) {
		speeds = speeds[:len(powers)]
	}

	curve := types.PowerCurve{}
	for i, speed := range speeds {
		curve.Set(speed, powers[i])
	}

	turbineType := row.TurbineType
	if turbineType == "" {
		turbineType = "Unknown"
	}

	return Entry{
		TurbineType:    turbineType,
		HubHeight:      hubHeight(row.HubHeight),
		NominalPowerMw: nominalPowerKw(row.NominalPower) / 1000.0,
		Curve:          curve,
	}, true
}

// floatList accepts a JSON number array or a bracketed list inside a
// string, e.g. "[3.0, 4.0, 5.0]".
func floatList(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err == nil {
		return values
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil
	}

	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		values = append(values, v)
	}
	return values
}

// hubHeight accepts a number or a semicolon-separated string of variants
// ("100;110;120"), taking the first.
func hubHeight(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return defaultHubHeight
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return defaultHubHeight
	}
	first := strings.TrimSpace(strings.Split(s, ";")[0])
	if v, err := strconv.ParseFloat(first, 64); err == nil && v > 0 {
		return v
	}
	return defaultHubHeight
}

func nominalPowerKw(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return defaultNominalPowerMw * 1000
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && v > 0 {
			return v
		}
	}
	return defaultNominalPowerMw * 1000
}
