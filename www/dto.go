package www

import (
	"time"

	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/scada"
	"github.com/angas/windfarm-go/types"
)

// The database rows carry maybe-wrapped fields that don't serialize nicely;
// every list endpoint maps rows onto these JSON shapes instead.

type windFarmJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func toWindFarmJSON(row database.WindFarmRow) windFarmJSON {
	return windFarmJSON{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.Ptr(),
	}
}

type locationJSON struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toLocationJSON(row database.LocationRow) locationJSON {
	return locationJSON{ID: row.ID, Latitude: row.Latitude, Longitude: row.Longitude}
}

type windTurbineJSON struct {
	ID           int64   `json:"id"`
	TurbineType  *string `json:"turbineType"`
	HubHeight    float64 `json:"hubHeight"`
	NominalPower float64 `json:"nominalPower"`
	PowerCurveID *int64  `json:"powerCurveId"`
}

func toWindTurbineJSON(row database.WindTurbineRow) windTurbineJSON {
	return windTurbineJSON{
		ID:           row.ID,
		TurbineType:  row.TurbineType.Ptr(),
		HubHeight:    row.HubHeight,
		NominalPower: row.NominalPower,
		PowerCurveID: row.PowerCurveID.Ptr(),
	}
}

type fleetJSON struct {
	ID               int64 `json:"id"`
	WindFarmID       int64 `json:"windFarmId"`
	WindTurbineID    int64 `json:"windTurbineId"`
	LocationID       int64 `json:"locationId"`
	NumberOfTurbines int   `json:"numberOfTurbines"`
}

func toFleetJSON(row database.FleetRow) fleetJSON {
	return fleetJSON{
		ID:               row.ID,
		WindFarmID:       row.WindFarmID,
		WindTurbineID:    row.WindTurbineID,
		LocationID:       row.LocationID,
		NumberOfTurbines: row.NumberOfTurbines,
	}
}

type forecastRunJSON struct {
	ID             int64      `json:"id"`
	WindFarmID     int64      `json:"windFarmId"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
	Status         string     `json:"status"`
	RecordsCreated int        `json:"recordsCreated"`
	ForecastHours  int        `json:"forecastHours"`
	WeatherModel   *string    `json:"weatherModel"`
	ErrorMessage   *string    `json:"errorMessage"`
}

func toForecastRunJSON(row database.ForecastRunRow) forecastRunJSON {
	return forecastRunJSON{
		ID:             row.ID,
		WindFarmID:     row.WindFarmID,
		StartedAt:      row.StartedAt,
		CompletedAt:    row.CompletedAt.Ptr(),
		Status:         row.Status,
		RecordsCreated: row.RecordsCreated,
		ForecastHours:  row.ForecastHours,
		WeatherModel:   row.WeatherModel.Ptr(),
		ErrorMessage:   row.ErrorMessage.Ptr(),
	}
}

type forecastJSON struct {
	WindFarmID           int64     `json:"windFarmId"`
	ForecastTime         time.Time `json:"forecastTime"`
	GenerationKw         float64   `json:"generationKw"`
	Granularity          string    `json:"granularity"`
	WindSpeed            *float64  `json:"windSpeed"`
	WindDirection        *float64  `json:"windDirection"`
	Temperature          *float64  `json:"temperature"`
	WeatherModel         string    `json:"weatherModel"`
	ForecastHorizonHours int       `json:"forecastHorizonHours"`
}

func toForecastJSON(row database.GenerationForecastRow) forecastJSON {
	return forecastJSON{
		WindFarmID:           row.WindFarmID,
		ForecastTime:         row.ForecastTime,
		GenerationKw:         row.Generation,
		Granularity:          row.Granularity.String(),
		WindSpeed:            row.WindSpeed.Ptr(),
		WindDirection:        row.WindDirection.Ptr(),
		Temperature:          row.Temperature.Ptr(),
		WeatherModel:         row.WeatherModel,
		ForecastHorizonHours: row.ForecastHorizonHours,
	}
}

type generationJSON struct {
	WindFarmID    int64                `json:"windFarmId"`
	Timestamp     time.Time            `json:"timestamp"`
	GenerationKw  float64              `json:"generationKw"`
	Granularity   string               `json:"granularity"`
	FleetStatuses types.FleetStatusMap `json:"fleetStatuses"`
	IsSynthetic   bool                 `json:"isSynthetic"`
	WindSpeed     *float64             `json:"windSpeed"`
	WindDirection *float64             `json:"windDirection"`
	Temperature   *float64             `json:"temperature"`
}

func toGenerationJSON(row database.GenerationRecordRow) generationJSON {
	return generationJSON{
		WindFarmID:    row.WindFarmID,
		Timestamp:     row.Timestamp,
		GenerationKw:  row.Generation,
		Granularity:   row.Granularity.String(),
		FleetStatuses: row.FleetStatuses,
		IsSynthetic:   row.IsSynthetic,
		WindSpeed:     row.WindSpeed.Ptr(),
		WindDirection: row.WindDirection.Ptr(),
		Temperature:   row.Temperature.Ptr(),
	}
}

type powerCurveJSON struct {
	ID    int64            `json:"id"`
	Name  *string          `json:"name"`
	Curve types.PowerCurve `json:"curve"`
}

func toPowerCurveJSON(row database.PowerCurveRow) powerCurveJSON {
	return powerCurveJSON{ID: row.ID, Name: row.Name.Ptr(), Curve: row.Curve}
}

type weatherRecordJSON struct {
	Time              time.Time `json:"time"`
	Temperature       *float64  `json:"temperature"`
	WindSpeed         *float64  `json:"windSpeed"`
	WindSpeed100m     *float64  `json:"windSpeed100m"`
	WindDirection     *float64  `json:"windDirection"`
	WindDirection100m *float64  `json:"windDirection100m"`
	Pressure          *float64  `json:"pressure"`
	Precipitation     *float64  `json:"precipitation"`
	CloudCover        *float64  `json:"cloudCover"`
}

func toWeatherRecordJSON(r types.WeatherRecord) weatherRecordJSON {
	return weatherRecordJSON{
		Time:              r.Time,
		Temperature:       r.Temperature.Ptr(),
		WindSpeed:         r.WindSpeed.Ptr(),
		WindSpeed100m:     r.WindSpeed100m.Ptr(),
		WindDirection:     r.WindDirection.Ptr(),
		WindDirection100m: r.WindDirection100m.Ptr(),
		Pressure:          r.Pressure.Ptr(),
		Precipitation:     r.Precipitation.Ptr(),
		CloudCover:        r.CloudCover.Ptr(),
	}
}

type logEntryJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Level     int       `json:"level"`
	Message   string    `json:"message"`
	Attrs     string    `json:"attrs"`
}

func toLogEntryJSON(row database.LogEntryRow) logEntryJSON {
	return logEntryJSON{
		Timestamp: row.Timestamp,
		Level:     row.Level,
		Message:   row.Message,
		Attrs:     row.Attrs,
	}
}

// farmTelemetryJSON is what the websocket hub broadcasts per farm.
type farmTelemetryJSON struct {
	WindFarmID    int64                `json:"windFarmId"`
	PowerKw       float64              `json:"powerKw"`
	AvgPowerKw    float64              `json:"avgPowerKw"`
	WindSpeed     *float64             `json:"windSpeed"`
	WindDirection *float64             `json:"windDirection"`
	Temperature   *float64             `json:"temperature"`
	Statuses      types.FleetStatusMap `json:"statuses"`
	LastSeen      time.Time            `json:"lastSeen"`
}

func toFarmTelemetryJSON(windFarmID int64, s scada.FarmSnapshot) farmTelemetryJSON {
	return farmTelemetryJSON{
		WindFarmID:    windFarmID,
		PowerKw:       s.PowerKw,
		AvgPowerKw:    s.AvgPowerKw,
		WindSpeed:     s.WindSpeed.Ptr(),
		WindDirection: s.WindDirection.Ptr(),
		Temperature:   s.Temperature.Ptr(),
		Statuses:      s.Statuses,
		LastSeen:      s.LastSeen,
	}
}
