package openmeteo

const (
	BASE_URL_FORECAST = "https://api.open-meteo.com/v1/forecast"
	BASE_URL_ARCHIVE  = "https://archive-api.open-meteo.com/v1/archive"
)

// Weather models accepted by the forecast endpoint.
var WeatherModels = map[string]string{
	"best_match":                  "Best Match (Auto)",
	"icon_d2":                     "ICON-D2 (15min, Central Europe)",
	"icon_global":                 "ICON Global",
	"ecmwf_ifs04":                 "ECMWF IFS",
	"gfs_seamless":                "GFS (NOAA)",
	"meteofrance_arpege_seamless": "Météo-France ARPEGE",
	"jma_seamless":                "JMA (Japan)",
	"gem_seamless":                "GEM (Canada)",
}

// Hourly variables requested from the forecast endpoint.
var forecastVars = []string{
	"temperature_2m",
	"wind_speed_10m",
	"wind_speed_80m",
	"wind_speed_100m",
	"wind_direction_10m",
	"wind_direction_80m",
	"wind_direction_100m",
	"temperature_80m",
	"pressure_msl",
	"precipitation",
	"cloud_cover",
}

// The archive endpoint exposes a smaller variable set (no 80m level).
var archiveVars = []string{
	"temperature_2m",
	"wind_speed_10m",
	"wind_speed_100m",
	"wind_direction_10m",
	"wind_direction_100m",
	"pressure_msl",
	"precipitation",
	"cloud_cover",
}

// Series values are nullable, any sample can have gaps.
type apiSeries struct {
	Time              []string   `json:"time"`
	Temperature2m     []*float64 `json:"temperature_2m"`
	Temperature80m    []*float64 `json:"temperature_80m"`
	WindSpeed10m      []*float64 `json:"wind_speed_10m"`
	WindSpeed80m      []*float64 `json:"wind_speed_80m"`
	WindSpeed100m     []*float64 `json:"wind_speed_100m"`
	WindDirection10m  []*float64 `json:"wind_direction_10m"`
	WindDirection80m  []*float64 `json:"wind_direction_80m"`
	WindDirection100m []*float64 `json:"wind_direction_100m"`
	PressureMsl       []*float64 `json:"pressure_msl"`
	Precipitation     []*float64 `json:"precipitation"`
	CloudCover        []*float64 `json:"cloud_cover"`
}

type apiResponse struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Hourly     *apiSeries `json:"hourly"`
	Minutely15 *apiSeries `json:"minutely_15"`
}
