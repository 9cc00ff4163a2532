package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/angas/windfarm-go/logging"
	"github.com/angas/windfarm-go/types"
)

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// How many days forecast runs should be stored before they get purged
	RunRetentionDays *int `mapstructure:"run_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetRunRetentionDays() int {
	if d.RunRetentionDays == nil {
		return 90
	}
	return *d.RunRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigWeather struct {
	// HTTP timeout against the weather provider in seconds, default: 30
	TimeoutSeconds *int `mapstructure:"timeout_seconds"`
}

func (w AppConfigWeather) GetTimeout() time.Duration {
	if w.TimeoutSeconds == nil {
		return 30 * time.Second
	}
	return time.Duration(*w.TimeoutSeconds) * time.Second
}

type AppConfigForecast struct {
	// How many hours ahead to forecast, capped at 168
	HoursAhead int `mapstructure:"hours_ahead"`
	// Output record spacing: "1min", "5min", "15min", "30min" or "60min"
	Granularity string `mapstructure:"granularity"`
	// Open-Meteo model name, e.g. "best_match" or "icon_global"
	WeatherModel string `mapstructure:"weather_model"`
	// Cron expression for the scheduled refresh of all farms
	RunAt string `mapstructure:"run_at"`
}

func (f AppConfigForecast) GetHoursAhead() int {
	if f.HoursAhead < 1 {
		return 48
	}
	return f.HoursAhead
}

func (f AppConfigForecast) GetGranularity() types.Granularity {
	return types.ParseGranularity(f.Granularity)
}

func (f AppConfigForecast) GetWeatherModel() string {
	if f.WeatherModel == "" {
		return "best_match"
	}
	return f.WeatherModel
}

type AppConfigSynthetic struct {
	AddNoise            *bool    `mapstructure:"add_noise"`
	NoiseStdPercent     *float64 `mapstructure:"noise_std_percent"`
	RandomOutages       *bool    `mapstructure:"random_outages"`
	OutageProbability   *float64 `mapstructure:"outage_probability"`
	OutageDurationHours *int     `mapstructure:"outage_duration_hours"`
}

func (s AppConfigSynthetic) GetAddNoise() bool {
	if s.AddNoise == nil {
		return true
	}
	return *s.AddNoise
}

func (s AppConfigSynthetic) GetNoiseStdPercent() float64 {
	if s.NoiseStdPercent == nil {
		return 5.0
	}
	return *s.NoiseStdPercent
}

func (s AppConfigSynthetic) GetRandomOutages() bool {
	if s.RandomOutages == nil {
		return true
	}
	return *s.RandomOutages
}

func (s AppConfigSynthetic) GetOutageProbability() float64 {
	if s.OutageProbability == nil {
		return 0.01
	}
	return *s.OutageProbability
}

func (s AppConfigSynthetic) GetOutageDurationHours() int {
	if s.OutageDurationHours == nil {
		return 4
	}
	return *s.OutageDurationHours
}

type AppConfigScada struct {
	Host     string
	Port     int16
	Username string
	Password string
	// Cron expression for persisting telemetry snapshots as actuals
	PersistRunAt string `mapstructure:"persist_run_at"`
}

type AppConfigTurbineLibrary struct {
	// Directory with local *.json turbine catalogs, watched for changes
	CatalogDir *string `mapstructure:"catalog_dir"`
	// HTTP timeout against OEDB in seconds, default: 60
	OedbTimeoutSeconds *int `mapstructure:"oedb_timeout_seconds"`
}

func (t AppConfigTurbineLibrary) GetOedbTimeout() time.Duration {
	if t.OedbTimeoutSeconds == nil {
		return 60 * time.Second
	}
	return time.Duration(*t.OedbTimeoutSeconds) * time.Second
}

type AppConfigMaintenance struct {
	// Cron expression for log/run purging and database backup
	RunAt string `mapstructure:"run_at"`
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api            AppConfigApi
	Database       AppConfigDatabase
	Weather        AppConfigWeather
	Forecast       AppConfigForecast
	Synthetic      AppConfigSynthetic
	Scada          AppConfigScada
	TurbineLibrary AppConfigTurbineLibrary `mapstructure:"turbine_library"`
	Maintenance    AppConfigMaintenance
	Logging        AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
