package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/angas/windfarm-go/types"
)

const testYaml = `
api:
  address: "127.0.0.1"
  port: 8080

database:
  path: "/tmp/windfarm.db"
  run_retention_days: 30

weather:
  timeout_seconds: 10

forecast:
  hours_ahead: 72
  granularity: "15min"
  weather_model: "icon_global"
  run_at: "0 */6 * * *"

synthetic:
  noise_std_percent: 7.5
  random_outages: false

scada:
  host: "mqtt.example.com"
  port: 1883
  username: "windfarm"
  password: "secret"
  persist_run_at: "0 * * * *"

maintenance:
  run_at: "30 3 * * *"

logging:
  console_level: "DEBUG"
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYaml), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if c.Api.Address != "127.0.0.1" || c.Api.Port != 8080 {
		t.Errorf("unexpected api config: %+v", c.Api)
	}
	if c.Database.Path != "/tmp/windfarm.db" {
		t.Errorf("unexpected database path: %s", c.Database.Path)
	}
	if got := c.Database.GetRunRetentionDays(); got != 30 {
		t.Errorf("expected run retention 30, got %d", got)
	}
	if got := c.Database.GetBackupRetentionDays(); got != 90 {
		t.Errorf("expected default backup retention 90, got %d", got)
	}
	if got := c.Weather.GetTimeout(); got != 10*time.Second {
		t.Errorf("expected weather timeout 10s, got %s", got)
	}
	if got := c.Forecast.GetHoursAhead(); got != 72 {
		t.Errorf("expected 72 hours ahead, got %d", got)
	}
	if got := c.Forecast.GetGranularity(); got != types.Granularity15Min {
		t.Errorf("expected 15min granularity, got %s", got)
	}
	if got := c.Forecast.GetWeatherModel(); got != "icon_global" {
		t.Errorf("expected icon_global, got %s", got)
	}
	if c.Synthetic.GetRandomOutages() {
		t.Error("expected random outages disabled")
	}
	if got := c.Synthetic.GetNoiseStdPercent(); got != 7.5 {
		t.Errorf("expected noise std 7.5, got %f", got)
	}
	if !c.Synthetic.GetAddNoise() {
		t.Error("expected noise enabled by default")
	}
	if got := c.Synthetic.GetOutageDurationHours(); got != 4 {
		t.Errorf("expected default outage duration 4, got %d", got)
	}
	if c.Scada.Host != "mqtt.example.com" || c.Scada.Port != 1883 {
		t.Errorf("unexpected scada config: %+v", c.Scada)
	}
	if c.Maintenance.RunAt != "30 3 * * *" {
		t.Errorf("unexpected maintenance schedule: %s", c.Maintenance.RunAt)
	}
	if got := c.Logging.GetConsoleLevel(); got != slog.LevelDebug {
		t.Errorf("expected console level DEBUG, got %s", got)
	}
	if got := c.Logging.GetDbLevel(); got != slog.LevelInfo {
		t.Errorf("expected default db level INFO, got %s", got)
	}
	if got := c.TurbineLibrary.GetOedbTimeout(); got != 60*time.Second {
		t.Errorf("expected default OEDB timeout 60s, got %s", got)
	}
}
