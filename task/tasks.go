package task

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/forecast"
	"github.com/angas/windfarm-go/scada"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	ForecastTask    func()
	ActualsTask     func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	forecastSvc *forecast.Service,
	scadaData *scada.InMemData,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		ForecastTask:    NewForecastTask(logger.With(slog.String("task", "forecast")), db, forecastSvc, cnfg.Forecast),
		ActualsTask:     NewActualsTask(logger.With(slog.String("task", "actuals")), db, scadaData, cnfg.Forecast),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Forecast.RunAt, t.ForecastTask)
	if err != nil {
		panic(err)
	}
	persistAt := t.cnfg.Scada.PersistRunAt
	if persistAt == "" {
		persistAt = "@hourly"
	}
	_, err = t.cron.AddFunc(persistAt, t.ActualsTask)
	if err != nil {
		panic(err)
	}
	maintenanceAt := t.cnfg.Maintenance.RunAt
	if maintenanceAt == "" {
		maintenanceAt = "30 2 * * *"
	}
	_, err = t.cron.AddFunc(maintenanceAt, t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
