package www

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/forecast"
	"github.com/angas/windfarm-go/scada"
	"github.com/angas/windfarm-go/turbinelib"
	"github.com/angas/windfarm-go/types"
)

type Server struct {
	logger    *slog.Logger
	config    config.AppConfigApi
	db        *database.Database
	scada     *scada.InMemData
	hub       *Hub
	version   string
	startedAt time.Time
}

// StartServer wires up the JSON API and the websocket hub. The library may
// be nil when no turbine catalog directory is configured.
func StartServer(
	db *database.Database,
	scadaData *scada.InMemData,
	weather types.WeatherProvider,
	forecastSvc *forecast.Service,
	syntheticSvc *forecast.SyntheticService,
	library *turbinelib.Library,
	fetcher *turbinelib.Fetcher,
	cnfg *config.AppConfig,
	version string,
) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger:    logger,
		config:    cnfg.Api,
		db:        db,
		scada:     scadaData,
		hub:       NewHub(logger),
		version:   version,
		startedAt: time.Now().UTC(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	handle := func(pattern string, h http.HandlerFunc) {
		http.Handle(pattern, logReqMW(h))
	}

	handle("POST /api/forecast",
		NewForecastHandler(logger.With(slog.String("handler", "forecast")), cnfg.Forecast, forecastSvc, s.hub))
	handle("POST /api/forecast/historical",
		NewHistoricalForecastHandler(logger.With(slog.String("handler", "forecast_historical")), cnfg.Forecast, forecastSvc, s.hub))
	handle("POST /api/synthetic",
		NewSyntheticHandler(logger.With(slog.String("handler", "synthetic")), cnfg.Forecast, cnfg.Synthetic, syntheticSvc))

	handle("GET /api/forecast",
		NewForecastListHandler(logger.With(slog.String("handler", "forecast_list")), db))
	handle("GET /api/generation",
		NewGenerationListHandler(logger.With(slog.String("handler", "generation_list")), db))
	handle("GET /api/runs",
		NewRunListHandler(logger.With(slog.String("handler", "run_list")), db))

	handle("GET /api/farms",
		NewFarmListHandler(logger.With(slog.String("handler", "farm_list")), db))
	handle("POST /api/farms",
		NewFarmCreateHandler(logger.With(slog.String("handler", "farm_create")), db))
	handle("GET /api/farms/{id}",
		NewFarmGetHandler(logger.With(slog.String("handler", "farm_get")), db))
	handle("DELETE /api/farms/{id}",
		NewFarmDeleteHandler(logger.With(slog.String("handler", "farm_delete")), db))

	handle("GET /api/locations",
		NewLocationListHandler(logger.With(slog.String("handler", "location_list")), db))
	handle("POST /api/locations",
		NewLocationCreateHandler(logger.With(slog.String("handler", "location_create")), db))

	handle("GET /api/turbines",
		NewTurbineListHandler(logger.With(slog.String("handler", "turbine_list")), db))
	handle("POST /api/turbines",
		NewTurbineCreateHandler(logger.With(slog.String("handler", "turbine_create")), db))
	handle("GET /api/power_curves",
		NewPowerCurveListHandler(logger.With(slog.String("handler", "power_curve_list")), db))

	handle("GET /api/fleets",
		NewFleetListHandler(logger.With(slog.String("handler", "fleet_list")), db))
	handle("POST /api/fleets",
		NewFleetCreateHandler(logger.With(slog.String("handler", "fleet_create")), db))
	handle("DELETE /api/fleets/{id}",
		NewFleetDeleteHandler(logger.With(slog.String("handler", "fleet_delete")), db))

	handle("GET /api/weather",
		NewWeatherHandler(logger.With(slog.String("handler", "weather")), weather))

	handle("GET /api/turbine_library",
		NewLibraryListHandler(logger.With(slog.String("handler", "library_list")), library))
	handle("POST /api/turbine_library/import",
		NewLibraryImportHandler(logger.With(slog.String("handler", "library_import")), db, library))
	handle("POST /api/turbine_library/import_oedb",
		NewOedbImportHandler(logger.With(slog.String("handler", "oedb_import")), db, fetcher))

	handle("GET /api/log",
		NewLogHandler(logger.With(slog.String("handler", "log")), db))
	handle("GET /api/sys_info",
		NewSysInfoHandler(logger.With(slog.String("handler", "sys_info")), s))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Second * 2)
	defer ticker.Stop()

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			farms := make([]farmTelemetryJSON, 0)
			for _, farmID := range s.scada.FarmIDs() {
				if snapshot, ok := s.scada.Snapshot(farmID); ok {
					farms = append(farms, toFarmTelemetryJSON(farmID, snapshot))
				}
			}
			if len(farms) == 0 {
				continue
			}
			broadcastJSON(s.logger, s.hub, "telemetry", farms)
		}
	}
}
