package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/angas/windfarm-go/config"
	"github.com/angas/windfarm-go/database"
	"github.com/angas/windfarm-go/forecast"
	"github.com/angas/windfarm-go/logging"
	"github.com/angas/windfarm-go/openmeteo"
	"github.com/angas/windfarm-go/scada"
	"github.com/angas/windfarm-go/task"
	"github.com/angas/windfarm-go/turbinelib"
	"github.com/angas/windfarm-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	// A missing .env file is fine, the config file covers everything
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("windfarm is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	weather := openmeteo.New(cnfg.Weather.GetTimeout())
	forecastSvc := forecast.NewService(db, weather)
	syntheticSvc := forecast.NewSyntheticService(db, weather, forecast.NewSystemRng())

	sc := scada.New(
		cnfg.Scada.Host,
		cnfg.Scada.Port,
		cnfg.Scada.Username,
		cnfg.Scada.Password)
	if isDevMode() {
		logger.Info("dev mode, skipping scada connection")
	} else {
		if err := sc.Connect(); err != nil {
			panic(fmt.Sprintf("scada connection error: %v", err))
		}
		defer sc.Disconnect()
	}

	var library *turbinelib.Library
	if dir := cnfg.TurbineLibrary.CatalogDir; dir != nil && *dir != "" {
		library, err = turbinelib.NewLibrary(*dir)
		if err != nil {
			panic(fmt.Sprintf("turbine catalog error: %v", err))
		}
		defer library.Close()
	} else {
		logger.Info("no turbine catalog directory configured")
	}
	fetcher := turbinelib.NewFetcher(cnfg.TurbineLibrary.GetOedbTimeout())

	tasks := task.NewTasks(db, forecastSvc, sc.Data(), cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(db, sc.Data(), weather, forecastSvc, syntheticSvc, library, fetcher, cnfg, Version)
	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
