package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"demand-api/config"
	v1 "demand-api/internal/controllers/http/v1"
	"demand-api/internal/mlmodel"
	"demand-api/internal/repositories"
	"demand-api/internal/services/predict"
	"demand-api/pkg/httpserver"
	"demand-api/pkg/observe"
)

// @title Taxi Demand Prediction API
// @version 1.0.0
// @description Predicts hourly taxi demand counts per geographic zone from a target date/time and a live weather forecast.
// @description Model artifacts (multi-output regression model, feature scaler, zone order, feature schema) load once at startup.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Prediction
// @tag.description Demand prediction operations
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	_ = godotenv.Load()

	cnf := config.NewConfig()

	writers := []io.Writer{os.Stdout}
	if cnf.SentryDSN != "" {
		writers = append(writers, observe.NewSentryHook(cnf.AppEnv, cnf.AppName, 0, cnf.IsDevelopment(), cnf.SentryDSN))
	}
	l := observe.NewZapLogger(cnf.AppName, writers...)

	// Every artifact must load and cross-validate before the server starts
	// accepting traffic; a half-initialized process must not serve.
	bundle, err := mlmodel.LoadBundle(cnf.ModelDir)
	if err != nil {
		l.Fatal("cannot load model artifacts", map[string]any{"dir": cnf.ModelDir, "err": err.Error()})
	}
	l.Info("model artifacts loaded", map[string]any{
		"version":  bundle.Version,
		"features": len(bundle.Schema),
		"zones":    len(bundle.Zones),
	})

	loc, err := time.LoadLocation(cnf.Timezone)
	if err != nil {
		l.Fatal("cannot load timezone", map[string]any{"timezone": cnf.Timezone, "err": err.Error()})
	}

	weatherRepo, err := repositories.InitWeatherRepository(cnf, l)
	if err != nil {
		l.Fatal("cannot init weather provider", map[string]any{"provider": cnf.Weather.Name, "err": err.Error()})
	}

	app := httpserver.InitFiberServer(cnf.AppName)

	service := predict.NewService(bundle, weatherRepo, loc, l)

	v1.NewRouter(
		app,
		service,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{"port": cnf.Port})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}
