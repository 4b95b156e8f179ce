// Package main runs the investment tracker HTTP server and the background alert monitor.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investment-tracker/alerts"
	"investment-tracker/config"
	"investment-tracker/internal/api"
	"investment-tracker/internal/app"
	"investment-tracker/internal/settings"
	"investment-tracker/observability"
	"investment-tracker/repository"
	"investment-tracker/services"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	observability.InitLoggerWithLevel(cfg.Production, observability.ParseLevel(cfg.LogLevel))
	observability.InitMetrics()
	if envErr != nil {
		observability.Debug("no .env file found, using environment variables")
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		observability.Fatal("failed to open store", "error", err)
	}

	settingsStore, err := settings.NewStore(cfg.Settings.DataDir, cfg.Settings.Passphrase, settings.DefaultsFromConfig(cfg.Notification))
	if err != nil {
		observability.Fatal("failed to initialize settings store", "error", err)
	}

	deps := app.Deps{
		Store:    store,
		Prices:   services.NewPriceServiceFromConfig(cfg),
		Notifier: services.NewDispatcher(settingsStore, services.NewEmailService(), services.NewTelegramService(cfg.Notification.TelegramBaseURL)),
		Settings: settingsStore,
	}
	if cfg.HasBedrock() {
		model, err := services.NewBedrockService(ctx, cfg.Bedrock)
		if err != nil {
			observability.WithError(err).Warn("Bedrock unavailable, portfolio insights disabled")
		} else {
			deps.Insights = services.NewInsightService(model)
		}
	} else {
		observability.Info("AWS_REGION or BEDROCK_MODEL_ID not set, portfolio insights disabled")
	}

	application := app.New(cfg, deps)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		alerts.NewMonitor(application.Evaluator(), cfg.AlertCheckInterval()).Run(monitorCtx)
	}()

	router := api.NewRouter(api.NewHandler(application, cfg), cfg)
	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.TimeoutSeconds+5) * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port, "url", fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.WithError(err).Error("server forced to shutdown")
	}
	stopMonitor()
	<-monitorDone
	application.Close()
	observability.Info("server stopped")
}

// openStore picks Postgres when DATABASE_URL is set and SQLite otherwise
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.UsesPostgres() {
		repo, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		observability.Info("connected to postgres")
		return repo, nil
	}
	repo, err := repository.NewSQLiteRepository(ctx, cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}
	observability.Info("using sqlite", "path", cfg.Database.SQLitePath)
	return repo, nil
}
