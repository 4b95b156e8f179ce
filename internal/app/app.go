// Package app orchestrates the store, price fetcher, analysis and alert
// components behind the operations the HTTP surface exposes.
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"investment-tracker/alerts"
	"investment-tracker/config"
	"investment-tracker/internal/settings"
	"investment-tracker/models"
	"investment-tracker/repository"
	"investment-tracker/services"
)

// SettingsStore is the notification settings surface used by App
type SettingsStore interface {
	NotificationSettings() *models.NotificationSettings
	Masked() models.MaskedNotificationSettings
	Update(in settings.Input) (models.MaskedNotificationSettings, error)
}

// InsightProvider produces model commentary for a portfolio
type InsightProvider interface {
	PortfolioInsight(ctx context.Context, snapshot *models.PortfolioSnapshot, report *models.RecommendationReport) (*models.PortfolioInsight, error)
}

// Deps are the collaborators App is built from. Notifier, Settings and Insights may be nil.
type Deps struct {
	Store    repository.Store
	Prices   services.PriceFetcherInterface
	Notifier services.NotifierInterface
	Settings SettingsStore
	Insights InsightProvider
}

// App holds application dependencies using interfaces for testability
type App struct {
	cfg       *config.Config
	store     repository.Store
	prices    services.PriceFetcherInterface
	notifier  services.NotifierInterface
	settings  SettingsStore
	insights  InsightProvider
	evaluator *alerts.Evaluator
}

func New(cfg *config.Config, deps Deps) *App {
	return &App{
		cfg:       cfg,
		store:     deps.Store,
		prices:    deps.Prices,
		notifier:  deps.Notifier,
		settings:  deps.Settings,
		insights:  deps.Insights,
		evaluator: alerts.NewEvaluator(deps.Store, deps.Prices, deps.Notifier, cfg.Analysis.FetchConcurrency),
	}
}

// Evaluator exposes the alert evaluator so the background monitor can share it
func (a *App) Evaluator() *alerts.Evaluator {
	return a.evaluator
}

// Health reports whether the store is reachable
func (a *App) Health(ctx context.Context) error {
	if a.store == nil {
		return repository.ErrNoDatabase
	}
	return a.store.Health(ctx)
}

// Close releases the store
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// ParseUUID parses a path id, reporting malformed values as invalid input
func ParseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", models.ErrInvalidInput, id)
	}
	return parsed, nil
}

// parsePeriod falls back to the configured default when s is empty
func (a *App) parsePeriod(s string) (models.Period, error) {
	if s == "" {
		s = a.cfg.Analysis.DefaultPeriod
	}
	return models.ParsePeriod(s)
}

func (a *App) concurrency() int {
	return a.cfg.Analysis.FetchConcurrency
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", services.ErrNotFound, kind, id)
}
