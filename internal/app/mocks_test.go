package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"investment-tracker/config"
	"investment-tracker/internal/settings"
	"investment-tracker/models"
	"investment-tracker/repository"
	"investment-tracker/services"
)

type mockPrices struct {
	mu        sync.Mutex
	quotes    map[models.SymbolKey]models.Quote
	histories map[models.SymbolKey][]float64
	calls     int
}

func newMockPrices() *mockPrices {
	return &mockPrices{
		quotes:    make(map[models.SymbolKey]models.Quote),
		histories: make(map[models.SymbolKey][]float64),
	}
}

func (m *mockPrices) withQuote(symbol string, t models.AssetType, price, changePct float64) *mockPrices {
	m.quotes[models.SymbolKey{Symbol: symbol, AssetType: t}] = models.Quote{
		Symbol: symbol, Name: symbol + " Inc", Price: price, DailyChangePercent: changePct, Currency: "USD",
	}
	return m
}

func (m *mockPrices) withHistory(symbol string, t models.AssetType, closes ...float64) *mockPrices {
	m.histories[models.SymbolKey{Symbol: symbol, AssetType: t}] = closes
	return m
}

func (m *mockPrices) GetCurrentPrice(ctx context.Context, symbol string, assetType models.AssetType) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	q, ok := m.quotes[models.SymbolKey{Symbol: symbol, AssetType: assetType}]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrPriceUnavailable, symbol, services.ErrNotFound)
	}
	return &q, nil
}

func (m *mockPrices) GetHistory(ctx context.Context, symbol string, assetType models.AssetType, period models.Period) ([]models.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	closes, ok := m.histories[models.SymbolKey{Symbol: symbol, AssetType: assetType}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPriceUnavailable, symbol)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points, nil
}

func (m *mockPrices) Search(ctx context.Context, query string, assetType models.AssetType) ([]models.SearchResult, error) {
	return []models.SearchResult{{Symbol: "AAPL", Name: "Apple Inc.", AssetType: models.AssetTypeStock}}, nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (m *mockNotifier) Send(ctx context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

type mockInsights struct {
	gotAssets int
}

func (m *mockInsights) PortfolioInsight(ctx context.Context, snapshot *models.PortfolioSnapshot, report *models.RecommendationReport) (*models.PortfolioInsight, error) {
	m.gotAssets = len(snapshot.Assets)
	return &models.PortfolioInsight{Commentary: "Looks balanced."}, nil
}

type fixture struct {
	app      *App
	store    repository.Store
	prices   *mockPrices
	notifier *mockNotifier
}

func newFixture(t *testing.T, prices *mockPrices) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := repository.NewSQLiteRepository(context.Background(), filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(store.Close)

	cfg := config.NewTestConfig()
	st, err := settings.NewStore(dir, "test", settings.DefaultsFromConfig(cfg.Notification))
	if err != nil {
		t.Fatalf("settings.NewStore() error: %v", err)
	}

	notifier := &mockNotifier{}
	app := New(cfg, Deps{Store: store, Prices: prices, Notifier: notifier, Settings: st})
	return &fixture{app: app, store: store, prices: prices, notifier: notifier}
}

func ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
