package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investment-tracker/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.db")
	repo, err := NewSQLiteRepository(context.Background(), path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

func newPostgresStore(t *testing.T) Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping postgres tests")
	}
	ctx := context.Background()
	repo, err := NewRepository(ctx, url)
	if err != nil {
		t.Fatalf("NewRepository() error: %v", err)
	}
	if _, err := repo.pool.Exec(ctx, `DELETE FROM alerts; DELETE FROM assets`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

// stores runs fn against every backend available in this environment
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, newPostgresStore(t)) })
}

func testAsset(t *testing.T, symbol string, assetType models.AssetType, qty, price string) *models.Asset {
	t.Helper()
	a, err := models.NewAsset(symbol, "", assetType,
		decimal.RequireFromString(qty), decimal.RequireFromString(price),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewAsset() error: %v", err)
	}
	return a
}

func testAlert(symbol string, alertType models.AlertType, target float64) *models.Alert {
	a := models.NewAlert(symbol, models.AssetTypeStock, alertType, target, models.ChannelEmail)
	a.Email = "me@example.com"
	return a
}

func TestStore_AssetLifecycle(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		first := testAsset(t, "aapl", models.AssetTypeStock, "10", "150.25")
		second := testAsset(t, "btc", models.AssetTypeCrypto, "0.5", "30000")
		second.CreatedAt = first.CreatedAt.Add(time.Second)

		for _, a := range []*models.Asset{first, second} {
			if err := s.CreateAsset(ctx, a); err != nil {
				t.Fatalf("CreateAsset(%s) error: %v", a.Symbol, err)
			}
		}

		assets, err := s.ListAssets(ctx)
		if err != nil {
			t.Fatalf("ListAssets() error: %v", err)
		}
		if len(assets) != 2 {
			t.Fatalf("expected 2 assets, got %d", len(assets))
		}
		if assets[0].Symbol != "AAPL" || assets[1].Symbol != "BTC" {
			t.Errorf("unexpected order: %s, %s", assets[0].Symbol, assets[1].Symbol)
		}
		if !assets[0].PurchasePrice.Equal(decimal.RequireFromString("150.25")) {
			t.Errorf("purchase price = %s, want 150.25", assets[0].PurchasePrice)
		}
		if !assets[1].Quantity.Equal(decimal.RequireFromString("0.5")) {
			t.Errorf("quantity = %s, want 0.5", assets[1].Quantity)
		}

		got, err := s.GetAsset(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetAsset() error: %v", err)
		}
		if got == nil || got.AssetType != models.AssetTypeStock || !got.PurchaseDate.Equal(first.PurchaseDate) {
			t.Errorf("GetAsset() = %+v", got)
		}

		deleted, err := s.DeleteAsset(ctx, first.ID)
		if err != nil || !deleted {
			t.Fatalf("DeleteAsset() = %v, %v", deleted, err)
		}
		deleted, err = s.DeleteAsset(ctx, first.ID)
		if err != nil || deleted {
			t.Errorf("second DeleteAsset() = %v, %v; want false, nil", deleted, err)
		}

		missing, err := s.GetAsset(ctx, first.ID)
		if err != nil || missing != nil {
			t.Errorf("GetAsset() after delete = %v, %v; want nil, nil", missing, err)
		}
	})
}

func TestStore_AlertCRUDAndFilters(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		price := 180.5
		above := testAlert("AAPL", models.AlertTypePriceAbove, 200)
		above.CurrentPriceAtCreation = &price
		above.Message = "sell some"
		below := testAlert("MSFT", models.AlertTypePriceBelow, 300)
		below.CreatedAt = above.CreatedAt.Add(time.Second)

		for _, a := range []*models.Alert{above, below} {
			if err := s.CreateAlert(ctx, a); err != nil {
				t.Fatalf("CreateAlert() error: %v", err)
			}
		}

		all, err := s.ListAlerts(ctx, models.AlertFilter{})
		if err != nil {
			t.Fatalf("ListAlerts() error: %v", err)
		}
		if len(all) != 2 || all[0].Symbol != "MSFT" {
			t.Fatalf("expected newest first, got %+v", all)
		}

		bySymbol, err := s.ListAlerts(ctx, models.AlertFilter{Symbol: "aapl"})
		if err != nil {
			t.Fatalf("ListAlerts(symbol) error: %v", err)
		}
		if len(bySymbol) != 1 || bySymbol[0].ID != above.ID {
			t.Fatalf("symbol filter returned %+v", bySymbol)
		}
		if bySymbol[0].CurrentPriceAtCreation == nil || *bySymbol[0].CurrentPriceAtCreation != 180.5 {
			t.Errorf("current_price_at_creation not round-tripped")
		}
		if bySymbol[0].TriggeredAt != nil || bySymbol[0].TriggeredPrice != nil {
			t.Errorf("new alert should have no trigger record")
		}

		above.TargetValue = 210
		above.Channel = models.ChannelTelegram
		above.TelegramChatID = "42"
		updated, err := s.UpdateAlert(ctx, above)
		if err != nil || !updated {
			t.Fatalf("UpdateAlert() = %v, %v", updated, err)
		}
		got, err := s.GetAlert(ctx, above.ID)
		if err != nil {
			t.Fatalf("GetAlert() error: %v", err)
		}
		if got.TargetValue != 210 || got.Channel != models.ChannelTelegram || got.TelegramChatID != "42" || got.Message != "sell some" {
			t.Errorf("update not persisted: %+v", got)
		}

		if ok, err := s.UpdateAlert(ctx, testAlert("X", models.AlertTypePriceAbove, 1)); err != nil || ok {
			t.Errorf("UpdateAlert(unknown) = %v, %v; want false, nil", ok, err)
		}

		deleted, err := s.DeleteAlert(ctx, below.ID)
		if err != nil || !deleted {
			t.Fatalf("DeleteAlert() = %v, %v", deleted, err)
		}
		if a, err := s.GetAlert(ctx, below.ID); err != nil || a != nil {
			t.Errorf("GetAlert() after delete = %v, %v", a, err)
		}
	})
}

func TestStore_TriggerAndStatusTransitions(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alert := testAlert("AAPL", models.AlertTypePriceAbove, 200)
		if err := s.CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert() error: %v", err)
		}

		at := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
		won, err := s.MarkAlertTriggered(ctx, alert.ID, 205.5, at)
		if err != nil || !won {
			t.Fatalf("MarkAlertTriggered() = %v, %v", won, err)
		}
		won, err = s.MarkAlertTriggered(ctx, alert.ID, 207, at.Add(time.Minute))
		if err != nil || won {
			t.Errorf("second MarkAlertTriggered() = %v, %v; want false, nil", won, err)
		}

		got, _ := s.GetAlert(ctx, alert.ID)
		if got.Status != models.AlertStatusTriggered {
			t.Errorf("status = %s, want triggered", got.Status)
		}
		if got.TriggeredPrice == nil || *got.TriggeredPrice != 205.5 {
			t.Errorf("triggered price = %v, want 205.5", got.TriggeredPrice)
		}
		if got.TriggeredAt == nil || !got.TriggeredAt.Equal(at) {
			t.Errorf("triggered at = %v, want %v", got.TriggeredAt, at)
		}

		triggered, _ := s.ListAlerts(ctx, models.AlertFilter{Status: models.AlertStatusTriggered})
		if len(triggered) != 1 {
			t.Errorf("expected 1 triggered alert, got %d", len(triggered))
		}

		if ok, err := s.SetAlertStatus(ctx, alert.ID, models.AlertStatusActive); err != nil || !ok {
			t.Fatalf("SetAlertStatus(active) = %v, %v", ok, err)
		}
		got, _ = s.GetAlert(ctx, alert.ID)
		if got.Status != models.AlertStatusActive || got.TriggeredAt != nil || got.TriggeredPrice != nil {
			t.Errorf("enable should clear the trigger record: %+v", got)
		}

		if ok, err := s.SetAlertStatus(ctx, alert.ID, models.AlertStatusDisabled); err != nil || !ok {
			t.Fatalf("SetAlertStatus(disabled) = %v, %v", ok, err)
		}
		if won, _ := s.MarkAlertTriggered(ctx, alert.ID, 300, at); won {
			t.Error("disabled alert must not trigger")
		}

		_, err = s.SetAlertStatus(ctx, alert.ID, models.AlertStatusTriggered)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("SetAlertStatus(triggered) error = %v, want ErrInvalidInput", err)
		}
		if ok, err := s.SetAlertStatus(ctx, uuid.New(), models.AlertStatusActive); err != nil || ok {
			t.Errorf("SetAlertStatus(unknown) = %v, %v; want false, nil", ok, err)
		}
	})
}

func TestStore_ConcurrentTriggerHasOneWinner(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alert := testAlert("NVDA", models.AlertTypePriceBelow, 100)
		if err := s.CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert() error: %v", err)
		}

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				won, err := s.MarkAlertTriggered(ctx, alert.ID, 95, time.Now())
				if err != nil {
					t.Errorf("MarkAlertTriggered() error: %v", err)
				}
				if won {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		if wins.Load() != 1 {
			t.Errorf("expected exactly 1 winner, got %d", wins.Load())
		}
	})
}

func TestStore_AlertStats(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alerts := []*models.Alert{
			testAlert("AAPL", models.AlertTypePriceAbove, 200),
			testAlert("MSFT", models.AlertTypePriceBelow, 300),
			testAlert("TSLA", models.AlertTypePercentChange, 5),
		}
		for _, a := range alerts {
			if err := s.CreateAlert(ctx, a); err != nil {
				t.Fatalf("CreateAlert() error: %v", err)
			}
		}
		s.MarkAlertTriggered(ctx, alerts[0].ID, 201, time.Now())
		s.SetAlertStatus(ctx, alerts[1].ID, models.AlertStatusDisabled)

		stats, err := s.AlertStats(ctx)
		if err != nil {
			t.Fatalf("AlertStats() error: %v", err)
		}
		want := models.AlertStats{Total: 3, Active: 1, Triggered: 1, Disabled: 1}
		if *stats != want {
			t.Errorf("AlertStats() = %+v, want %+v", *stats, want)
		}
	})
}

func TestStore_Health(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		if err := s.Health(context.Background()); err != nil {
			t.Errorf("Health() error: %v", err)
		}
	})
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portfolio.db")

	repo, err := NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	asset := testAsset(t, "ETH", models.AssetTypeCrypto, "2", "1800")
	if err := repo.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer repo.Close()

	assets, err := repo.ListAssets(ctx)
	if err != nil {
		t.Fatalf("ListAssets() error: %v", err)
	}
	if len(assets) != 1 || assets[0].ID != asset.ID {
		t.Errorf("expected the asset to survive reopen, got %+v", assets)
	}
}

func TestNilRepository(t *testing.T) {
	ctx := context.Background()

	var pg *Repository
	if _, err := pg.ListAssets(ctx); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Repository.ListAssets() error = %v, want ErrNoDatabase", err)
	}

	lite := &SQLiteRepository{}
	if _, err := lite.ListAlerts(ctx, models.AlertFilter{}); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("SQLiteRepository.ListAlerts() error = %v, want ErrNoDatabase", err)
	}
	if _, err := lite.DeleteAsset(ctx, uuid.New()); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("SQLiteRepository.DeleteAsset() error = %v, want ErrNoDatabase", err)
	}
}
