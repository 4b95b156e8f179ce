package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"investment-tracker/models"
)

func newAlert(symbol string, alertType models.AlertType, target float64) *models.Alert {
	a := models.NewAlert(symbol, models.AssetTypeStock, alertType, target, models.ChannelEmail)
	a.Email = "me@example.com"
	return a
}

func TestShouldTrigger(t *testing.T) {
	tests := []struct {
		name      string
		alertType models.AlertType
		target    float64
		quote     models.Quote
		want      bool
	}{
		{"above fires past target", models.AlertTypePriceAbove, 150, models.Quote{Price: 151}, true},
		{"above fires at target", models.AlertTypePriceAbove, 150, models.Quote{Price: 150}, true},
		{"above holds under target", models.AlertTypePriceAbove, 150, models.Quote{Price: 149}, false},
		{"below fires under target", models.AlertTypePriceBelow, 150, models.Quote{Price: 149}, true},
		{"below holds over target", models.AlertTypePriceBelow, 150, models.Quote{Price: 151}, false},
		{"percent fires on drop", models.AlertTypePercentChange, 5, models.Quote{Price: 90, DailyChangePercent: -6}, true},
		{"percent fires on rise", models.AlertTypePercentChange, 5, models.Quote{Price: 110, DailyChangePercent: 5}, true},
		{"percent holds in band", models.AlertTypePercentChange, 5, models.Quote{Price: 101, DailyChangePercent: 4.9}, false},
		{"unknown type never fires", models.AlertType("weird"), 1, models.Quote{Price: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAlert("AAPL", tt.alertType, tt.target)
			if got := ShouldTrigger(a, &tt.quote); got != tt.want {
				t.Errorf("ShouldTrigger() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck_TriggersOnceAndNotifies(t *testing.T) {
	ctx := context.Background()
	alert := newAlert("AAPL", models.AlertTypePriceAbove, 150)
	store := newMemoryAlertStore(alert)
	prices := newMockPrices(&models.Quote{Symbol: "AAPL", Price: 151})
	notifier := &mockNotifier{}
	ev := NewEvaluator(store, prices, notifier, 4)

	result, err := ev.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Checked != 1 || result.Triggered != 1 || result.Errors != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(result.TriggeredAlerts) != 1 || result.TriggeredAlerts[0].TriggeredPrice == nil {
		t.Fatalf("triggered alert should carry its trigger record: %+v", result.TriggeredAlerts)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Channel != models.ChannelEmail || notifier.sent[0].Recipient != "me@example.com" {
		t.Errorf("unexpected notification %+v", notifier.sent[0])
	}

	stored, _ := store.GetAlert(ctx, alert.ID)
	if stored.Status != models.AlertStatusTriggered || *stored.TriggeredPrice != 151 {
		t.Errorf("store should hold the trigger: %+v", stored)
	}

	// second pass: the alert is no longer active
	result, err = ev.Check(ctx)
	if err != nil {
		t.Fatalf("second Check() error: %v", err)
	}
	if result.Checked != 0 || result.Triggered != 0 {
		t.Errorf("triggered alert must not be checked again: %+v", result)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("triggered alert must not be re-notified, got %d sends", len(notifier.sent))
	}

	// enable re-arms it
	store.SetAlertStatus(ctx, alert.ID, models.AlertStatusActive)
	result, _ = ev.Check(ctx)
	if result.Triggered != 1 || len(notifier.sent) != 2 {
		t.Errorf("re-armed alert should fire again: %+v, sends=%d", result, len(notifier.sent))
	}
}

func TestCheck_BelowTargetDoesNotFire(t *testing.T) {
	alert := newAlert("AAPL", models.AlertTypePriceAbove, 150)
	store := newMemoryAlertStore(alert)
	notifier := &mockNotifier{}
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "AAPL", Price: 149}), notifier, 4)

	result, err := ev.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Checked != 1 || result.Triggered != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("no notification expected, got %d", len(notifier.sent))
	}
}

func TestCheck_GroupsBySymbol(t *testing.T) {
	store := newMemoryAlertStore(
		newAlert("AAPL", models.AlertTypePriceAbove, 150),
		newAlert("AAPL", models.AlertTypePriceBelow, 100),
		newAlert("AAPL", models.AlertTypePercentChange, 10),
		newAlert("MSFT", models.AlertTypePriceAbove, 500),
	)
	prices := newMockPrices(
		&models.Quote{Symbol: "AAPL", Price: 120},
		&models.Quote{Symbol: "MSFT", Price: 400},
	)
	ev := NewEvaluator(store, prices, nil, 4)

	result, err := ev.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Checked != 4 {
		t.Errorf("expected 4 checked, got %d", result.Checked)
	}
	if prices.calls["AAPL"] != 1 || prices.calls["MSFT"] != 1 {
		t.Errorf("expected one fetch per symbol, got %v", prices.calls)
	}
}

func TestCheck_PriceFailureCountsErrors(t *testing.T) {
	store := newMemoryAlertStore(
		newAlert("AAPL", models.AlertTypePriceAbove, 150),
		newAlert("GONE", models.AlertTypePriceAbove, 1),
		newAlert("GONE", models.AlertTypePriceBelow, 1),
	)
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "AAPL", Price: 160}), nil, 2)

	result, err := ev.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Checked != 1 || result.Triggered != 1 || result.Errors != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestCheck_NotificationFailureKeepsTrigger(t *testing.T) {
	ctx := context.Background()
	alert := newAlert("AAPL", models.AlertTypePriceAbove, 150)
	alert.Channel = models.ChannelBoth
	alert.TelegramChatID = "42"
	store := newMemoryAlertStore(alert)
	notifier := &mockNotifier{err: errors.New("smtp down")}
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "AAPL", Price: 155}), notifier, 1)

	result, err := ev.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Triggered != 1 || result.Errors != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(notifier.sent) != 2 {
		t.Errorf("both channels should be attempted, got %d", len(notifier.sent))
	}
	stored, _ := store.GetAlert(ctx, alert.ID)
	if stored.Status != models.AlertStatusTriggered {
		t.Errorf("trigger should stand after a failed delivery, status=%s", stored.Status)
	}
}

func TestCheck_StoreErrors(t *testing.T) {
	store := newMemoryAlertStore(newAlert("AAPL", models.AlertTypePriceAbove, 150))
	store.markErr = errors.New("disk full")
	notifier := &mockNotifier{}
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "AAPL", Price: 155}), notifier, 1)

	result, err := ev.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Errors != 1 || result.Triggered != 0 || len(notifier.sent) != 0 {
		t.Errorf("failed transition must not notify: %+v sends=%d", result, len(notifier.sent))
	}

	store.listErr = errors.New("connection refused")
	if _, err := ev.Check(context.Background()); err == nil {
		t.Error("expected list error to surface")
	}
}

func TestCheck_NoActiveAlerts(t *testing.T) {
	disabled := newAlert("AAPL", models.AlertTypePriceAbove, 1)
	disabled.Disable()
	prices := newMockPrices(&models.Quote{Symbol: "AAPL", Price: 100})
	ev := NewEvaluator(newMemoryAlertStore(disabled), prices, nil, 1)

	result, err := ev.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if result.Checked != 0 || result.TriggeredAlerts == nil {
		t.Errorf("unexpected result %+v", result)
	}
	if prices.calls["AAPL"] != 0 {
		t.Error("disabled alerts should not be priced")
	}
}

func TestCheck_RecordsTriggerTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := newAlert("BTC", models.AlertTypePriceBelow, 40000)
	alert.AssetType = models.AssetTypeCrypto
	store := newMemoryAlertStore(alert)
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "BTC", Price: 39000}), nil, 1)
	ev.now = func() time.Time { return fixed }

	if _, err := ev.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	stored, _ := store.GetAlert(context.Background(), alert.ID)
	if stored.TriggeredAt == nil || !stored.TriggeredAt.Equal(fixed) {
		t.Errorf("triggered_at = %v, want %v", stored.TriggeredAt, fixed)
	}
}

func TestSummarize(t *testing.T) {
	above := newAlert("AAPL", models.AlertTypePriceAbove, 110)
	s := Summarize(above, &models.Quote{Price: 100})
	if s.Distance == nil || *s.Distance != 10 || *s.DistancePercent != 10 {
		t.Errorf("price_above summary = %+v", s)
	}

	below := newAlert("AAPL", models.AlertTypePriceBelow, 90)
	s = Summarize(below, &models.Quote{Price: 100})
	if s.Distance == nil || *s.Distance != 10 {
		t.Errorf("price_below summary = %+v", s)
	}

	pct := newAlert("AAPL", models.AlertTypePercentChange, 5)
	s = Summarize(pct, &models.Quote{Price: 100, DailyChangePercent: -2})
	if s.CurrentChange == nil || *s.CurrentChange != 2 || *s.Remaining != 3 {
		t.Errorf("percent summary = %+v", s)
	}
	if s.Distance != nil {
		t.Error("percent summary should not carry a distance")
	}

	s = Summarize(above, nil)
	if s.Error == "" || s.CurrentPrice != nil {
		t.Errorf("missing quote summary = %+v", s)
	}
}

func TestSummaries(t *testing.T) {
	store := newMemoryAlertStore(
		newAlert("AAPL", models.AlertTypePriceAbove, 110),
		newAlert("GONE", models.AlertTypePriceAbove, 1),
	)
	ev := NewEvaluator(store, newMockPrices(&models.Quote{Symbol: "AAPL", Price: 100}), nil, 2)

	out, err := ev.Summaries(context.Background())
	if err != nil {
		t.Fatalf("Summaries() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(out))
	}
	var priced, failed int
	for _, s := range out {
		if s.CurrentPrice != nil {
			priced++
		}
		if s.Error != "" {
			failed++
		}
	}
	if priced != 1 || failed != 1 {
		t.Errorf("expected one priced and one failed summary, got %d/%d", priced, failed)
	}
}
