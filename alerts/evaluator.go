// Package alerts evaluates price alerts against live quotes and delivers
// notifications for the ones that fire.
package alerts

import (
	"context"
	"fmt"
	"math"
	"time"

	"investment-tracker/models"
	"investment-tracker/observability"
	"investment-tracker/repository"
	"investment-tracker/services"
)

// Evaluator runs one check pass over the active alerts
type Evaluator struct {
	store       repository.AlertStore
	prices      services.PriceFetcherInterface
	notifier    services.NotifierInterface
	concurrency int
	now         func() time.Time
}

// NewEvaluator creates an evaluator. notifier may be nil, in which case triggers are recorded but not delivered.
func NewEvaluator(store repository.AlertStore, prices services.PriceFetcherInterface, notifier services.NotifierInterface, concurrency int) *Evaluator {
	return &Evaluator{
		store:       store,
		prices:      prices,
		notifier:    notifier,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ShouldTrigger reports whether quote satisfies the alert's condition
func ShouldTrigger(alert *models.Alert, quote *models.Quote) bool {
	switch alert.AlertType {
	case models.AlertTypePriceAbove:
		return quote.Price >= alert.TargetValue
	case models.AlertTypePriceBelow:
		return quote.Price <= alert.TargetValue
	case models.AlertTypePercentChange:
		return math.Abs(quote.DailyChangePercent) >= alert.TargetValue
	}
	return false
}

// Check prices every active alert once and fires the ones whose condition holds.
// Alerts sharing a symbol share one quote. An alert whose quote failed counts as an error, not as checked.
func (e *Evaluator) Check(ctx context.Context) (*models.CheckResult, error) {
	metrics := observability.GetMetrics()

	active, err := e.store.ListAlerts(ctx, models.AlertFilter{Status: models.AlertStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	result := &models.CheckResult{TriggeredAlerts: []*models.Alert{}}
	if len(active) == 0 {
		metrics.RecordAlertCheck(0)
		return result, nil
	}

	groups := make(map[models.SymbolKey][]*models.Alert)
	keys := make([]models.SymbolKey, 0)
	for i := range active {
		a := &active[i]
		k := a.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], a)
	}

	quotes, failures := services.FetchQuotes(ctx, e.prices, keys, e.concurrency)

	for _, key := range keys {
		group := groups[key]
		quote, ok := quotes[key]
		if !ok {
			result.Errors += len(group)
			observability.WithSymbol(key.Symbol).Warn("alert price lookup failed",
				"asset_type", key.AssetType, "alerts", len(group), "error", failures[key])
			continue
		}

		for _, alert := range group {
			result.Checked++
			if !ShouldTrigger(alert, &quote) {
				continue
			}

			fired, err := e.fire(ctx, alert, &quote)
			if err != nil {
				result.Errors++
				observability.WithAlert(alert.ID.String(), alert.Symbol).Error("failed to record trigger", "error", err)
				continue
			}
			if fired {
				result.Triggered++
				result.TriggeredAlerts = append(result.TriggeredAlerts, alert)
			}
		}
	}

	metrics.RecordAlertCheck(result.Errors)
	observability.Info("alert check complete",
		"checked", result.Checked, "triggered", result.Triggered, "errors", result.Errors)
	return result, nil
}

// fire records the trigger and, only when this caller won the transition, notifies
func (e *Evaluator) fire(ctx context.Context, alert *models.Alert, quote *models.Quote) (bool, error) {
	at := e.now()
	won, err := e.store.MarkAlertTriggered(ctx, alert.ID, quote.Price, at)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	alert.MarkTriggered(quote.Price, at)
	observability.GetMetrics().RecordAlertTriggered(string(alert.AlertType))
	log := observability.WithAlert(alert.ID.String(), alert.Symbol)
	log.Info("alert triggered", "type", alert.AlertType, "target", alert.TargetValue, "price", quote.Price)

	if e.notifier == nil {
		return true, nil
	}
	for _, n := range services.AlertNotifications(alert, quote) {
		if err := e.notifier.Send(ctx, n); err != nil {
			log.Warn("alert notification failed", "channel", n.Channel, "error", err)
		}
	}
	return true, nil
}

// Summarize reports how far alert is from firing at the given quote.
// A nil quote yields a summary with only the alert and an error note.
func Summarize(alert *models.Alert, quote *models.Quote) models.AlertSummary {
	s := models.AlertSummary{Alert: alert}
	if quote == nil || quote.Price <= 0 {
		s.Error = "price unavailable"
		return s
	}

	price := quote.Price
	s.CurrentPrice = &price
	switch alert.AlertType {
	case models.AlertTypePriceAbove, models.AlertTypePriceBelow:
		distance := alert.TargetValue - price
		if alert.AlertType == models.AlertTypePriceBelow {
			distance = price - alert.TargetValue
		}
		pct := distance / price * 100
		s.Distance = &distance
		s.DistancePercent = &pct
	case models.AlertTypePercentChange:
		change := math.Abs(quote.DailyChangePercent)
		remaining := alert.TargetValue - change
		s.CurrentChange = &change
		s.Remaining = &remaining
	}
	return s
}

// Summaries prices every active alert and reports its distance to the trigger
func (e *Evaluator) Summaries(ctx context.Context) ([]models.AlertSummary, error) {
	active, err := e.store.ListAlerts(ctx, models.AlertFilter{Status: models.AlertStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	keys := make([]models.SymbolKey, len(active))
	for i := range active {
		keys[i] = active[i].Key()
	}
	quotes, _ := services.FetchQuotes(ctx, e.prices, keys, e.concurrency)

	out := make([]models.AlertSummary, 0, len(active))
	for i := range active {
		a := &active[i]
		var quote *models.Quote
		if q, ok := quotes[a.Key()]; ok {
			quote = &q
		}
		out = append(out, Summarize(a, quote))
	}
	return out, nil
}
