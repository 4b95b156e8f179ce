package app

import (
	"context"
	"fmt"
	"strings"

	"investment-tracker/internal/settings"
	"investment-tracker/models"
	"investment-tracker/observability"
	"investment-tracker/services"
)

// AlertInput is an alert submission
type AlertInput struct {
	Symbol         string  `json:"symbol"`
	AssetType      string  `json:"asset_type"`
	AlertType      string  `json:"alert_type"`
	TargetValue    float64 `json:"target_value"`
	Channel        string  `json:"notification_channel"`
	Email          string  `json:"email"`
	TelegramChatID string  `json:"telegram_chat_id"`
	Message        string  `json:"message"`
}

func (a *App) ListAlerts(ctx context.Context, status, symbol string) ([]models.Alert, error) {
	filter := models.AlertFilter{Symbol: symbol}
	if status != "" {
		s := models.AlertStatus(strings.ToLower(status))
		if !s.Valid() {
			return nil, fmt.Errorf("%w: status must be active, triggered or disabled", models.ErrInvalidInput)
		}
		filter.Status = s
	}
	return a.store.ListAlerts(ctx, filter)
}

func (a *App) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	alertID, err := ParseUUID(id)
	if err != nil {
		return nil, err
	}
	alert, err := a.store.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, notFound("alert", alertID)
	}
	return alert, nil
}

// CreateAlert validates the alert and records the price at creation.
// The symbol must be priceable, so typos are rejected up front.
func (a *App) CreateAlert(ctx context.Context, in AlertInput) (*models.Alert, error) {
	assetType, err := models.ParseAssetType(in.AssetType)
	if err != nil {
		return nil, err
	}
	alert := models.NewAlert(in.Symbol, assetType, models.AlertType(strings.ToLower(in.AlertType)), in.TargetValue,
		models.NotificationChannel(strings.ToLower(in.Channel)))
	alert.Email = strings.TrimSpace(in.Email)
	alert.TelegramChatID = strings.TrimSpace(in.TelegramChatID)
	alert.Message = in.Message
	if err := alert.Validate(); err != nil {
		return nil, err
	}

	quote, err := a.prices.GetCurrentPrice(ctx, alert.Symbol, alert.AssetType)
	if err != nil {
		return nil, err
	}
	price := quote.Price
	alert.CurrentPriceAtCreation = &price

	if err := a.store.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}
	observability.WithAlert(alert.ID.String(), alert.Symbol).Info("alert created",
		"type", alert.AlertType, "target", alert.TargetValue, "channel", alert.Channel)
	return alert, nil
}

func (a *App) UpdateAlert(ctx context.Context, id string, update models.AlertUpdate) (*models.Alert, error) {
	alert, err := a.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := update.Apply(alert); err != nil {
		return nil, err
	}
	ok, err := a.store.UpdateAlert(ctx, alert)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("alert", alert.ID)
	}
	return alert, nil
}

func (a *App) DeleteAlert(ctx context.Context, id string) error {
	alertID, err := ParseUUID(id)
	if err != nil {
		return err
	}
	deleted, err := a.store.DeleteAlert(ctx, alertID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("alert", alertID)
	}
	return nil
}

// EnableAlert re-arms an alert and clears its trigger record
func (a *App) EnableAlert(ctx context.Context, id string) (*models.Alert, error) {
	return a.setAlertStatus(ctx, id, models.AlertStatusActive)
}

func (a *App) DisableAlert(ctx context.Context, id string) (*models.Alert, error) {
	return a.setAlertStatus(ctx, id, models.AlertStatusDisabled)
}

func (a *App) setAlertStatus(ctx context.Context, id string, status models.AlertStatus) (*models.Alert, error) {
	alertID, err := ParseUUID(id)
	if err != nil {
		return nil, err
	}
	ok, err := a.store.SetAlertStatus(ctx, alertID, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("alert", alertID)
	}
	return a.GetAlert(ctx, id)
}

// CheckAlerts runs one evaluation pass synchronously
func (a *App) CheckAlerts(ctx context.Context) (*models.CheckResult, error) {
	return a.evaluator.Check(ctx)
}

func (a *App) AlertStats(ctx context.Context) (*models.AlertStats, error) {
	return a.store.AlertStats(ctx)
}

func (a *App) AlertSummaries(ctx context.Context) ([]models.AlertSummary, error) {
	return a.evaluator.Summaries(ctx)
}

func (a *App) NotificationSettings() (models.MaskedNotificationSettings, error) {
	if a.settings == nil {
		return models.MaskedNotificationSettings{}, fmt.Errorf("%w: settings store", services.ErrNotConfigured)
	}
	return a.settings.Masked(), nil
}

func (a *App) SaveNotificationSettings(in settings.Input) (models.MaskedNotificationSettings, error) {
	if a.settings == nil {
		return models.MaskedNotificationSettings{}, fmt.Errorf("%w: settings store", services.ErrNotConfigured)
	}
	return a.settings.Update(in)
}

// TestNotification sends a fixed message on one channel.
// An empty recipient falls back to the saved settings.
func (a *App) TestNotification(ctx context.Context, channel models.NotificationChannel, recipient string) error {
	if channel != models.ChannelEmail && channel != models.ChannelTelegram {
		return fmt.Errorf("%w: test channel must be email or telegram", models.ErrInvalidInput)
	}
	if a.notifier == nil {
		return fmt.Errorf("%w: notifier", services.ErrNotConfigured)
	}
	return a.notifier.Send(ctx, models.Notification{
		Channel:   channel,
		Recipient: strings.TrimSpace(recipient),
		Subject:   "✅ Test notification",
		Body:      "*Investment tracker*\n\nYour " + string(channel) + " notifications are working.",
	})
}
