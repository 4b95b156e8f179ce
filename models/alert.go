package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertTypePriceAbove    AlertType = "price_above"
	AlertTypePriceBelow    AlertType = "price_below"
	AlertTypePercentChange AlertType = "percent_change"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypePriceAbove, AlertTypePriceBelow, AlertTypePercentChange:
		return true
	}
	return false
}

type AlertStatus string

const (
	AlertStatusActive    AlertStatus = "active"
	AlertStatusTriggered AlertStatus = "triggered"
	AlertStatusDisabled  AlertStatus = "disabled"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusActive, AlertStatusTriggered, AlertStatusDisabled:
		return true
	}
	return false
}

// NotificationChannel selects where a triggered alert is delivered
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelTelegram NotificationChannel = "telegram"
	ChannelBoth     NotificationChannel = "both"
)

func (c NotificationChannel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelTelegram, ChannelBoth:
		return true
	}
	return false
}

// IncludesEmail reports whether the channel delivers by email
func (c NotificationChannel) IncludesEmail() bool {
	return c == ChannelEmail || c == ChannelBoth
}

// IncludesTelegram reports whether the channel delivers by Telegram
func (c NotificationChannel) IncludesTelegram() bool {
	return c == ChannelTelegram || c == ChannelBoth
}

// Alert is a user-defined price threshold.
// Status moves active -> triggered on evaluation; enable/disable are explicit.
type Alert struct {
	ID                     uuid.UUID           `json:"id"`
	Symbol                 string              `json:"symbol"`
	AssetType              AssetType           `json:"asset_type"`
	AlertType              AlertType           `json:"alert_type"`
	TargetValue            float64             `json:"target_value"`
	CurrentPriceAtCreation *float64            `json:"current_price_at_creation,omitempty"`
	Channel                NotificationChannel `json:"notification_channel"`
	Email                  string              `json:"email,omitempty"`
	TelegramChatID         string              `json:"telegram_chat_id,omitempty"`
	Message                string              `json:"message,omitempty"`
	Status                 AlertStatus         `json:"status"`
	TriggeredAt            *time.Time          `json:"triggered_at,omitempty"`
	TriggeredPrice         *float64            `json:"triggered_price,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
}

// NewAlert builds an active alert with a fresh id
func NewAlert(symbol string, assetType AssetType, alertType AlertType, target float64, channel NotificationChannel) *Alert {
	if channel == "" {
		channel = ChannelEmail
	}
	return &Alert{
		ID:          uuid.New(),
		Symbol:      NormalizeSymbol(symbol),
		AssetType:   assetType,
		AlertType:   alertType,
		TargetValue: target,
		Channel:     channel,
		Status:      AlertStatusActive,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks the user-editable fields of an alert
func (a *Alert) Validate() error {
	if err := ValidateSymbol(a.Symbol); err != nil {
		return err
	}
	if !a.AssetType.Valid() {
		return fmt.Errorf("%w: asset_type must be stock or crypto", ErrInvalidInput)
	}
	if !a.AlertType.Valid() {
		return fmt.Errorf("%w: alert_type must be price_above, price_below or percent_change", ErrInvalidInput)
	}
	if a.TargetValue <= 0 {
		return fmt.Errorf("%w: target_value must be positive", ErrInvalidInput)
	}
	if !a.Channel.Valid() {
		return fmt.Errorf("%w: notification_channel must be email, telegram or both", ErrInvalidInput)
	}
	if a.Email != "" && !strings.Contains(a.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	return nil
}

// Enable re-arms the alert and clears its trigger record
func (a *Alert) Enable() {
	a.Status = AlertStatusActive
	a.TriggeredAt = nil
	a.TriggeredPrice = nil
}

// Disable parks the alert so it is skipped by evaluation
func (a *Alert) Disable() {
	a.Status = AlertStatusDisabled
}

// MarkTriggered records the trigger edge
func (a *Alert) MarkTriggered(price float64, at time.Time) {
	a.Status = AlertStatusTriggered
	a.TriggeredAt = &at
	a.TriggeredPrice = &price
}

// Key identifies the price series the alert watches
func (a *Alert) Key() SymbolKey {
	return SymbolKey{Symbol: a.Symbol, AssetType: a.AssetType}
}

// AlertUpdate carries the fields a user may change; nil means unchanged
type AlertUpdate struct {
	AlertType      *AlertType           `json:"alert_type,omitempty"`
	TargetValue    *float64             `json:"target_value,omitempty"`
	Channel        *NotificationChannel `json:"notification_channel,omitempty"`
	Email          *string              `json:"email,omitempty"`
	TelegramChatID *string              `json:"telegram_chat_id,omitempty"`
	Message        *string              `json:"message,omitempty"`
}

// Apply copies the set fields onto a and revalidates it
func (u AlertUpdate) Apply(a *Alert) error {
	if u.AlertType != nil {
		a.AlertType = *u.AlertType
	}
	if u.TargetValue != nil {
		a.TargetValue = *u.TargetValue
	}
	if u.Channel != nil {
		a.Channel = *u.Channel
	}
	if u.Email != nil {
		a.Email = strings.TrimSpace(*u.Email)
	}
	if u.TelegramChatID != nil {
		a.TelegramChatID = strings.TrimSpace(*u.TelegramChatID)
	}
	if u.Message != nil {
		a.Message = *u.Message
	}
	return a.Validate()
}

// AlertFilter narrows an alert listing; empty fields match everything
type AlertFilter struct {
	Status AlertStatus
	Symbol string
}

// AlertStats counts alerts by status
type AlertStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Triggered int `json:"triggered"`
	Disabled  int `json:"disabled"`
}

// AlertSummary reports how far an alert is from firing.
// Price alerts fill Distance fields; percent alerts fill CurrentChange and Remaining.
type AlertSummary struct {
	Alert           *Alert   `json:"alert"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	DistancePercent *float64 `json:"distance_percent,omitempty"`
	CurrentChange   *float64 `json:"current_change,omitempty"`
	Remaining       *float64 `json:"remaining,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// CheckResult is the outcome of one evaluation pass
type CheckResult struct {
	Checked         int      `json:"checked"`
	Triggered       int      `json:"triggered"`
	Errors          int      `json:"errors"`
	TriggeredAlerts []*Alert `json:"triggered_alerts"`
}
