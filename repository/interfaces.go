package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"investment-tracker/models"
)

// ErrNoDatabase is returned when a store method runs without a connection
var ErrNoDatabase = errors.New("database not initialized")

// AssetStore persists holdings. Get returns nil, nil when the id is unknown.
type AssetStore interface {
	CreateAsset(ctx context.Context, asset *models.Asset) error
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error)
}

// AlertStore persists alerts and owns their status transitions
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	UpdateAlert(ctx context.Context, alert *models.Alert) (bool, error)
	DeleteAlert(ctx context.Context, id uuid.UUID) (bool, error)

	// SetAlertStatus moves an alert to active or disabled; activating clears the trigger record
	SetAlertStatus(ctx context.Context, id uuid.UUID, status models.AlertStatus) (bool, error)

	// MarkAlertTriggered performs the active -> triggered transition.
	// It reports false when the alert was no longer active, so exactly one caller wins.
	MarkAlertTriggered(ctx context.Context, id uuid.UUID, price float64, at time.Time) (bool, error)

	AlertStats(ctx context.Context) (*models.AlertStats, error)
}

// Store is the full persistence surface used by the application
type Store interface {
	AssetStore
	AlertStore
	Close()
	Health(ctx context.Context) error
}

var _ Store = (*Repository)(nil)
var _ Store = (*SQLiteRepository)(nil)
