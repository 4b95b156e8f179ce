package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"investment-tracker/models"
	"investment-tracker/observability"
)

const alertColumns = `id, symbol, asset_type, alert_type, target_value, current_price_at_creation,
	notification_channel, email, telegram_chat_id, message, status, triggered_at, triggered_price, created_at`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.Symbol, &a.AssetType, &a.AlertType, &a.TargetValue, &a.CurrentPriceAtCreation,
		&a.Channel, &a.Email, &a.TelegramChatID, &a.Message, &a.Status, &a.TriggeredAt, &a.TriggeredPrice, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "alerts")

	_, err := r.db.Exec(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, alert.ID, alert.Symbol, alert.AssetType, alert.AlertType, alert.TargetValue, alert.CurrentPriceAtCreation,
		alert.Channel, alert.Email, alert.TelegramChatID, alert.Message, alert.Status, alert.TriggeredAt, alert.TriggeredPrice, alert.CreatedAt)
	if err != nil {
		metrics.RecordDBError("insert", "alerts")
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts newest first
func (r *Repository) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "alerts")

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Symbol != "" {
		args = append(args, models.NormalizeSymbol(filter.Symbol))
		where = append(where, fmt.Sprintf("symbol = $%d", len(args)))
	}

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("select", "alerts")
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

func (r *Repository) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "alerts")

	a, err := scanAlert(r.db.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	return a, nil
}

// UpdateAlert writes the user-editable fields
func (r *Repository) UpdateAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("update", "alerts")

	tag, err := r.db.Exec(ctx, `
		UPDATE alerts
		SET alert_type = $2, target_value = $3, notification_channel = $4,
			email = $5, telegram_chat_id = $6, message = $7
		WHERE id = $1
	`, alert.ID, alert.AlertType, alert.TargetValue, alert.Channel, alert.Email, alert.TelegramChatID, alert.Message)
	if err != nil {
		metrics.RecordDBError("update", "alerts")
		return false, fmt.Errorf("failed to update alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) DeleteAlert(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("delete", "alerts")

	tag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		metrics.RecordDBError("delete", "alerts")
		return false, fmt.Errorf("failed to delete alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) SetAlertStatus(ctx context.Context, id uuid.UUID, status models.AlertStatus) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	if status != models.AlertStatusActive && status != models.AlertStatusDisabled {
		return false, fmt.Errorf("%w: status must be active or disabled", models.ErrInvalidInput)
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("update", "alerts")

	query := `UPDATE alerts SET status = $2 WHERE id = $1`
	if status == models.AlertStatusActive {
		query = `UPDATE alerts SET status = $2, triggered_at = NULL, triggered_price = NULL WHERE id = $1`
	}

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		metrics.RecordDBError("update", "alerts")
		return false, fmt.Errorf("failed to set alert status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) MarkAlertTriggered(ctx context.Context, id uuid.UUID, price float64, at time.Time) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("update", "alerts")

	tag, err := r.db.Exec(ctx, `
		UPDATE alerts
		SET status = 'triggered', triggered_at = $2, triggered_price = $3
		WHERE id = $1 AND status = 'active'
	`, id, at, price)
	if err != nil {
		metrics.RecordDBError("update", "alerts")
		return false, fmt.Errorf("failed to mark alert triggered: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) AlertStats(ctx context.Context) (*models.AlertStats, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "alerts")

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM alerts GROUP BY status`)
	if err != nil {
		metrics.RecordDBError("select", "alerts")
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	defer rows.Close()

	stats := &models.AlertStats{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan alert count: %w", err)
		}
		addStatusCount(stats, models.AlertStatus(status), count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert counts: %w", err)
	}
	return stats, nil
}

func addStatusCount(stats *models.AlertStats, status models.AlertStatus, count int) {
	stats.Total += count
	switch status {
	case models.AlertStatusActive:
		stats.Active += count
	case models.AlertStatusTriggered:
		stats.Triggered += count
	case models.AlertStatusDisabled:
		stats.Disabled += count
	}
}
