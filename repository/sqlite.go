package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"investment-tracker/models"
	"investment-tracker/observability"
)

// SQLiteRepository is the embedded Store used when no Postgres URL is configured.
// Decimals and timestamps are stored as TEXT.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database file and runs migrations.
// Pass ":memory:" for a throwaway database.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// single writer; also keeps :memory: on one connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	observability.Info("opened sqlite database", "path", path)
	return r, nil
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}

	var version int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}

	for i := version; i < len(sqliteMigrations); i++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqliteMigrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		observability.Info("applied migration", "driver", "sqlite", "version", i+1)
	}
	return nil
}

func (r *SQLiteRepository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *SQLiteRepository) Health(ctx context.Context) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) checkDB() error {
	if r == nil || r.db == nil {
		return ErrNoDatabase
	}
	return nil
}

// fixed-width so TEXT ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Assets

func (r *SQLiteRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "assets")

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, asset.ID.String(), asset.Symbol, asset.Name, string(asset.AssetType),
		asset.Quantity.String(), asset.PurchasePrice.String(),
		formatTime(asset.PurchaseDate), formatTime(asset.CreatedAt))
	if err != nil {
		metrics.RecordDBError("insert", "assets")
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func scanSQLiteAsset(row rowScanner) (*models.Asset, error) {
	var (
		a                          models.Asset
		id, assetType              string
		quantity, purchasePrice    string
		purchaseDate, createdAtStr string
	)
	if err := row.Scan(&id, &a.Symbol, &a.Name, &assetType, &quantity, &purchasePrice, &purchaseDate, &createdAtStr); err != nil {
		return nil, err
	}

	var err error
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad asset id %q: %w", id, err)
	}
	a.AssetType = models.AssetType(assetType)
	if a.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("bad quantity: %w", err)
	}
	if a.PurchasePrice, err = decimal.NewFromString(purchasePrice); err != nil {
		return nil, fmt.Errorf("bad purchase price: %w", err)
	}
	if a.PurchaseDate, err = parseTime(purchaseDate); err != nil {
		return nil, fmt.Errorf("bad purchase date: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &a, nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "assets")

	rows, err := r.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, symbol`)
	if err != nil {
		metrics.RecordDBError("select", "assets")
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanSQLiteAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

func (r *SQLiteRepository) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "assets")

	a, err := scanSQLiteAsset(r.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.execAffected(ctx, "delete", "assets", `DELETE FROM assets WHERE id = ?`, id.String())
}

// Alerts

func (r *SQLiteRepository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "alerts")

	var triggeredAt sql.NullString
	if alert.TriggeredAt != nil {
		triggeredAt = sql.NullString{String: formatTime(*alert.TriggeredAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID.String(), alert.Symbol, string(alert.AssetType), string(alert.AlertType), alert.TargetValue,
		nullFloat(alert.CurrentPriceAtCreation), string(alert.Channel), alert.Email, alert.TelegramChatID,
		alert.Message, string(alert.Status), triggeredAt, nullFloat(alert.TriggeredPrice), formatTime(alert.CreatedAt))
	if err != nil {
		metrics.RecordDBError("insert", "alerts")
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func scanSQLiteAlert(row rowScanner) (*models.Alert, error) {
	var (
		a                                         models.Alert
		id, assetType, alertType, channel, status string
		createdAt                                 string
		triggeredAt                               sql.NullString
		priceAtCreation, triggeredPrice           sql.NullFloat64
	)
	err := row.Scan(&id, &a.Symbol, &assetType, &alertType, &a.TargetValue, &priceAtCreation,
		&channel, &a.Email, &a.TelegramChatID, &a.Message, &status, &triggeredAt, &triggeredPrice, &createdAt)
	if err != nil {
		return nil, err
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad alert id %q: %w", id, err)
	}
	a.AssetType = models.AssetType(assetType)
	a.AlertType = models.AlertType(alertType)
	a.Channel = models.NotificationChannel(channel)
	a.Status = models.AlertStatus(status)
	a.CurrentPriceAtCreation = floatPtr(priceAtCreation)
	a.TriggeredPrice = floatPtr(triggeredPrice)
	if triggeredAt.Valid {
		t, err := parseTime(triggeredAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad triggered_at: %w", err)
		}
		a.TriggeredAt = &t
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &a, nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
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
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, models.NormalizeSymbol(filter.Symbol))
	}

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("select", "alerts")
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanSQLiteAlert(rows)
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

func (r *SQLiteRepository) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "alerts")

	a, err := scanSQLiteAlert(r.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) UpdateAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	return r.execAffected(ctx, "update", "alerts", `
		UPDATE alerts
		SET alert_type = ?, target_value = ?, notification_channel = ?,
			email = ?, telegram_chat_id = ?, message = ?
		WHERE id = ?
	`, string(alert.AlertType), alert.TargetValue, string(alert.Channel),
		alert.Email, alert.TelegramChatID, alert.Message, alert.ID.String())
}

func (r *SQLiteRepository) DeleteAlert(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.execAffected(ctx, "delete", "alerts", `DELETE FROM alerts WHERE id = ?`, id.String())
}

func (r *SQLiteRepository) SetAlertStatus(ctx context.Context, id uuid.UUID, status models.AlertStatus) (bool, error) {
	switch status {
	case models.AlertStatusActive:
		return r.execAffected(ctx, "update", "alerts",
			`UPDATE alerts SET status = ?, triggered_at = NULL, triggered_price = NULL WHERE id = ?`,
			string(status), id.String())
	case models.AlertStatusDisabled:
		return r.execAffected(ctx, "update", "alerts",
			`UPDATE alerts SET status = ? WHERE id = ?`, string(status), id.String())
	default:
		return false, fmt.Errorf("%w: status must be active or disabled", models.ErrInvalidInput)
	}
}

func (r *SQLiteRepository) MarkAlertTriggered(ctx context.Context, id uuid.UUID, price float64, at time.Time) (bool, error) {
	return r.execAffected(ctx, "update", "alerts", `
		UPDATE alerts
		SET status = 'triggered', triggered_at = ?, triggered_price = ?
		WHERE id = ? AND status = 'active'
	`, formatTime(at), price, id.String())
}

func (r *SQLiteRepository) AlertStats(ctx context.Context) (*models.AlertStats, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "alerts")

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM alerts GROUP BY status`)
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

func (r *SQLiteRepository) execAffected(ctx context.Context, op, table, query string, args ...any) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB(op, table)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(op, table)
		return false, fmt.Errorf("failed to %s %s: %w", op, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
