package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"investment-tracker/models"
	"investment-tracker/observability"
)

const assetColumns = `id, symbol, name, asset_type, quantity, purchase_price, purchase_date, created_at`

func (r *Repository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "assets")

	_, err := r.db.Exec(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, asset.ID, asset.Symbol, asset.Name, asset.AssetType, asset.Quantity, asset.PurchasePrice, asset.PurchaseDate, asset.CreatedAt)
	if err != nil {
		metrics.RecordDBError("insert", "assets")
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// ListAssets returns all holdings, oldest first
func (r *Repository) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "assets")

	rows, err := r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, symbol`)
	if err != nil {
		metrics.RecordDBError("select", "assets")
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.AssetType, &a.Quantity, &a.PurchasePrice, &a.PurchaseDate, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "assets")

	var a models.Asset
	err := r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id).
		Scan(&a.ID, &a.Symbol, &a.Name, &a.AssetType, &a.Quantity, &a.PurchasePrice, &a.PurchaseDate, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	return &a, nil
}

// DeleteAsset reports whether a row was removed
func (r *Repository) DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("delete", "assets")

	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		metrics.RecordDBError("delete", "assets")
		return false, fmt.Errorf("failed to delete asset: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
