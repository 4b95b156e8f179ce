package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"investment-tracker/analysis"
	"investment-tracker/models"
	"investment-tracker/observability"
	"investment-tracker/services"
)

// AssetInput is a holding submission
type AssetInput struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	AssetType     string          `json:"asset_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`
}

// PopularSymbols is the fixed market overview list
var PopularSymbols = []models.SymbolKey{
	{Symbol: "AAPL", AssetType: models.AssetTypeStock},
	{Symbol: "GOOGL", AssetType: models.AssetTypeStock},
	{Symbol: "MSFT", AssetType: models.AssetTypeStock},
	{Symbol: "TSLA", AssetType: models.AssetTypeStock},
	{Symbol: "NVDA", AssetType: models.AssetTypeStock},
	{Symbol: "BTC", AssetType: models.AssetTypeCrypto},
	{Symbol: "ETH", AssetType: models.AssetTypeCrypto},
	{Symbol: "SOL", AssetType: models.AssetTypeCrypto},
}

func (a *App) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return a.store.ListAssets(ctx)
}

// CreateAsset validates and stores a holding. A missing name is filled from the quote when one is available.
func (a *App) CreateAsset(ctx context.Context, in AssetInput) (*models.Asset, error) {
	assetType, err := models.ParseAssetType(in.AssetType)
	if err != nil {
		return nil, err
	}
	var purchaseDate time.Time
	if in.PurchaseDate != nil {
		purchaseDate = in.PurchaseDate.UTC()
	}

	asset, err := models.NewAsset(in.Symbol, in.Name, assetType, in.Quantity, in.PurchasePrice, purchaseDate)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		if q, err := a.prices.GetCurrentPrice(ctx, asset.Symbol, asset.AssetType); err == nil && q.Name != "" {
			asset.Name = q.Name
		}
	}

	if err := a.store.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}
	observability.WithSymbol(asset.Symbol).Info("asset created", "asset_type", asset.AssetType, "quantity", asset.Quantity.String())
	return asset, nil
}

func (a *App) DeleteAsset(ctx context.Context, id string) error {
	assetID, err := ParseUUID(id)
	if err != nil {
		return err
	}
	deleted, err := a.store.DeleteAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("asset", assetID)
	}
	return nil
}

// Portfolio values every holding at its current quote
func (a *App) Portfolio(ctx context.Context) (*models.PortfolioSnapshot, error) {
	assets, err := a.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	return a.valuate(ctx, assets), nil
}

func (a *App) valuate(ctx context.Context, assets []models.Asset) *models.PortfolioSnapshot {
	keys := make([]models.SymbolKey, len(assets))
	for i := range assets {
		keys[i] = assets[i].Key()
	}
	quotes, failures := services.FetchQuotes(ctx, a.prices, keys, a.concurrency())
	for key, err := range failures {
		observability.WithSymbol(key.Symbol).Warn("asset left unpriced", "asset_type", key.AssetType, "error", err)
	}

	snap := analysis.Valuate(assets, quotes)
	observability.GetMetrics().RecordValuation(analysis.UnpricedByType(snap))
	return snap
}

func (a *App) Search(ctx context.Context, query, assetType string) ([]models.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}
	var t models.AssetType
	if assetType != "" {
		parsed, err := models.ParseAssetType(assetType)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	return a.prices.Search(ctx, query, t)
}

func (a *App) Quote(ctx context.Context, symbol, assetType string) (*models.Quote, error) {
	t, err := models.ParseAssetType(assetType)
	if err != nil {
		return nil, err
	}
	return a.prices.GetCurrentPrice(ctx, models.NormalizeSymbol(symbol), t)
}

func (a *App) History(ctx context.Context, symbol, assetType, period string) (*models.PriceHistory, error) {
	t, err := models.ParseAssetType(assetType)
	if err != nil {
		return nil, err
	}
	p, err := a.parsePeriod(period)
	if err != nil {
		return nil, err
	}
	symbol = models.NormalizeSymbol(symbol)
	points, err := a.prices.GetHistory(ctx, symbol, t, p)
	if err != nil {
		return nil, err
	}
	return &models.PriceHistory{Symbol: symbol, AssetType: t, Period: p, Points: points}, nil
}

// Popular quotes the overview list with a one-week sparkline.
// Symbols without a quote are skipped; a missing history leaves an empty sparkline.
func (a *App) Popular(ctx context.Context) []models.PopularAsset {
	var (
		quotes    map[models.SymbolKey]models.Quote
		histories map[models.SymbolKey][]models.PricePoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quotes, _ = services.FetchQuotes(gctx, a.prices, PopularSymbols, a.concurrency())
		return nil
	})
	g.Go(func() error {
		histories, _ = services.FetchHistories(gctx, a.prices, PopularSymbols, models.Period1W, a.concurrency())
		return nil
	})
	_ = g.Wait()

	out := make([]models.PopularAsset, 0, len(PopularSymbols))
	for _, key := range PopularSymbols {
		q, ok := quotes[key]
		if !ok {
			continue
		}
		out = append(out, models.PopularAsset{
			Quote:     q,
			AssetType: key.AssetType,
			Sparkline: models.Closes(histories[key]),
		})
	}
	return out
}
