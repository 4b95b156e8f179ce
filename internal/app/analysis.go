package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"investment-tracker/analysis"
	"investment-tracker/models"
	"investment-tracker/observability"
	"investment-tracker/services"
)

func (a *App) Indicators(ctx context.Context, symbol, assetType, period string) (*models.IndicatorSet, error) {
	history, err := a.History(ctx, symbol, assetType, period)
	if err != nil {
		return nil, err
	}
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAnalysis("indicators", "success")
	return analysis.ComputeIndicators(history.Symbol, history.Period, history.Points), nil
}

// Trend loads the 1M and 3M histories in parallel and derives window metrics
func (a *App) Trend(ctx context.Context, symbol, assetType string) (*models.TrendAnalysis, error) {
	t, err := models.ParseAssetType(assetType)
	if err != nil {
		return nil, err
	}
	symbol = models.NormalizeSymbol(symbol)

	var short, long []models.PricePoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		short, err = a.prices.GetHistory(gctx, symbol, t, models.Period1M)
		return err
	})
	g.Go(func() error {
		var err error
		long, err = a.prices.GetHistory(gctx, symbol, t, models.Period3M)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return observeAnalysis("trend", func() (*models.TrendAnalysis, error) {
		return analysis.AnalyzeTrend(symbol, models.Closes(short), models.Closes(long))
	})
}

// Predict projects the next days of closes from the 3M history
func (a *App) Predict(ctx context.Context, symbol, assetType string, days int) (*models.PriceForecast, error) {
	t, err := models.ParseAssetType(assetType)
	if err != nil {
		return nil, err
	}
	symbol = models.NormalizeSymbol(symbol)
	history, err := a.prices.GetHistory(ctx, symbol, t, models.Period3M)
	if err != nil {
		return nil, err
	}
	return observeAnalysis("prediction", func() (*models.PriceForecast, error) {
		return analysis.Predict(symbol, history, days)
	})
}

// Correlation computes the matrix for an explicit symbol list. Every history must load.
func (a *App) Correlation(ctx context.Context, keys []models.SymbolKey, period string) (*models.CorrelationMatrix, error) {
	p, err := a.parsePeriod(period)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if !k.AssetType.Valid() {
			return nil, fmt.Errorf("%w: asset_type must be stock or crypto for %s", models.ErrInvalidInput, k.Symbol)
		}
	}
	keys = distinctKeys(keys)
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 distinct assets, got %d", models.ErrInsufficientAssets, len(keys))
	}

	histories, failures := services.FetchHistories(ctx, a.prices, keys, p, a.concurrency())
	for _, k := range keys {
		if err, failed := failures[k]; failed {
			return nil, err
		}
	}

	return a.observeCorrelation(p, keys, histories, nil)
}

// PortfolioCorrelation correlates every distinct holding. Holdings whose
// history cannot be fetched are dropped; at least two must remain.
func (a *App) PortfolioCorrelation(ctx context.Context, period string) (*models.CorrelationMatrix, error) {
	p, err := a.parsePeriod(period)
	if err != nil {
		return nil, err
	}
	assets, err := a.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	keys := distinctKeys(assetKeys(assets))
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: portfolio needs at least 2 distinct assets, got %d", models.ErrInsufficientAssets, len(keys))
	}

	histories, failures := services.FetchHistories(ctx, a.prices, keys, p, a.concurrency())
	var kept []models.SymbolKey
	var dropped []string
	for _, k := range keys {
		if err, failed := failures[k]; failed {
			observability.WithSymbol(k.Symbol).Warn("dropping asset from correlation", "error", err)
			dropped = append(dropped, k.Symbol)
			continue
		}
		kept = append(kept, k)
	}
	if len(kept) < 2 {
		return nil, fmt.Errorf("%w: only %d assets have price history", models.ErrInsufficientAssets, len(kept))
	}
	return a.observeCorrelation(p, kept, histories, dropped)
}

func (a *App) observeCorrelation(p models.Period, keys []models.SymbolKey, histories map[models.SymbolKey][]models.PricePoint, dropped []string) (*models.CorrelationMatrix, error) {
	series := make([]analysis.SymbolSeries, len(keys))
	for i, k := range keys {
		series[i] = analysis.SymbolSeries{Symbol: k.Symbol, AssetType: k.AssetType, Prices: models.Closes(histories[k])}
	}
	m, err := observeAnalysis("correlation", func() (*models.CorrelationMatrix, error) {
		return analysis.Correlate(p, series)
	})
	if err != nil {
		return nil, err
	}
	m.Dropped = dropped
	return m, nil
}

// Benchmark compares the portfolio value series against the configured references
func (a *App) Benchmark(ctx context.Context, period string) (*models.BenchmarkComparison, error) {
	p, err := a.parsePeriod(period)
	if err != nil {
		return nil, err
	}
	assets, err := a.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no assets", models.ErrInsufficientAssets)
	}

	// quantities per instrument
	held := make(map[models.SymbolKey]decimal.Decimal)
	var holdingKeys []models.SymbolKey
	for _, asset := range assets {
		k := asset.Key()
		if _, ok := held[k]; !ok {
			holdingKeys = append(holdingKeys, k)
			held[k] = decimal.Zero
		}
		held[k] = held[k].Add(asset.Quantity)
	}

	benchmarks := a.cfg.Analysis.Benchmarks
	keys := append([]models.SymbolKey(nil), holdingKeys...)
	for _, b := range benchmarks {
		keys = append(keys, models.SymbolKey{Symbol: b.Symbol, AssetType: models.AssetType(b.AssetType)})
	}
	histories, failures := services.FetchHistories(ctx, a.prices, keys, p, a.concurrency())

	var holdings []analysis.Holding
	var reference []models.PricePoint
	for _, k := range holdingKeys {
		points, ok := histories[k]
		if !ok || len(points) == 0 {
			observability.WithSymbol(k.Symbol).Warn("holding left out of benchmark", "error", failures[k])
			continue
		}
		holdings = append(holdings, analysis.Holding{Quantity: held[k], Closes: models.Closes(points)})
		if reference == nil || len(points) < len(reference) {
			reference = points
		}
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("%w: no holding has price history", models.ErrPriceUnavailable)
	}

	series := []models.NamedSeries{{Label: "Portfolio", Symbol: "PORTFOLIO", Values: analysis.PortfolioValueSeries(holdings)}}
	for _, b := range benchmarks {
		k := models.SymbolKey{Symbol: b.Symbol, AssetType: models.AssetType(b.AssetType)}
		points, ok := histories[k]
		if !ok || len(points) == 0 {
			observability.WithSymbol(k.Symbol).Warn("benchmark unavailable", "error", failures[k])
			continue
		}
		series = append(series, models.NamedSeries{Label: b.Label, Symbol: b.Symbol, Values: models.Closes(points)})
		if len(points) < len(reference) {
			reference = points
		}
	}

	cmp, err := observeAnalysis("benchmark", func() (*models.BenchmarkComparison, error) {
		return analysis.CompareToBenchmarks(p, series)
	})
	if err != nil {
		return nil, err
	}
	dates := reference[len(reference)-cmp.Points:]
	cmp.Dates = make([]time.Time, len(dates))
	for i, pt := range dates {
		cmp.Dates[i] = pt.Date
	}
	return cmp, nil
}

// Recommendations derives signals from each holding's trend and the 3M correlation matrix
func (a *App) Recommendations(ctx context.Context) (*models.RecommendationReport, error) {
	assets, err := a.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	keys := distinctKeys(assetKeys(assets))

	var short, long map[models.SymbolKey][]models.PricePoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		short, _ = services.FetchHistories(gctx, a.prices, keys, models.Period1M, a.concurrency())
		return nil
	})
	g.Go(func() error {
		long, _ = services.FetchHistories(gctx, a.prices, keys, models.Period3M, a.concurrency())
		return nil
	})
	_ = g.Wait()

	var trends []*models.TrendAnalysis
	var series []analysis.SymbolSeries
	for _, k := range keys {
		tr, err := analysis.AnalyzeTrend(k.Symbol, models.Closes(short[k]), models.Closes(long[k]))
		if err != nil {
			observability.WithSymbol(k.Symbol).Debug("skipping trend", "error", err)
			continue
		}
		trends = append(trends, tr)
		if len(long[k]) > 0 {
			series = append(series, analysis.SymbolSeries{Symbol: k.Symbol, AssetType: k.AssetType, Prices: models.Closes(long[k])})
		}
	}

	var corr *models.CorrelationMatrix
	if len(series) >= 2 {
		corr, err = analysis.Correlate(models.Period3M, series)
		if err != nil && !errors.Is(err, models.ErrInvalidInput) {
			observability.WithError(err).Warn("correlation skipped for recommendations")
		}
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAnalysis("recommendations", "success")
	return analysis.Recommend(trends, corr, len(keys)), nil
}

// Insights asks the configured model for commentary on the current portfolio
func (a *App) Insights(ctx context.Context) (*models.PortfolioInsight, error) {
	if a.insights == nil {
		return nil, fmt.Errorf("%w: portfolio insights need AWS Bedrock", services.ErrNotConfigured)
	}
	snapshot, err := a.Portfolio(ctx)
	if err != nil {
		return nil, err
	}
	report, err := a.Recommendations(ctx)
	if err != nil {
		return nil, err
	}
	return a.insights.PortfolioInsight(ctx, snapshot, report)
}

// observeAnalysis times fn and counts its failures by error kind
func observeAnalysis[T any](name string, fn func() (T, error)) (T, error) {
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	v, err := fn()
	if err != nil {
		timer.ObserveAnalysis(name, "error")
		metrics.RecordAnalysisError(name, errorKind(err))
		return v, err
	}
	timer.ObserveAnalysis(name, "success")
	return v, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientAssets):
		return "insufficient_assets"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrPriceUnavailable):
		return "price_unavailable"
	default:
		return "internal"
	}
}

func assetKeys(assets []models.Asset) []models.SymbolKey {
	keys := make([]models.SymbolKey, len(assets))
	for i := range assets {
		keys[i] = assets[i].Key()
	}
	return keys
}

func distinctKeys(keys []models.SymbolKey) []models.SymbolKey {
	seen := make(map[models.SymbolKey]bool, len(keys))
	out := make([]models.SymbolKey, 0, len(keys))
	for _, k := range keys {
		k.Symbol = models.NormalizeSymbol(k.Symbol)
		if k.Symbol == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
