package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"investment-tracker/config"
	"investment-tracker/models"
	"investment-tracker/observability"
)

const defaultFetchTimeout = 15 * time.Second

// PriceService routes price lookups by asset type.
// Concurrent identical lookups share one upstream call; nothing is cached.
type PriceService struct {
	stocks       MarketDataProvider
	crypto       MarketDataProvider
	stockSearch  SymbolSearcher
	cryptoSearch SymbolSearcher
	breakers     *CircuitBreakerRegistry
	retry        RetryConfig
	timeout      time.Duration
	group        singleflight.Group
}

// PriceServiceOptions wires a PriceService. Zero values take defaults.
type PriceServiceOptions struct {
	Stocks       MarketDataProvider
	Crypto       MarketDataProvider
	StockSearch  SymbolSearcher
	CryptoSearch SymbolSearcher
	Breakers     *CircuitBreakerRegistry
	Retry        *RetryConfig
	Timeout      time.Duration
}

func NewPriceService(opts PriceServiceOptions) *PriceService {
	s := &PriceService{
		stocks:       opts.Stocks,
		crypto:       opts.Crypto,
		stockSearch:  opts.StockSearch,
		cryptoSearch: opts.CryptoSearch,
		breakers:     opts.Breakers,
		retry:        DefaultRetryConfig,
		timeout:      opts.Timeout,
	}
	if opts.Retry != nil {
		s.retry = *opts.Retry
	}
	if s.breakers == nil {
		s.breakers = GetGlobalRegistry()
	}
	if s.timeout <= 0 {
		s.timeout = defaultFetchTimeout
	}
	return s
}

// NewPriceServiceFromConfig picks the stock provider by configured credentials:
// Alpaca, then Alpha Vantage, then Yahoo. Crypto always uses CoinGecko.
func NewPriceServiceFromConfig(cfg *config.Config) *PriceService {
	yahoo := NewYahooService(cfg.Yahoo.BaseURL)
	coingecko := NewCoinGeckoService(cfg.CoinGecko.APIKey, cfg.CoinGecko.BaseURL)

	var stocks MarketDataProvider = yahoo
	switch {
	case cfg.HasAlpaca():
		stocks = NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL)
	case cfg.HasAlphaVantage():
		stocks = NewAlphaVantageService(cfg.AlphaVantage.APIKey)
	}
	observability.Info("price providers selected", "stocks", stocks.Name(), "crypto", coingecko.Name())

	return NewPriceService(PriceServiceOptions{
		Stocks:       stocks,
		Crypto:       coingecko,
		StockSearch:  yahoo,
		CryptoSearch: coingecko,
		Timeout:      cfg.FetchTimeout(),
	})
}

func (s *PriceService) providerFor(assetType models.AssetType) (MarketDataProvider, error) {
	switch assetType {
	case models.AssetTypeStock:
		if s.stocks != nil {
			return s.stocks, nil
		}
	case models.AssetTypeCrypto:
		if s.crypto != nil {
			return s.crypto, nil
		}
	default:
		return nil, fmt.Errorf("%w: asset_type must be stock or crypto, got %q", models.ErrInvalidInput, assetType)
	}
	return nil, fmt.Errorf("%w: no %s price provider", ErrNotConfigured, assetType)
}

// call runs fn under the provider's breaker with bounded retry, coalescing by key.
// The upstream call is detached from the caller's cancellation so a departing
// caller does not fail the others waiting on the same key.
func (s *PriceService) call(ctx context.Context, key, provider string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		var out any
		err := WithRetry(fetchCtx, s.retry, func() error {
			res, err := s.breakers.Execute(fetchCtx, provider, func() (any, error) {
				return fn(fetchCtx)
			})
			if err != nil {
				return err
			}
			out = res
			return nil
		})
		return out, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// GetCurrentPrice returns the latest quote for a symbol
func (s *PriceService) GetCurrentPrice(ctx context.Context, symbol string, assetType models.AssetType) (*models.Quote, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	provider, err := s.providerFor(assetType)
	if err != nil {
		return nil, err
	}

	key := "quote:" + string(assetType) + ":" + symbol
	v, err := s.call(ctx, key, provider.Name(), func(ctx context.Context) (any, error) {
		return provider.GetQuote(ctx, symbol)
	})
	if err != nil {
		observability.WithSymbol(symbol).Warn("quote unavailable", "provider", provider.Name(), "error", err)
		return nil, unavailable(symbol, assetType, err)
	}

	quote := *v.(*models.Quote)
	quote.Symbol = symbol
	return &quote, nil
}

// GetHistory returns daily closes for the period, oldest first
func (s *PriceService) GetHistory(ctx context.Context, symbol string, assetType models.AssetType, period models.Period) ([]models.PricePoint, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	if period.Days() == 0 {
		return nil, fmt.Errorf("%w: unknown period %q", models.ErrInvalidInput, period)
	}
	provider, err := s.providerFor(assetType)
	if err != nil {
		return nil, err
	}

	key := "history:" + string(assetType) + ":" + symbol + ":" + string(period)
	v, err := s.call(ctx, key, provider.Name(), func(ctx context.Context) (any, error) {
		return provider.GetHistory(ctx, symbol, period.Days())
	})
	if err != nil {
		observability.WithSymbol(symbol).Warn("history unavailable", "provider", provider.Name(), "period", period, "error", err)
		return nil, unavailable(symbol, assetType, err)
	}

	shared := v.([]models.PricePoint)
	points := make([]models.PricePoint, len(shared))
	copy(points, shared)
	return points, nil
}

// Search looks up symbols; an empty asset type searches both families
func (s *PriceService) Search(ctx context.Context, query string, assetType models.AssetType) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", models.ErrInvalidInput)
	}

	if assetType != "" && !assetType.Valid() {
		return nil, fmt.Errorf("%w: asset_type must be stock or crypto, got %q", models.ErrInvalidInput, assetType)
	}

	type source struct {
		name     string
		searcher SymbolSearcher
	}
	var sources []source
	if (assetType == "" || assetType == models.AssetTypeStock) && s.stockSearch != nil {
		sources = append(sources, source{BreakerYahoo, s.stockSearch})
	}
	if (assetType == "" || assetType == models.AssetTypeCrypto) && s.cryptoSearch != nil {
		sources = append(sources, source{BreakerCoinGecko, s.cryptoSearch})
	}

	results := make([][]models.SearchResult, len(sources))
	errs := make([]error, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			v, err := s.breakers.Execute(gctx, src.name, func() (any, error) {
				return src.searcher.Search(gctx, query)
			})
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = v.([]models.SearchResult)
			return nil
		})
	}
	_ = g.Wait()

	var merged []models.SearchResult
	var failed []error
	for i := range sources {
		if errs[i] != nil {
			observability.WithProvider(sources[i].name).Warn("symbol search failed", "query", query, "error", errs[i])
			failed = append(failed, errs[i])
			continue
		}
		merged = append(merged, results[i]...)
	}
	if len(sources) > 0 && len(failed) == len(sources) {
		return nil, fmt.Errorf("%w: search failed: %w", models.ErrProviderError, errors.Join(failed...))
	}
	if merged == nil {
		merged = []models.SearchResult{}
	}
	return merged, nil
}

// unavailable wraps any provider failure as PriceUnavailable, keeping the cause inspectable
func unavailable(symbol string, assetType models.AssetType, err error) error {
	return fmt.Errorf("%w: %s %s: %w", models.ErrPriceUnavailable, assetType, symbol, err)
}

// FetchQuotes prices every key in parallel, at most limit at a time.
// Each key records its own outcome; one failure never blocks the others.
func FetchQuotes(ctx context.Context, fetcher PriceFetcherInterface, keys []models.SymbolKey, limit int) (map[models.SymbolKey]models.Quote, map[models.SymbolKey]error) {
	quotes := make(map[models.SymbolKey]models.Quote, len(keys))
	failures := make(map[models.SymbolKey]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeLimit(limit))
	for _, key := range dedupeKeys(keys) {
		g.Go(func() error {
			q, err := fetcher.GetCurrentPrice(gctx, key.Symbol, key.AssetType)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[key] = err
				return nil
			}
			quotes[key] = *q
			return nil
		})
	}
	_ = g.Wait()

	return quotes, failures
}

// FetchHistories loads the period's closes for every key in parallel
func FetchHistories(ctx context.Context, fetcher PriceFetcherInterface, keys []models.SymbolKey, period models.Period, limit int) (map[models.SymbolKey][]models.PricePoint, map[models.SymbolKey]error) {
	histories := make(map[models.SymbolKey][]models.PricePoint, len(keys))
	failures := make(map[models.SymbolKey]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeLimit(limit))
	for _, key := range dedupeKeys(keys) {
		g.Go(func() error {
			points, err := fetcher.GetHistory(gctx, key.Symbol, key.AssetType, period)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[key] = err
				return nil
			}
			histories[key] = points
			return nil
		})
	}
	_ = g.Wait()

	return histories, failures
}

func dedupeKeys(keys []models.SymbolKey) []models.SymbolKey {
	seen := make(map[models.SymbolKey]bool, len(keys))
	out := make([]models.SymbolKey, 0, len(keys))
	for _, k := range keys {
		k.Symbol = models.NormalizeSymbol(k.Symbol)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	return limit
}
