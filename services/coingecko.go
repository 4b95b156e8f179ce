package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"investment-tracker/models"
)

const (
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	coinGeckoSearchLimit    = 5
)

// coinGeckoIDs maps common tickers to CoinGecko coin ids
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"AVAX":  "avalanche-2",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"LTC":   "litecoin",
	"BNB":   "binancecoin",
	"ATOM":  "cosmos",
}

// CoinGeckoID resolves a ticker to a coin id, falling back to the lower-cased ticker
func CoinGeckoID(symbol string) string {
	symbol = models.NormalizeSymbol(symbol)
	if id, ok := coinGeckoIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// CoinGeckoService is the crypto price provider
type CoinGeckoService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoService(apiKey, baseURL string) *CoinGeckoService {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	return &CoinGeckoService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

func (s *CoinGeckoService) Name() string { return BreakerCoinGecko }

func (s *CoinGeckoService) headers() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": s.apiKey}
}

type coinGeckoCoinResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		PriceChange24h           float64            `json:"price_change_24h"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		LastUpdated              time.Time          `json:"last_updated"`
	} `json:"market_data"`
}

// GetQuote returns the USD price with its 24h change
func (s *CoinGeckoService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")

	endpoint := fmt.Sprintf("%s/coins/%s?%s", s.baseURL, url.PathEscape(CoinGeckoID(symbol)), params.Encode())

	var resp coinGeckoCoinResponse
	if err := getJSON(ctx, s.httpClient, BreakerCoinGecko, "quote", endpoint, s.headers(), &resp); err != nil {
		return nil, err
	}

	price := resp.MarketData.CurrentPrice["usd"]
	if price <= 0 {
		return nil, ErrNotFound
	}

	ts := resp.MarketData.LastUpdated
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	name := resp.Name
	if name == "" {
		name = symbol
	}

	change := resp.MarketData.PriceChange24h
	return &models.Quote{
		Symbol:             models.NormalizeSymbol(symbol),
		Name:               name,
		Price:              price,
		PreviousClose:      price - change,
		DailyChange:        change,
		DailyChangePercent: resp.MarketData.PriceChangePercentage24h,
		Currency:           "USD",
		Timestamp:          ts.UTC(),
	}, nil
}

type coinGeckoMarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// GetHistory returns one close per UTC day, the last sample of each day
func (s *CoinGeckoService) GetHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", "daily")

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", s.baseURL, url.PathEscape(CoinGeckoID(symbol)), params.Encode())

	var resp coinGeckoMarketChart
	if err := getJSON(ctx, s.httpClient, BreakerCoinGecko, "history", endpoint, s.headers(), &resp); err != nil {
		return nil, err
	}

	points := dailyCloses(resp.Prices)
	if len(points) == 0 {
		return nil, ErrNotFound
	}
	return points, nil
}

// dailyCloses buckets [ms, price] samples by UTC day keeping the latest sample
func dailyCloses(samples [][2]float64) []models.PricePoint {
	byDay := make(map[time.Time]models.PricePoint)
	for _, s := range samples {
		if s[1] <= 0 {
			continue
		}
		ts := time.UnixMilli(int64(s[0])).UTC()
		day := ts.Truncate(24 * time.Hour)
		if prev, ok := byDay[day]; ok && prev.Date.After(ts) {
			continue
		}
		byDay[day] = models.PricePoint{Date: ts, Close: s[1]}
	}

	points := make([]models.PricePoint, 0, len(byDay))
	for _, p := range byDay {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

type coinGeckoSearchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

// Search returns up to five coins matching query
func (s *CoinGeckoService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint := s.baseURL + "/search?" + url.Values{"query": {query}}.Encode()

	var resp coinGeckoSearchResponse
	if err := getJSON(ctx, s.httpClient, BreakerCoinGecko, "search", endpoint, s.headers(), &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, coinGeckoSearchLimit)
	for _, c := range resp.Coins {
		if len(results) == coinGeckoSearchLimit {
			break
		}
		results = append(results, models.SearchResult{
			Symbol:    models.NormalizeSymbol(c.Symbol),
			Name:      c.Name,
			AssetType: models.AssetTypeCrypto,
		})
	}
	return results, nil
}
