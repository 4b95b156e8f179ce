package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"investment-tracker/models"
)

const (
	DefaultYahooBaseURL = "https://query2.finance.yahoo.com"
	yahooSearchLimit    = 10
)

// YahooService reads quotes, daily closes and symbol search from Yahoo Finance.
// It is the stock fallback when no keyed provider is configured.
type YahooService struct {
	baseURL    string
	httpClient *http.Client
}

func NewYahooService(baseURL string) *YahooService {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

func (s *YahooService) Name() string { return BreakerYahoo }

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		Currency           string  `json:"currency"`
		ShortName          string  `json:"shortName"`
		LongName           string  `json:"longName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		PreviousClose      float64 `json:"previousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (s *YahooService) chart(ctx context.Context, symbol string, params url.Values) (*yahooChartResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.baseURL, url.PathEscape(symbol), params.Encode())
	headers := map[string]string{"User-Agent": browserUserAgent}

	var resp yahooChartResponse
	if err := getJSON(ctx, s.httpClient, BreakerYahoo, "chart", endpoint, headers, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrProvider, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Chart.Result[0], nil
}

// GetQuote returns the latest price and the change against the previous close
func (s *YahooService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")

	result, err := s.chart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, ErrNotFound
	}

	prevClose := meta.ChartPreviousClose
	// With a multi-day range chartPreviousClose is the close before the range,
	// so prefer the second to last daily close when present.
	if closes := result.closes(); len(closes) >= 2 {
		prevClose = closes[len(closes)-2].Close
	} else if meta.PreviousClose > 0 {
		prevClose = meta.PreviousClose
	}

	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = symbol
	}

	ts := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		ts = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return buildQuote(symbol, name, meta.RegularMarketPrice, prevClose, meta.Currency, ts), nil
}

// GetHistory returns daily closes covering the last days calendar days
func (s *YahooService) GetHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))

	result, err := s.chart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	points := result.closes()
	if len(points) == 0 {
		return nil, ErrNotFound
	}
	return points, nil
}

// closes zips timestamps with non-null closes
func (r *yahooChartResult) closes() []models.PricePoint {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	raw := r.Indicators.Quote[0].Close
	points := make([]models.PricePoint, 0, len(raw))
	for i, ts := range r.Timestamp {
		if i >= len(raw) || raw[i] == nil || *raw[i] <= 0 {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *raw[i],
		})
	}
	return points
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

var yahooStockQuoteTypes = map[string]bool{
	"EQUITY":     true,
	"ETF":        true,
	"INDEX":      true,
	"MUTUALFUND": true,
}

// Search returns stock-like instruments matching query
func (s *YahooService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", strconv.Itoa(yahooSearchLimit))
	params.Set("newsCount", "0")

	endpoint := s.baseURL + "/v1/finance/search?" + params.Encode()
	headers := map[string]string{"User-Agent": browserUserAgent}

	var resp yahooSearchResponse
	if err := getJSON(ctx, s.httpClient, BreakerYahoo, "search", endpoint, headers, &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if !yahooStockQuoteTypes[q.QuoteType] || q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, models.SearchResult{
			Symbol:    q.Symbol,
			Name:      name,
			AssetType: models.AssetTypeStock,
			Exchange:  q.Exchange,
		})
	}
	return results, nil
}

// buildQuote fills the derived change fields from price and previous close
func buildQuote(symbol, name string, price, prevClose float64, currency string, ts time.Time) *models.Quote {
	if currency == "" {
		currency = "USD"
	}
	q := &models.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		PreviousClose: prevClose,
		Currency:      strings.ToUpper(currency),
		Timestamp:     ts,
	}
	if prevClose > 0 {
		q.DailyChange = price - prevClose
		q.DailyChangePercent = q.DailyChange / prevClose * 100
	}
	return q
}
