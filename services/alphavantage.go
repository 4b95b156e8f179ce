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
	DefaultAlphaVantageBaseURL = "https://www.alphavantage.co/query"
	// compact output covers the last 100 trading days
	alphaVantageCompactDays = 140
)

// AlphaVantageService reads stock quotes and daily series from Alpha Vantage
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		baseURL:    DefaultAlphaVantageBaseURL,
	}
}

func (s *AlphaVantageService) Name() string { return BreakerAlphaVantage }

// QuoteResponse represents a GLOBAL_QUOTE payload
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// DailySeriesResponse represents a TIME_SERIES_DAILY payload
type DailySeriesResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (s *AlphaVantageService) query(ctx context.Context, operation string, params url.Values, out any) error {
	params.Set("apikey", s.apiKey)
	return getJSON(ctx, s.httpClient, BreakerAlphaVantage, operation, s.baseURL+"?"+params.Encode(), nil, out)
}

// rateLimited turns the throttling notice Alpha Vantage returns with status 200 into an error
func rateLimited(note, information string) error {
	if msg := note + information; msg != "" {
		return fmt.Errorf("%w: %s", ErrProvider, msg)
	}
	return nil
}

// GetQuote returns the latest price for a symbol
func (s *AlphaVantageService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	var resp QuoteResponse
	if err := s.query(ctx, "quote", params, &resp); err != nil {
		return nil, err
	}
	if err := rateLimited(resp.Note, resp.Information); err != nil {
		return nil, err
	}

	gq := resp.GlobalQuote
	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil || price <= 0 {
		return nil, ErrNotFound
	}
	prevClose, _ := strconv.ParseFloat(gq.PrevClose, 64)

	ts := time.Now().UTC()
	if day, err := time.Parse(time.DateOnly, gq.LatestDay); err == nil {
		ts = day
	}

	q := buildQuote(symbol, symbol, price, prevClose, "USD", ts)
	if change, err := strconv.ParseFloat(gq.Change, 64); err == nil {
		q.DailyChange = change
	}
	if pct, err := strconv.ParseFloat(strings.TrimSuffix(gq.ChangePercent, "%"), 64); err == nil {
		q.DailyChangePercent = pct
	}
	return q, nil
}

// GetHistory returns daily closes for the last days calendar days
func (s *AlphaVantageService) GetHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	outputSize := "compact"
	if days > alphaVantageCompactDays {
		outputSize = "full"
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize)

	var resp DailySeriesResponse
	if err := s.query(ctx, "history", params, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, ErrNotFound
	}
	if err := rateLimited(resp.Note, resp.Information); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	points := make([]models.PricePoint, 0, len(resp.Series))
	for day, bar := range resp.Series {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil || date.Before(cutoff) {
			continue
		}
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil || closePrice <= 0 {
			continue
		}
		points = append(points, models.PricePoint{Date: date, Close: closePrice})
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
