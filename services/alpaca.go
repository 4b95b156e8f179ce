package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"investment-tracker/models"
	"investment-tracker/observability"
)

// alpacaDataClient is the subset of the market data client we use
type alpacaDataClient interface {
	GetSnapshot(symbol string, req marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error)
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaService reads stock snapshots and daily bars from Alpaca market data
type AlpacaService struct {
	dataClient alpacaDataClient
}

// NewAlpacaService creates an AlpacaService; an empty dataURL uses the SDK default
func NewAlpacaService(apiKey, apiSecret, dataURL string) *AlpacaService {
	return &AlpacaService{
		dataClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   dataURL,
		}),
	}
}

func (s *AlpacaService) Name() string { return BreakerAlpaca }

// GetQuote prices a symbol from its latest trade, falling back to the daily bar
func (s *AlpacaService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snapshot *marketdata.Snapshot
	err := s.observe("quote", func() error {
		var err error
		snapshot, err = s.dataClient.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", symbol, err)
	}
	if snapshot == nil {
		return nil, ErrNotFound
	}

	var price float64
	ts := time.Now().UTC()
	switch {
	case snapshot.LatestTrade != nil && snapshot.LatestTrade.Price > 0:
		price = snapshot.LatestTrade.Price
		ts = snapshot.LatestTrade.Timestamp.UTC()
	case snapshot.DailyBar != nil && snapshot.DailyBar.Close > 0:
		price = snapshot.DailyBar.Close
		ts = snapshot.DailyBar.Timestamp.UTC()
	default:
		return nil, ErrNotFound
	}

	var prevClose float64
	if snapshot.PrevDailyBar != nil {
		prevClose = snapshot.PrevDailyBar.Close
	}

	return buildQuote(symbol, symbol, price, prevClose, "USD", ts), nil
}

// GetHistory returns daily closes for the last days calendar days
func (s *AlpacaService) GetHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var bars []marketdata.Bar
	err := s.observe("history", func() error {
		var err error
		bars, err = s.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, ErrNotFound
	}

	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, models.PricePoint{
			Date:  bar.Timestamp.UTC(),
			Close: bar.Close,
		})
	}
	return points, nil
}

// observe records request metrics and tags SDK failures as provider errors
func (s *AlpacaService) observe(operation string, fn func() error) error {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, operation)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerAlpaca, operation)

	err := fn()
	if err == nil {
		return nil
	}

	err = fmt.Errorf("%w: %w", ErrProvider, err)
	metrics.RecordExternalAPIError(BreakerAlpaca, operation, errorType(err))
	return err
}
