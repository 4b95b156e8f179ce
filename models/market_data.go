package models

import (
	"fmt"
	"strings"
	"time"
)

// Quote is the current price of a symbol as reported by a provider
type Quote struct {
	Symbol             string    `json:"symbol"`
	Name               string    `json:"name"`
	Price              float64   `json:"price"`
	PreviousClose      float64   `json:"previous_close"`
	DailyChange        float64   `json:"daily_change"`
	DailyChangePercent float64   `json:"daily_change_percent"`
	Currency           string    `json:"currency"`
	Timestamp          time.Time `json:"timestamp"`
}

// PricePoint is a daily close. Never persisted.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Closes extracts the close prices from a series
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Period is a history lookback window
type Period string

const (
	Period1W Period = "1W"
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
)

var periodDays = map[Period]int{
	Period1W: 7,
	Period1M: 30,
	Period3M: 90,
	Period6M: 180,
	Period1Y: 365,
}

// Days returns the number of calendar days the period covers
func (p Period) Days() int {
	return periodDays[p]
}

// ParsePeriod normalizes a period string such as "3m" or "1Y"
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("%w: period must be one of 1W, 1M, 3M, 6M, 1Y, got %q", ErrInvalidInput, s)
	}
	return p, nil
}

// SearchResult is a symbol lookup hit
type SearchResult struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	AssetType AssetType `json:"type"`
	Exchange  string    `json:"exchange,omitempty"`
}

// PopularAsset is a quote with a short close-price sparkline
type PopularAsset struct {
	Quote
	AssetType AssetType `json:"type"`
	Sparkline []float64 `json:"sparkline"`
}

// PriceHistory is the response shape of a history lookup
type PriceHistory struct {
	Symbol    string       `json:"symbol"`
	AssetType AssetType    `json:"asset_type"`
	Period    Period       `json:"period"`
	Points    []PricePoint `json:"data"`
}
