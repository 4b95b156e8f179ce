package analysis

import (
	"time"

	"investment-tracker/models"
)

const (
	RSIPeriod      = 14
	SMAShortWindow = 20
	SMALongWindow  = 50

	RSIOverboughtLevel = 70.0
	RSIOversoldLevel   = 30.0
)

// SMA returns the simple moving average of prices over window n.
// Entries before index n-1 are nil.
func SMA(prices []float64, n int) []*float64 {
	out := make([]*float64, len(prices))
	if n <= 0 {
		return out
	}
	for i := n - 1; i < len(prices); i++ {
		sum := 0.0
		for _, p := range prices[i-n+1 : i+1] {
			sum += p
		}
		v := sum / float64(n)
		out[i] = &v
	}
	return out
}

// RSI returns the relative strength index over the trailing period deltas.
// Gains and losses are plain means over the window, not Wilder-smoothed.
// The first period entries are nil. A window with no losses reads 100.
func RSI(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 {
		return out
	}
	for i := period; i < len(prices); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			change := prices[j] - prices[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}

		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		v := 100.0
		if avgLoss != 0 {
			rs := avgGain / avgLoss
			v = 100 - (100 / (1 + rs))
		}
		out[i] = &v
	}
	return out
}

// RSISignalFor classifies an RSI reading
func RSISignalFor(rsi *float64) models.RSISignal {
	switch {
	case rsi == nil:
		return models.RSINeutral
	case *rsi > RSIOverboughtLevel:
		return models.RSIOverbought
	case *rsi < RSIOversoldLevel:
		return models.RSIOversold
	default:
		return models.RSINeutral
	}
}

// Latest returns the last non-nil entry of a series
func Latest(series []*float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			v := *series[i]
			return &v
		}
	}
	return nil
}

// ComputeIndicators builds SMA20, SMA50 and RSI14 over a price history
func ComputeIndicators(symbol string, period models.Period, points []models.PricePoint) *models.IndicatorSet {
	prices := models.Closes(points)
	dates := make([]time.Time, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}

	set := &models.IndicatorSet{
		Symbol: symbol,
		Period: period,
		Dates:  dates,
		Prices: prices,
		SMA20:  SMA(prices, SMAShortWindow),
		SMA50:  SMA(prices, SMALongWindow),
		RSI:    RSI(prices, RSIPeriod),
	}
	set.CurrentSMA20 = Latest(set.SMA20)
	set.CurrentSMA50 = Latest(set.SMA50)
	set.CurrentRSI = Latest(set.RSI)
	set.RSISignal = RSISignalFor(set.CurrentRSI)
	return set
}
