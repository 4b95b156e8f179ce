package analysis

import (
	"fmt"
	"math"

	"investment-tracker/models"
)

const (
	tradingDaysPerYear = 252
	riskFreeRate       = 0.02

	shortTermThreshold = 2.0
	longTermThreshold  = 5.0
)

// ChangePercent returns the percent move from the first to the last price
func ChangePercent(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prices[0]) / prices[0] * 100
}

// Volatility returns the sample standard deviation of returns, in percent
func Volatility(returns []float64) float64 {
	return stddev(returns) * 100
}

// MaxDrawdown returns the largest peak-to-trough decline in percent
func MaxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	peak := prices[0]
	maxDD := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := (peak - p) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return round(maxDD, 2)
}

// SharpeRatio annualizes daily returns against a 2% risk-free rate
func SharpeRatio(returns []float64) float64 {
	sd := stddev(returns)
	if sd == 0 {
		return 0
	}
	annualReturn := mean(returns) * tradingDaysPerYear
	annualStd := sd * math.Sqrt(tradingDaysPerYear)
	return round((annualReturn-riskFreeRate)/annualStd, 2)
}

// ClassifyTrend labels a percent change against a symmetric threshold
func ClassifyTrend(changePct, threshold float64) models.Trend {
	switch {
	case changePct > threshold:
		return models.TrendBullish
	case changePct < -threshold:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// WindowMetrics computes the trend metrics of a single lookback window
func WindowMetrics(period models.Period, prices []float64, threshold float64) (models.TrendMetrics, error) {
	returns, err := Returns(prices)
	if err != nil {
		return models.TrendMetrics{}, err
	}
	change := ChangePercent(prices)
	return models.TrendMetrics{
		Period:      period,
		Trend:       ClassifyTrend(change, threshold),
		ChangePct:   round(change, 4),
		Volatility:  round(Volatility(returns), 4),
		MaxDrawdown: MaxDrawdown(prices),
		SharpeRatio: SharpeRatio(returns),
	}, nil
}

// AnalyzeTrend combines 1M and 3M window metrics with the latest indicator readings.
// Indicators are read from the longer window so SMA50 has enough history.
func AnalyzeTrend(symbol string, shortTerm, longTerm []float64) (*models.TrendAnalysis, error) {
	if len(shortTerm) == 0 && len(longTerm) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s", ErrPriceUnavailable, symbol)
	}

	short, err := WindowMetrics(models.Period1M, shortTerm, shortTermThreshold)
	if err != nil {
		return nil, fmt.Errorf("short-term metrics for %s: %w", symbol, err)
	}
	long, err := WindowMetrics(models.Period3M, longTerm, longTermThreshold)
	if err != nil {
		return nil, fmt.Errorf("long-term metrics for %s: %w", symbol, err)
	}

	var current float64
	if len(shortTerm) > 0 {
		current = shortTerm[len(shortTerm)-1]
	} else {
		current = longTerm[len(longTerm)-1]
	}

	source := longTerm
	if len(source) == 0 {
		source = shortTerm
	}
	tech := models.TechnicalSummary{
		RSI:   Latest(RSI(source, RSIPeriod)),
		SMA20: Latest(SMA(source, SMAShortWindow)),
		SMA50: Latest(SMA(source, SMALongWindow)),
	}
	if tech.SMA20 != nil {
		if current > *tech.SMA20 {
			tech.PriceVsSMA20 = "above"
		} else {
			tech.PriceVsSMA20 = "below"
		}
	}

	return &models.TrendAnalysis{
		Symbol:       symbol,
		CurrentPrice: current,
		ShortTerm:    short,
		LongTerm:     long,
		Technical:    tech,
	}, nil
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
