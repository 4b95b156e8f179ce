package analysis

import (
	"errors"
	"testing"

	"investment-tracker/models"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		prices []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{1, 2, 3}, 0},
		{[]float64{100, 120, 90, 130}, 25},
		{[]float64{100, 50, 75}, 50},
	}
	for _, tt := range tests {
		if got := MaxDrawdown(tt.prices); got != tt.want {
			t.Errorf("MaxDrawdown(%v) = %f, want %f", tt.prices, got, tt.want)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		change    float64
		threshold float64
		want      models.Trend
	}{
		{2.1, shortTermThreshold, models.TrendBullish},
		{2, shortTermThreshold, models.TrendNeutral},
		{-2.1, shortTermThreshold, models.TrendBearish},
		{4, longTermThreshold, models.TrendNeutral},
		{-6, longTermThreshold, models.TrendBearish},
	}
	for _, tt := range tests {
		if got := ClassifyTrend(tt.change, tt.threshold); got != tt.want {
			t.Errorf("ClassifyTrend(%f, %f) = %s, want %s", tt.change, tt.threshold, got, tt.want)
		}
	}
}

func TestSharpeRatio_ZeroVariance(t *testing.T) {
	if got := SharpeRatio([]float64{0.01, 0.01, 0.01}); got != 0 {
		t.Errorf("expected 0 for constant returns, got %f", got)
	}
	if got := SharpeRatio(nil); got != 0 {
		t.Errorf("expected 0 for no returns, got %f", got)
	}
}

func TestVolatility(t *testing.T) {
	// sample stdev of {0.1, -0.1} is sqrt(0.02)
	got := Volatility([]float64{0.1, -0.1})
	if !floatsEqual(got, 14.142135623730951) {
		t.Errorf("unexpected volatility %f", got)
	}
}

func TestAnalyzeTrend(t *testing.T) {
	long := make([]float64, 60)
	for i := range long {
		long[i] = 100 + float64(i)
	}
	short := long[len(long)-21:]

	a, err := AnalyzeTrend("NVDA", short, long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CurrentPrice != 159 {
		t.Errorf("expected current price 159, got %f", a.CurrentPrice)
	}
	if a.ShortTerm.Period != models.Period1M || a.LongTerm.Period != models.Period3M {
		t.Error("unexpected window periods")
	}
	if a.LongTerm.Trend != models.TrendBullish {
		t.Errorf("expected bullish long-term trend, got %s", a.LongTerm.Trend)
	}
	if a.LongTerm.MaxDrawdown != 0 {
		t.Errorf("monotonic series has no drawdown, got %f", a.LongTerm.MaxDrawdown)
	}
	if a.Technical.RSI == nil || *a.Technical.RSI != 100 {
		t.Errorf("expected RSI 100, got %v", a.Technical.RSI)
	}
	if a.Technical.SMA50 == nil {
		t.Error("expected SMA50 from the 3M window")
	}
	if a.Technical.PriceVsSMA20 != "above" {
		t.Errorf("expected price above SMA20, got %q", a.Technical.PriceVsSMA20)
	}
}

func TestAnalyzeTrend_NoHistory(t *testing.T) {
	if _, err := AnalyzeTrend("AAPL", nil, nil); !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
}
