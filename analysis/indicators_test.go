package analysis

import (
	"math"
	"testing"
	"time"

	"investment-tracker/models"
)

func floatsEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{10, 20, 30, 40}, 2)
	want := []*float64{nil, ptr(15), ptr(25), ptr(35)}

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		switch {
		case want[i] == nil && got[i] != nil:
			t.Errorf("index %d: expected nil, got %f", i, *got[i])
		case want[i] != nil && (got[i] == nil || !floatsEqual(*got[i], *want[i])):
			t.Errorf("index %d: expected %f, got %v", i, *want[i], got[i])
		}
	}
}

func TestSMA_ShortInput(t *testing.T) {
	got := SMA([]float64{1, 2, 3}, 20)
	if len(got) != 3 {
		t.Fatalf("series must keep input length, got %d", len(got))
	}
	for i, v := range got {
		if v != nil {
			t.Errorf("index %d: expected nil", i)
		}
	}
	if Latest(got) != nil {
		t.Error("Latest of an all-nil series should be nil")
	}
}

func TestRSI(t *testing.T) {
	rising := make([]float64, 20)
	falling := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 100 - float64(i)
		flat[i] = 50
	}

	// +2, -1 alternating: avg gain 1, avg loss 0.5, RS 2
	mixed := []float64{100}
	for i := 0; i < 7; i++ {
		last := mixed[len(mixed)-1]
		mixed = append(mixed, last+2, last+1)
	}

	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"all gains", rising, 100},
		{"all losses", falling, 0},
		{"flat series", flat, 100},
		{"mixed window", mixed, 100 - 100.0/3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := RSI(tt.prices, RSIPeriod)
			if len(rsi) != len(tt.prices) {
				t.Fatalf("expected %d entries, got %d", len(tt.prices), len(rsi))
			}
			for i := 0; i < RSIPeriod; i++ {
				if rsi[i] != nil {
					t.Errorf("index %d: expected nil before %d deltas", i, RSIPeriod)
				}
			}
			last := Latest(rsi)
			if last == nil {
				t.Fatal("expected a value at the end of the series")
			}
			if !floatsEqual(*last, tt.want) {
				t.Errorf("expected RSI %f, got %f", tt.want, *last)
			}
		})
	}
}

func TestRSI_Bounded(t *testing.T) {
	prices := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.2, 45.6, 46.3, 46.3, 46, 46.4, 46.2, 45.6, 46.2, 46.6}
	for i, v := range RSI(prices, RSIPeriod) {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			t.Errorf("index %d: RSI %f out of range", i, *v)
		}
	}
}

func TestRSISignalFor(t *testing.T) {
	tests := []struct {
		rsi  *float64
		want models.RSISignal
	}{
		{nil, models.RSINeutral},
		{ptr(71), models.RSIOverbought},
		{ptr(70), models.RSINeutral},
		{ptr(30), models.RSINeutral},
		{ptr(29.9), models.RSIOversold},
	}
	for _, tt := range tests {
		if got := RSISignalFor(tt.rsi); got != tt.want {
			t.Errorf("RSISignalFor(%v) = %s, want %s", tt.rsi, got, tt.want)
		}
	}
}

func TestComputeIndicators(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, 60)
	for i := range points {
		points[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Close: float64(i + 1)}
	}

	set := ComputeIndicators("AAPL", models.Period3M, points)

	if len(set.SMA20) != 60 || len(set.SMA50) != 60 || len(set.RSI) != 60 || len(set.Dates) != 60 {
		t.Fatal("every series must match the input length")
	}
	if set.SMA50[48] != nil || set.SMA50[49] == nil {
		t.Error("SMA50 should start at index 49")
	}
	// mean of 41..60
	if set.CurrentSMA20 == nil || !floatsEqual(*set.CurrentSMA20, 50.5) {
		t.Errorf("expected current SMA20 50.5, got %v", set.CurrentSMA20)
	}
	// mean of 11..60
	if set.CurrentSMA50 == nil || !floatsEqual(*set.CurrentSMA50, 35.5) {
		t.Errorf("expected current SMA50 35.5, got %v", set.CurrentSMA50)
	}
	if set.RSISignal != models.RSIOverbought {
		t.Errorf("steadily rising series should be overbought, got %s", set.RSISignal)
	}
}

func ptr(v float64) *float64 {
	return &v
}
