package analysis

import (
	"fmt"

	"investment-tracker/models"

	"github.com/shopspring/decimal"
)

// Normalize rescales values so the first entry reads 100
func Normalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInvalidInput)
	}
	base := values[0]
	if base == 0 {
		return nil, fmt.Errorf("%w: series base value is zero", ErrInvalidInput)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / base * 100
	}
	out[0] = 100
	return out, nil
}

// ShortestLength returns the length of the shortest series, or 0 for none
func ShortestLength(series [][]float64) int {
	if len(series) == 0 {
		return 0
	}
	n := len(series[0])
	for _, s := range series[1:] {
		if len(s) < n {
			n = len(s)
		}
	}
	return n
}

// TruncateToShortest cuts every series to the shortest length, keeping the most recent points
func TruncateToShortest(series [][]float64) [][]float64 {
	n := ShortestLength(series)
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = s[len(s)-n:]
	}
	return out
}

// Holding is a quantity paired with its close-price history
type Holding struct {
	Quantity decimal.Decimal
	Closes   []float64
}

// PortfolioValueSeries sums quantity × close across holdings after
// truncating every history to the shortest, aligned by index.
func PortfolioValueSeries(holdings []Holding) []float64 {
	if len(holdings) == 0 {
		return nil
	}
	closes := make([][]float64, len(holdings))
	for i, h := range holdings {
		closes[i] = h.Closes
	}
	aligned := TruncateToShortest(closes)
	n := ShortestLength(aligned)

	out := make([]float64, n)
	for i, h := range holdings {
		qty := h.Quantity.InexactFloat64()
		for j := 0; j < n; j++ {
			out[j] += qty * aligned[i][j]
		}
	}
	return out
}

// CompareToBenchmarks truncates all series to a common length and rescales each to base 100.
// The first series is conventionally the portfolio.
func CompareToBenchmarks(period models.Period, series []models.NamedSeries) (*models.BenchmarkComparison, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: benchmark comparison needs at least 2 series, got %d", ErrInsufficientAssets, len(series))
	}

	raw := make([][]float64, len(series))
	for i, s := range series {
		raw[i] = s.Values
	}
	aligned := TruncateToShortest(raw)
	points := ShortestLength(aligned)
	if points == 0 {
		return nil, fmt.Errorf("%w: a benchmark series has no data", ErrInvalidInput)
	}

	result := &models.BenchmarkComparison{
		Period: period,
		Points: points,
		Series: make([]models.BenchmarkSeries, len(series)),
	}
	for i, s := range series {
		normalized, err := Normalize(aligned[i])
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", s.Label, err)
		}
		result.Series[i] = models.BenchmarkSeries{
			Label:      s.Label,
			Symbol:     s.Symbol,
			Normalized: normalized,
		}
	}
	return result, nil
}
