package analysis

import (
	"fmt"
	"math"
	"sort"

	"investment-tracker/models"
)

// SymbolSeries is a close-price history for one instrument
type SymbolSeries struct {
	Symbol    string
	AssetType models.AssetType
	Prices    []float64
}

func (s SymbolSeries) key() models.SymbolKey {
	return models.SymbolKey{Symbol: s.Symbol, AssetType: s.AssetType}
}

// Returns computes simple period-over-period returns
func Returns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			return nil, fmt.Errorf("%w: zero price at index %d", ErrInvalidInput, i-1)
		}
		out[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return out, nil
}

// Pearson returns the correlation coefficient of x and y.
// A zero-variance input yields 0.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	mx, my := mean(x), mean(y)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	r := cov / math.Sqrt(vx*vy)
	return math.Max(-1, math.Min(1, r))
}

// Correlate builds the Pearson correlation matrix of daily returns.
// Duplicate (symbol, asset type) entries keep their first series. Histories
// are truncated to the shortest, keeping the most recent points.
func Correlate(period models.Period, series []SymbolSeries) (*models.CorrelationMatrix, error) {
	distinct := make([]SymbolSeries, 0, len(series))
	seen := make(map[models.SymbolKey]bool, len(series))
	for _, s := range series {
		if seen[s.key()] {
			continue
		}
		seen[s.key()] = true
		distinct = append(distinct, s)
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 distinct assets, got %d", ErrInsufficientAssets, len(distinct))
	}

	raw := make([][]float64, len(distinct))
	for i, s := range distinct {
		raw[i] = s.Prices
	}
	aligned := TruncateToShortest(raw)
	points := ShortestLength(aligned)
	if points < 3 {
		return nil, fmt.Errorf("%w: correlation needs at least 3 common price points, got %d", ErrInvalidInput, points)
	}

	returns := make([][]float64, len(distinct))
	for i, prices := range aligned {
		r, err := Returns(prices)
		if err != nil {
			return nil, fmt.Errorf("returns for %s: %w", distinct[i].Symbol, err)
		}
		returns[i] = r
	}

	n := len(distinct)
	symbols := seriesLabels(distinct)
	matrix := make([][]float64, n)
	for i := range distinct {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	pairs := make([]models.CorrelationPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := round(Pearson(returns[i], returns[j]), 4)
			matrix[i][j] = c
			matrix[j][i] = c
			first, second := symbols[i], symbols[j]
			if first > second {
				first, second = second, first
			}
			pairs = append(pairs, models.CorrelationPair{
				Symbol1:     first,
				Symbol2:     second,
				Correlation: c,
			})
		}
	}
	SortPairs(pairs)

	return &models.CorrelationMatrix{
		Symbols:    symbols,
		Matrix:     matrix,
		Pairs:      pairs,
		Period:     period,
		DataPoints: points,
	}, nil
}

// seriesLabels names each series by symbol, qualified as "SYMBOL:type"
// when the same ticker appears under both asset types
func seriesLabels(series []SymbolSeries) []string {
	types := make(map[string]map[models.AssetType]bool, len(series))
	for _, s := range series {
		if types[s.Symbol] == nil {
			types[s.Symbol] = make(map[models.AssetType]bool)
		}
		types[s.Symbol][s.AssetType] = true
	}
	labels := make([]string, len(series))
	for i, s := range series {
		labels[i] = s.Symbol
		if len(types[s.Symbol]) > 1 {
			labels[i] = s.Symbol + ":" + string(s.AssetType)
		}
	}
	return labels
}

// SortPairs orders pairs by absolute correlation descending, ties by symbol pair
func SortPairs(pairs []models.CorrelationPair) {
	sort.SliceStable(pairs, func(a, b int) bool {
		ca, cb := math.Abs(pairs[a].Correlation), math.Abs(pairs[b].Correlation)
		if ca != cb {
			return ca > cb
		}
		if pairs[a].Symbol1 != pairs[b].Symbol1 {
			return pairs[a].Symbol1 < pairs[b].Symbol1
		}
		return pairs[a].Symbol2 < pairs[b].Symbol2
	})
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
