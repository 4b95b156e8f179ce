package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"investment-tracker/models"
)

const (
	MaxPredictionDays = 30

	// z-score of a two-sided 95% interval
	bandZ = 1.96
	// each further day widens the band by another 10% of the base margin
	bandGrowth = 0.1

	forecastTrendThreshold = 3.0
)

// Predict fits close = b0 + b1·d + b2·d² by least squares, d being days since
// the first point, and projects the next `days` calendar days. Each projection
// carries a band of ±1.96 residual standard deviations, widened per day ahead.
func Predict(symbol string, points []models.PricePoint, days int) (*models.PriceForecast, error) {
	if days < 1 || days > MaxPredictionDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidInput, MaxPredictionDays, days)
	}
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: prediction needs at least 3 price points, got %d", ErrInvalidInput, n)
	}

	origin := points[0].Date
	x := make([]float64, n)
	y := make([]float64, n)
	design := mat.NewDense(n, 3, nil)
	for i, p := range points {
		x[i] = math.Round(p.Date.Sub(origin).Hours() / 24)
		y[i] = p.Close
		design.SetRow(i, []float64{1, x[i], x[i] * x[i]})
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, mat.NewVecDense(n, y)); err != nil {
		return nil, fmt.Errorf("%w: cannot fit trend for %s: %v", ErrInvalidInput, symbol, err)
	}
	b0, b1, b2 := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	fit := func(d float64) float64 { return b0 + b1*d + b2*d*d }

	residuals := make([]float64, n)
	for i := range y {
		residuals[i] = y[i] - fit(x[i])
	}
	_, residualStd := stat.PopMeanStdDev(residuals, nil)
	r2 := rSquared(y, residuals)

	meanY, stdY := stat.PopMeanStdDev(y, nil)
	volatility := 0.0
	if meanY != 0 {
		volatility = stdY / meanY
	}

	last := points[n-1]
	lastX := x[n-1]
	predictions := make([]models.PricePrediction, days)
	for i := range predictions {
		price := fit(lastX + float64(i+1))
		margin := residualStd * bandZ * (1 + float64(i)*bandGrowth)
		predictions[i] = models.PricePrediction{
			Date:           last.Date.AddDate(0, 0, i+1),
			PredictedPrice: math.Max(0, price),
			LowerBound:     math.Max(0, price-margin),
			UpperBound:     price + margin,
		}
	}

	confidence := math.Max(0, math.Min(100, r2*100*(1-volatility)))
	return &models.PriceForecast{
		Symbol:               symbol,
		CurrentPrice:         last.Close,
		Predictions:          predictions,
		Trend:                forecastTrend(last.Close, predictions[days-1].PredictedPrice),
		Confidence:           round(confidence, 2),
		PredictionDays:       days,
		ModelR2:              round(r2, 4),
		HistoricalVolatility: round(volatility*100, 2),
	}, nil
}

// rSquared is 1 - SSres/SStot. A series with no variance has nothing to explain and scores 0.
func rSquared(y, residuals []float64) float64 {
	m := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		ssRes += residuals[i] * residuals[i]
		ssTot += (y[i] - m) * (y[i] - m)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func forecastTrend(current, final float64) models.Trend {
	if current == 0 {
		return models.TrendNeutral
	}
	change := (final - current) / current * 100
	switch {
	case change > forecastTrendThreshold:
		return models.TrendBullish
	case change < -forecastTrendThreshold:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
