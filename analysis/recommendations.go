package analysis

import (
	"fmt"
	"math"

	"investment-tracker/models"
)

const (
	highCorrelationLevel   = 0.8
	maxDiversificationTips = 3
)

// Recommend derives portfolio recommendations from per-asset trend analyses
// and an optional correlation matrix.
func Recommend(trends []*models.TrendAnalysis, corr *models.CorrelationMatrix, totalAssets int) *models.RecommendationReport {
	recs := make([]models.Recommendation, 0)

	for _, t := range trends {
		if t == nil {
			continue
		}
		if rsi := t.Technical.RSI; rsi != nil {
			switch {
			case *rsi > RSIOverboughtLevel:
				recs = append(recs, models.Recommendation{
					Symbol:    t.Symbol,
					Type:      models.RecommendationWarning,
					Indicator: "RSI",
					Message:   fmt.Sprintf("%s is overbought (RSI %.1f). Consider taking profits.", t.Symbol, *rsi),
				})
			case *rsi < RSIOversoldLevel:
				recs = append(recs, models.Recommendation{
					Symbol:    t.Symbol,
					Type:      models.RecommendationOpportunity,
					Indicator: "RSI",
					Message:   fmt.Sprintf("%s is oversold (RSI %.1f). Possible buying opportunity.", t.Symbol, *rsi),
				})
			}
		}

		short, long := t.ShortTerm.Trend, t.LongTerm.Trend
		switch {
		case short == models.TrendBearish && long == models.TrendBullish:
			recs = append(recs, models.Recommendation{
				Symbol:    t.Symbol,
				Type:      models.RecommendationInfo,
				Indicator: "Trend",
				Message:   fmt.Sprintf("%s: short-term pullback within an uptrend. Possible entry point.", t.Symbol),
			})
		case short == models.TrendBullish && long == models.TrendBearish:
			recs = append(recs, models.Recommendation{
				Symbol:    t.Symbol,
				Type:      models.RecommendationWarning,
				Indicator: "Trend",
				Message:   fmt.Sprintf("%s: rebound within a downtrend. Be cautious.", t.Symbol),
			})
		}
	}

	if corr != nil {
		added := 0
		for _, p := range corr.Pairs {
			if added == maxDiversificationTips {
				break
			}
			if math.Abs(p.Correlation) <= highCorrelationLevel {
				continue
			}
			recs = append(recs, models.Recommendation{
				Symbol:    p.Symbol1 + "/" + p.Symbol2,
				Type:      models.RecommendationDiversification,
				Indicator: "Correlation",
				Message:   fmt.Sprintf("High correlation (%.2f) between %s and %s. Consider diversifying.", p.Correlation, p.Symbol1, p.Symbol2),
			})
			added++
		}
	}

	report := &models.RecommendationReport{
		Recommendations:     recs,
		TotalAssetsAnalyzed: totalAssets,
	}
	for _, r := range recs {
		switch r.Type {
		case models.RecommendationWarning:
			report.Warnings++
		case models.RecommendationOpportunity:
			report.Opportunities++
		}
	}
	return report
}
