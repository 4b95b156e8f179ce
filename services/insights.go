package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investment-tracker/models"
)

const insightSystemPrompt = `You are a concise portfolio commentator for a personal investment tracker.
Given a holdings summary and rule-based signals, write at most five short sentences of plain text:
overall performance, concentration, and the signals worth attention.
Do not give personalised financial advice and do not invent figures that are not in the input.`

// InsightService asks the hosted model for commentary on a snapshot
type InsightService struct {
	model BedrockServiceInterface
	now   func() time.Time
}

func NewInsightService(model BedrockServiceInterface) *InsightService {
	return &InsightService{model: model, now: time.Now}
}

// PortfolioInsight summarises the snapshot and recommendations for the model
func (s *InsightService) PortfolioInsight(ctx context.Context, snapshot *models.PortfolioSnapshot, report *models.RecommendationReport) (*models.PortfolioInsight, error) {
	if snapshot == nil || len(snapshot.Assets) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no priced assets", models.ErrInsufficientAssets)
	}

	text, err := s.model.InvokeWithPrompt(ctx, insightSystemPrompt, insightPrompt(snapshot, report))
	if err != nil {
		return nil, err
	}

	return &models.PortfolioInsight{
		Commentary:  strings.TrimSpace(text),
		GeneratedAt: s.now().UTC(),
	}, nil
}

func insightPrompt(snapshot *models.PortfolioSnapshot, report *models.RecommendationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total invested: %s\n", snapshot.TotalInvested.StringFixed(2))
	fmt.Fprintf(&b, "Current value: %s\n", snapshot.CurrentValue.StringFixed(2))
	fmt.Fprintf(&b, "Profit/loss: %s (%s%%)\n\n", snapshot.TotalProfitLoss.StringFixed(2), snapshot.TotalProfitLossPercent.StringFixed(2))

	b.WriteString("Holdings:\n")
	for _, a := range snapshot.Assets {
		fmt.Fprintf(&b, "- %s (%s): value %s, P/L %s%%, today %.2f%%\n",
			a.Symbol, a.AssetType, a.CurrentValue.StringFixed(2), a.ProfitLossPercent.StringFixed(2), a.DailyChangePercent)
	}

	if report != nil && len(report.Recommendations) > 0 {
		b.WriteString("\nSignals:\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&b, "- [%s/%s] %s: %s\n", r.Type, r.Indicator, r.Symbol, r.Message)
		}
	}
	return b.String()
}
