package analysis

import (
	"investment-tracker/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Valuate prices every asset against quotes and aggregates totals.
// Assets without a usable quote are left out of the totals and reported
// as warnings; the snapshot itself never fails.
func Valuate(assets []models.Asset, quotes map[models.SymbolKey]models.Quote) *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		TotalInvested:          decimal.Zero,
		CurrentValue:           decimal.Zero,
		TotalProfitLoss:        decimal.Zero,
		TotalProfitLossPercent: decimal.Zero,
		Assets:                 make([]models.AssetValuation, 0, len(assets)),
	}

	for _, asset := range assets {
		quote, ok := quotes[asset.Key()]
		if !ok || quote.Price <= 0 {
			snap.Warnings = append(snap.Warnings, models.PortfolioWarning{
				AssetID:   asset.ID.String(),
				Symbol:    asset.Symbol,
				AssetType: asset.AssetType,
				Reason:    ErrPriceUnavailable.Error(),
			})
			continue
		}

		v := ValuateAsset(asset, quote)
		snap.Assets = append(snap.Assets, v)
		snap.TotalInvested = snap.TotalInvested.Add(v.TotalInvested)
		snap.CurrentValue = snap.CurrentValue.Add(v.CurrentValue)
	}

	snap.TotalProfitLoss = snap.CurrentValue.Sub(snap.TotalInvested)
	snap.TotalProfitLossPercent = percentOf(snap.TotalProfitLoss, snap.TotalInvested)
	return snap
}

// ValuateAsset computes the value and profit of a single holding
func ValuateAsset(asset models.Asset, quote models.Quote) models.AssetValuation {
	price := decimal.NewFromFloat(quote.Price)
	invested := asset.CostBasis()
	value := asset.Quantity.Mul(price)
	pl := value.Sub(invested)

	return models.AssetValuation{
		Asset:              asset,
		CurrentPrice:       price,
		CurrentValue:       value,
		TotalInvested:      invested,
		ProfitLoss:         pl,
		ProfitLossPercent:  percentOf(pl, invested),
		DailyChange:        quote.DailyChange,
		DailyChangePercent: quote.DailyChangePercent,
	}
}

// UnpricedByType counts snapshot warnings per asset type
func UnpricedByType(snap *models.PortfolioSnapshot) map[string]int {
	counts := make(map[string]int)
	for _, w := range snap.Warnings {
		counts[string(w.AssetType)]++
	}
	return counts
}

// percentOf returns part/whole*100, or zero when whole is zero
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(4)
}
