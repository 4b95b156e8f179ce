package models

import "github.com/shopspring/decimal"

// AssetValuation is an asset priced at its current quote
type AssetValuation struct {
	Asset
	CurrentPrice       decimal.Decimal `json:"current_price"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	TotalInvested      decimal.Decimal `json:"total_invested"`
	ProfitLoss         decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent  decimal.Decimal `json:"profit_loss_percent"`
	DailyChange        float64         `json:"daily_change"`
	DailyChangePercent float64         `json:"daily_change_percent"`
}

// PortfolioWarning describes an asset left out of the totals
type PortfolioWarning struct {
	AssetID   string    `json:"asset_id"`
	Symbol    string    `json:"symbol"`
	AssetType AssetType `json:"asset_type"`
	Reason    string    `json:"reason"`
}

// PortfolioSnapshot aggregates valuations across priced assets.
// CurrentValue equals the sum of Assets[i].CurrentValue.
type PortfolioSnapshot struct {
	TotalInvested          decimal.Decimal    `json:"total_invested"`
	CurrentValue           decimal.Decimal    `json:"current_value"`
	TotalProfitLoss        decimal.Decimal    `json:"total_profit_loss"`
	TotalProfitLossPercent decimal.Decimal    `json:"total_profit_loss_percent"`
	Assets                 []AssetValuation   `json:"assets"`
	Warnings               []PortfolioWarning `json:"warnings,omitempty"`
}
