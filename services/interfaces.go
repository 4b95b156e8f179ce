package services

import (
	"context"

	"investment-tracker/models"
)

// MarketDataProvider is one upstream price source
type MarketDataProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// SymbolSearcher looks up symbols by free-text query
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// PriceFetcherInterface routes price lookups to the provider for an asset type
type PriceFetcherInterface interface {
	GetCurrentPrice(ctx context.Context, symbol string, assetType models.AssetType) (*models.Quote, error)
	GetHistory(ctx context.Context, symbol string, assetType models.AssetType, period models.Period) ([]models.PricePoint, error)
	Search(ctx context.Context, query string, assetType models.AssetType) ([]models.SearchResult, error)
}

// NotifierInterface delivers one notification over its channel
type NotifierInterface interface {
	Send(ctx context.Context, n models.Notification) error
}

// EmailSenderInterface sends an HTML email through an SMTP relay
type EmailSenderInterface interface {
	SendEmail(ctx context.Context, smtp SMTPSettings, to, subject, htmlBody string) error
}

// TelegramSenderInterface posts a message through the Bot API
type TelegramSenderInterface interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}

// NotificationSettingsSource returns the current delivery credentials
type NotificationSettingsSource interface {
	NotificationSettings() *models.NotificationSettings
}

// BedrockServiceInterface is the hosted model used for portfolio commentary
type BedrockServiceInterface interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ MarketDataProvider = (*YahooService)(nil)
var _ SymbolSearcher = (*YahooService)(nil)
var _ MarketDataProvider = (*CoinGeckoService)(nil)
var _ SymbolSearcher = (*CoinGeckoService)(nil)
var _ MarketDataProvider = (*AlpacaService)(nil)
var _ MarketDataProvider = (*AlphaVantageService)(nil)
var _ PriceFetcherInterface = (*PriceService)(nil)
var _ NotifierInterface = (*Dispatcher)(nil)
var _ EmailSenderInterface = (*EmailService)(nil)
var _ TelegramSenderInterface = (*TelegramService)(nil)
var _ BedrockServiceInterface = (*BedrockService)(nil)
