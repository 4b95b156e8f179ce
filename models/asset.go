package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType distinguishes the price provider family for a holding
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeCrypto AssetType = "crypto"
)

// Valid reports whether t is a known asset type
func (t AssetType) Valid() bool {
	return t == AssetTypeStock || t == AssetTypeCrypto
}

// ParseAssetType normalizes and validates an asset type string
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: asset_type must be stock or crypto, got %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Asset is a user holding. Immutable once created.
type Asset struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	AssetType     AssetType       `json:"asset_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewAsset builds a validated asset with a fresh id.
// A zero purchaseDate defaults to now.
func NewAsset(symbol, name string, assetType AssetType, quantity, purchasePrice decimal.Decimal, purchaseDate time.Time) (*Asset, error) {
	now := time.Now().UTC()
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	a := &Asset{
		ID:            uuid.New(),
		Symbol:        NormalizeSymbol(symbol),
		Name:          strings.TrimSpace(name),
		AssetType:     assetType,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate,
		CreatedAt:     now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.Name == "" {
		a.Name = a.Symbol
	}
	return a, nil
}

// Validate checks the required fields of an asset
func (a *Asset) Validate() error {
	if err := ValidateSymbol(a.Symbol); err != nil {
		return err
	}
	if !a.AssetType.Valid() {
		return fmt.Errorf("%w: asset_type must be stock or crypto", ErrInvalidInput)
	}
	if !a.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !a.PurchasePrice.IsPositive() {
		return fmt.Errorf("%w: purchase_price must be positive", ErrInvalidInput)
	}
	return nil
}

// CostBasis returns quantity × purchase price
func (a *Asset) CostBasis() decimal.Decimal {
	return a.Quantity.Mul(a.PurchasePrice)
}

// Key identifies the price series an asset needs
func (a *Asset) Key() SymbolKey {
	return SymbolKey{Symbol: a.Symbol, AssetType: a.AssetType}
}

// SymbolKey identifies a priced instrument
type SymbolKey struct {
	Symbol    string
	AssetType AssetType
}

func (k SymbolKey) String() string {
	return string(k.AssetType) + ":" + k.Symbol
}

// symbolPattern covers exchange tickers (BRK-B, RDS.A), indices (^GSPC) and FX pairs (EURUSD=X)
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.^=\-]{1,20}$`)

// ValidateSymbol checks a normalized symbol against the ticker character set
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: symbol %q may only contain letters, digits and . ^ = -, up to 20 characters", ErrInvalidInput, symbol)
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
