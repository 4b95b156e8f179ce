package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewAsset(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		assetType AssetType
		quantity  decimal.Decimal
		price     decimal.Decimal
		wantErr   bool
	}{
		{"valid stock", " aapl ", AssetTypeStock, decimal.NewFromInt(10), decimal.NewFromInt(100), false},
		{"valid crypto fraction", "btc", AssetTypeCrypto, decimal.RequireFromString("0.25"), decimal.NewFromInt(40000), false},
		{"missing symbol", "  ", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), true},
		{"unknown type", "AAPL", AssetType("bond"), decimal.NewFromInt(1), decimal.NewFromInt(1), true},
		{"zero quantity", "AAPL", AssetTypeStock, decimal.Zero, decimal.NewFromInt(1), true},
		{"negative price", "AAPL", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(-5), true},
		{"index symbol", "^gspc", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), false},
		{"class share symbol", "brk-b", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), false},
		{"markup in symbol", "<img src=x onerror=alert(1)>", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), true},
		{"quote in symbol", `AAPL"`, AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), true},
		{"symbol too long", "ABCDEFGHIJKLMNOPQRSTU", AssetTypeStock, decimal.NewFromInt(1), decimal.NewFromInt(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAsset(tt.symbol, "", tt.assetType, tt.quantity, tt.price, time.Time{})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Symbol != NormalizeSymbol(tt.symbol) {
				t.Errorf("expected normalized symbol, got %q", a.Symbol)
			}
			if a.Name != a.Symbol {
				t.Errorf("expected name to default to symbol, got %q", a.Name)
			}
			if a.PurchaseDate.IsZero() {
				t.Error("expected purchase date to default to now")
			}
		})
	}
}

func TestAsset_CostBasis(t *testing.T) {
	a := Asset{Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(100)}
	if !a.CostBasis().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000, got %s", a.CostBasis())
	}
}

func TestParseAssetType(t *testing.T) {
	if got, err := ParseAssetType(" Crypto "); err != nil || got != AssetTypeCrypto {
		t.Errorf("ParseAssetType(Crypto) = %v, %v", got, err)
	}
	if _, err := ParseAssetType("etf"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		days    int
		wantErr bool
	}{
		{"1w", Period1W, 7, false},
		{"1M", Period1M, 30, false},
		{"3m", Period3M, 90, false},
		{"6M", Period6M, 180, false},
		{"1y", Period1Y, 365, false},
		{"2Y", "", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want || got.Days() != tt.days {
			t.Errorf("ParsePeriod(%q) = %s (%d days), want %s (%d days)", tt.in, got, got.Days(), tt.want, tt.days)
		}
	}
}

func TestCloses(t *testing.T) {
	points := []PricePoint{{Close: 1}, {Close: 2.5}, {Close: 3}}
	got := Closes(points)
	if len(got) != 3 || got[1] != 2.5 {
		t.Errorf("unexpected closes %v", got)
	}
}
