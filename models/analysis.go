package models

import "time"

type RSISignal string

const (
	RSIOverbought RSISignal = "overbought"
	RSIOversold   RSISignal = "oversold"
	RSINeutral    RSISignal = "neutral"
)

// IndicatorSet holds indicator series aligned with the input prices.
// Leading entries without enough history are nil.
type IndicatorSet struct {
	Symbol       string      `json:"symbol"`
	Period       Period      `json:"period"`
	Dates        []time.Time `json:"dates"`
	Prices       []float64   `json:"prices"`
	SMA20        []*float64  `json:"sma20"`
	SMA50        []*float64  `json:"sma50"`
	RSI          []*float64  `json:"rsi"`
	CurrentSMA20 *float64    `json:"current_sma20"`
	CurrentSMA50 *float64    `json:"current_sma50"`
	CurrentRSI   *float64    `json:"current_rsi"`
	RSISignal    RSISignal   `json:"rsi_signal"`
}

// NamedSeries is an input series for benchmark comparison
type NamedSeries struct {
	Label  string
	Symbol string
	Values []float64
}

// BenchmarkSeries is a base-100 rescaled series
type BenchmarkSeries struct {
	Label      string    `json:"label"`
	Symbol     string    `json:"symbol"`
	Normalized []float64 `json:"normalized"`
}

// BenchmarkComparison aligns the portfolio and reference series by index
type BenchmarkComparison struct {
	Period Period            `json:"period"`
	Points int               `json:"points"`
	Dates  []time.Time       `json:"dates,omitempty"`
	Series []BenchmarkSeries `json:"series"`
}

// CorrelationPair is one off-diagonal entry of a correlation matrix
type CorrelationPair struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
}

// CorrelationMatrix is symmetric with a unit diagonal
type CorrelationMatrix struct {
	Symbols    []string          `json:"symbols"`
	Matrix     [][]float64       `json:"matrix"`
	Pairs      []CorrelationPair `json:"pairs"`
	Period     Period            `json:"period"`
	DataPoints int               `json:"data_points"`
	Dropped    []string          `json:"dropped,omitempty"`
}

type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// TrendMetrics summarizes one lookback window
type TrendMetrics struct {
	Period      Period  `json:"period"`
	Trend       Trend   `json:"trend"`
	ChangePct   float64 `json:"change_pct"`
	Volatility  float64 `json:"volatility"`
	MaxDrawdown float64 `json:"max_drawdown"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}

// TechnicalSummary is the latest indicator reading for a symbol
type TechnicalSummary struct {
	RSI          *float64 `json:"rsi"`
	SMA20        *float64 `json:"sma20"`
	SMA50        *float64 `json:"sma50"`
	PriceVsSMA20 string   `json:"price_vs_sma20,omitempty"`
}

type TrendAnalysis struct {
	Symbol       string           `json:"symbol"`
	CurrentPrice float64          `json:"current_price"`
	ShortTerm    TrendMetrics     `json:"short_term"`
	LongTerm     TrendMetrics     `json:"long_term"`
	Technical    TechnicalSummary `json:"technical"`
}

type RecommendationType string

const (
	RecommendationWarning         RecommendationType = "warning"
	RecommendationOpportunity     RecommendationType = "opportunity"
	RecommendationInfo            RecommendationType = "info"
	RecommendationDiversification RecommendationType = "diversification"
)

type Recommendation struct {
	Symbol    string             `json:"symbol"`
	Type      RecommendationType `json:"type"`
	Indicator string             `json:"indicator"`
	Message   string             `json:"message"`
}

// RecommendationReport is the portfolio-wide recommendation listing
type RecommendationReport struct {
	Recommendations     []Recommendation `json:"recommendations"`
	TotalAssetsAnalyzed int              `json:"total_assets_analyzed"`
	Warnings            int              `json:"warnings"`
	Opportunities       int              `json:"opportunities"`
}

// PortfolioInsight is model-generated commentary on a snapshot
type PortfolioInsight struct {
	Commentary  string    `json:"commentary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PricePrediction is one projected daily close with its 95% band
type PricePrediction struct {
	Date           time.Time `json:"date"`
	PredictedPrice float64   `json:"predicted_price"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// PriceForecast is a quadratic-trend projection over recent closes
type PriceForecast struct {
	Symbol               string            `json:"symbol"`
	CurrentPrice         float64           `json:"current_price"`
	Predictions          []PricePrediction `json:"predictions"`
	Trend                Trend             `json:"trend"`
	Confidence           float64           `json:"confidence"`
	PredictionDays       int               `json:"prediction_days"`
	ModelR2              float64           `json:"model_r2"`
	HistoricalVolatility float64           `json:"historical_volatility"`
}
