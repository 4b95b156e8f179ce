// Package mocks provides an HTTP stand-in for the market data, messaging and
// model APIs the tracker calls, for end-to-end tests.
package mocks

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Route prefixes; point the matching base URLs at URL()+prefix
const (
	YahooPrefix     = "/yahoo"
	CoinGeckoPrefix = "/coingecko"
	TelegramPrefix  = "/telegram"
	BedrockPrefix   = "/bedrock"
)

// MockServer serves configurable upstream responses
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	stocks     map[string]Instrument // by Yahoo symbol
	coins      map[string]Instrument // by CoinGecko id
	insight    string
	telegram   []TelegramMessage
	failPrefix map[string]int // prefix -> status to return

	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
}

// NewMockServer creates a new mock server with default listings.
func NewMockServer() *MockServer {
	m := &MockServer{
		stocks:     make(map[string]Instrument),
		coins:      make(map[string]Instrument),
		failPrefix: make(map[string]int),
	}
	m.setDefaults()
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// ServeHTTP routes requests by provider prefix
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{Method: r.Method, Path: r.URL.Path})
	for prefix, status := range m.failPrefix {
		if strings.HasPrefix(r.URL.Path, prefix) {
			m.mu.Unlock()
			http.Error(w, "injected failure", status)
			return
		}
	}
	m.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, YahooPrefix+"/v8/finance/chart/"):
		m.handleYahooChart(w, r, strings.TrimPrefix(path, YahooPrefix+"/v8/finance/chart/"))
	case path == YahooPrefix+"/v1/finance/search":
		m.handleYahooSearch(w, r)
	case path == CoinGeckoPrefix+"/search":
		m.handleCoinGeckoSearch(w, r)
	case strings.HasPrefix(path, CoinGeckoPrefix+"/coins/") && strings.HasSuffix(path, "/market_chart"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, CoinGeckoPrefix+"/coins/"), "/market_chart")
		m.handleCoinGeckoChart(w, id)
	case strings.HasPrefix(path, CoinGeckoPrefix+"/coins/"):
		m.handleCoinGeckoCoin(w, strings.TrimPrefix(path, CoinGeckoPrefix+"/coins/"))
	case strings.HasPrefix(path, TelegramPrefix+"/bot") && strings.HasSuffix(path, "/sendMessage"):
		token := strings.TrimSuffix(strings.TrimPrefix(path, TelegramPrefix+"/bot"), "/sendMessage")
		m.handleTelegram(w, r, token)
	case strings.HasPrefix(path, BedrockPrefix+"/model/") && strings.HasSuffix(path, "/invoke"):
		m.handleBedrock(w)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// CountRequests counts logged requests whose path starts with prefix
func (m *MockServer) CountRequests(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// SetStock configures a Yahoo listing
func (m *MockServer) SetStock(symbol string, inst Instrument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[strings.ToUpper(symbol)] = inst
}

// SetCoin configures a CoinGecko listing by coin id, e.g. "bitcoin"
func (m *MockServer) SetCoin(id string, inst Instrument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins[id] = inst
}

// SetPrice moves the latest close of a stock or coin
func (m *MockServer) SetPrice(key string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, listings := range []map[string]Instrument{m.stocks, m.coins} {
		if inst, ok := listings[key]; ok {
			closes := append([]float64(nil), inst.Closes...)
			closes[len(closes)-1] = price
			inst.Closes = closes
			listings[key] = inst
		}
	}
}

// SetInsight configures the model text returned by the Bedrock mock
func (m *MockServer) SetInsight(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insight = text
}

// FailPrefix makes every request under prefix return status until cleared with 0
func (m *MockServer) FailPrefix(prefix string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.failPrefix, prefix)
		return
	}
	m.failPrefix[prefix] = status
}

// TelegramMessages returns the captured sendMessage calls
func (m *MockServer) TelegramMessages() []TelegramMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]TelegramMessage{}, m.telegram...)
}

func (m *MockServer) setDefaults() {
	m.stocks["AAPL"] = Instrument{Name: "Apple Inc.", Closes: series(150, 0.4, 70)}
	m.stocks["MSFT"] = Instrument{Name: "Microsoft Corporation", Closes: series(400, -0.6, 70)}
	m.stocks["^GSPC"] = Instrument{Name: "S&P 500", Closes: series(5000, 3, 70)}
	m.coins["bitcoin"] = Instrument{Symbol: "BTC", Name: "Bitcoin", Closes: series(60000, 150, 70), ChangePct: 1.8}
	m.coins["ethereum"] = Instrument{Symbol: "ETH", Name: "Ethereum", Closes: series(3000, -4, 70), ChangePct: -0.7}
	m.insight = "Your portfolio is up modestly and concentrated in two holdings."
}

// series builds a wavy daily close series so returns are not constant
func series(start, drift float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		wobble := float64(i%5-2) * start * 0.002
		out[i] = start + drift*float64(i) + wobble
	}
	return out
}

// dates returns one timestamp per close, ending today at 21:00 UTC
func dates(n int) []time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour).Add(21 * time.Hour)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = today.AddDate(0, 0, i-(n-1))
	}
	return out
}

func (m *MockServer) handleYahooChart(w http.ResponseWriter, r *http.Request, symbol string) {
	m.mu.RLock()
	inst, ok := m.stocks[strings.ToUpper(symbol)]
	m.mu.RUnlock()

	var resp yahooChartResponse
	if !ok {
		resp.Chart.Error = &yahooError{Code: "Not Found", Description: "No data found, symbol may be delisted"}
		writeJSON(w, http.StatusNotFound, resp)
		return
	}

	closes := inst.Closes
	if r.URL.Query().Get("range") == "5d" && len(closes) > 5 {
		closes = closes[len(closes)-5:]
	}
	var result yahooChartResult
	result.Meta.Symbol = strings.ToUpper(symbol)
	result.Meta.Currency = "USD"
	result.Meta.ShortName = inst.Name
	result.Meta.RegularMarketPrice = closes[len(closes)-1]
	result.Meta.RegularMarketTime = time.Now().Unix()
	result.Meta.ChartPreviousClose = closes[0]
	for _, d := range dates(len(closes)) {
		result.Timestamp = append(result.Timestamp, d.Unix())
	}
	result.Indicators.Quote = []struct {
		Close []float64 `json:"close"`
	}{{Close: closes}}
	resp.Chart.Result = []yahooChartResult{result}
	writeJSON(w, http.StatusOK, resp)
}

func (m *MockServer) handleYahooSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToUpper(r.URL.Query().Get("q"))
	m.mu.RLock()
	defer m.mu.RUnlock()
	quotes := []yahooSearchQuote{}
	for sym, inst := range m.stocks {
		if strings.Contains(sym, q) || strings.Contains(strings.ToUpper(inst.Name), q) {
			quotes = append(quotes, yahooSearchQuote{Symbol: sym, ShortName: inst.Name, Exchange: "NASDAQ", QuoteType: "EQUITY"})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (m *MockServer) handleCoinGeckoCoin(w http.ResponseWriter, id string) {
	m.mu.RLock()
	inst, ok := m.coins[id]
	m.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "coin not found"})
		return
	}

	price := inst.Closes[len(inst.Closes)-1]
	var coin coinGeckoCoin
	coin.ID = id
	coin.Name = inst.Name
	coin.MarketData.CurrentPrice = map[string]float64{"usd": price}
	coin.MarketData.PriceChangePercentage24h = inst.ChangePct
	coin.MarketData.PriceChange24h = price * inst.ChangePct / 100
	writeJSON(w, http.StatusOK, coin)
}

func (m *MockServer) handleCoinGeckoChart(w http.ResponseWriter, id string) {
	m.mu.RLock()
	inst, ok := m.coins[id]
	m.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "coin not found"})
		return
	}

	prices := make([][2]float64, len(inst.Closes))
	for i, d := range dates(len(inst.Closes)) {
		prices[i] = [2]float64{float64(d.UnixMilli()), inst.Closes[i]}
	}
	writeJSON(w, http.StatusOK, map[string]any{"prices": prices})
}

func (m *MockServer) handleCoinGeckoSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	m.mu.RLock()
	defer m.mu.RUnlock()
	coins := []coinGeckoSearchCoin{}
	rank := 1
	for id, inst := range m.coins {
		if strings.Contains(id, q) || strings.Contains(strings.ToLower(inst.Name), q) {
			coins = append(coins, coinGeckoSearchCoin{ID: id, Name: inst.Name, Symbol: inst.Symbol, MarketCapRank: rank})
			rank++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"coins": coins})
}

func (m *MockServer) handleTelegram(w http.ResponseWriter, r *http.Request, token string) {
	var msg TelegramMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "description": "Bad Request: malformed body"})
		return
	}
	if !strings.Contains(token, ":") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "description": "Unauthorized"})
		return
	}
	msg.Token = token

	m.mu.Lock()
	m.telegram = append(m.telegram, msg)
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (m *MockServer) handleBedrock(w http.ResponseWriter) {
	m.mu.RLock()
	text := m.insight
	m.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          "msg_mock",
		"content":     []bedrockContent{{Type: "text", Text: text}},
		"stop_reason": "end_turn",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
