package api

import (
	"fmt"
	"net/http"
	"strconv"

	"investment-tracker/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	set, err := h.app.Indicators(r.Context(), chi.URLParam(r, "symbol"), assetTypeParam(r), r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, set)
}

func (h *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.app.Trend(r.Context(), chi.URLParam(r, "symbol"), assetTypeParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, trend)
}

// HandlePredict projects ?days= (default 7, at most 30) closes ahead
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.jsonError(w, "days must be an integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	forecast, err := h.app.Predict(r.Context(), chi.URLParam(r, "symbol"), assetTypeParam(r), days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, forecast)
}

// HandleCorrelation takes paired symbols and asset_types query lists,
// e.g. ?symbols=AAPL,BTC&asset_types=stock,crypto
func (h *Handler) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbols := splitList(q["symbols"])
	types := splitList(q["asset_types"])
	if len(symbols) != len(types) {
		h.jsonError(w, fmt.Sprintf("got %d symbols but %d asset_types", len(symbols), len(types)), http.StatusBadRequest)
		return
	}

	keys := make([]models.SymbolKey, len(symbols))
	for i := range symbols {
		t, err := models.ParseAssetType(types[i])
		if err != nil {
			h.writeError(w, err)
			return
		}
		keys[i] = models.SymbolKey{Symbol: symbols[i], AssetType: t}
	}

	m, err := h.app.Correlation(r.Context(), keys, q.Get("period"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, m)
}

func (h *Handler) HandlePortfolioCorrelation(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.PortfolioCorrelation(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, m)
}

func (h *Handler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.app.Benchmark(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, cmp)
}

func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Recommendations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, report)
}

func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	insight, err := h.app.Insights(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, insight)
}
