package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"investment-tracker/config"
	"investment-tracker/internal/app"
	"investment-tracker/models"
	"investment-tracker/observability"
	"investment-tracker/services"
	"investment-tracker/web"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex serves the dashboard page
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	labels := make([]string, len(h.cfg.Analysis.Benchmarks))
	for i, b := range h.cfg.Analysis.Benchmarks {
		labels[i] = b.Label
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Dashboard(web.PageData{Benchmarks: labels, Period: h.cfg.Analysis.DefaultPeriod}).Render(r.Context(), w); err != nil {
		observability.WithError(err).Warn("dashboard render failed")
	}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	database := "connected"
	if err := h.app.Health(r.Context()); err != nil {
		database = "disconnected"
		status = "degraded"
	}

	breakers := services.GetGlobalRegistry().Status()
	for _, cb := range breakers {
		if cb.State == "open" {
			status = "degraded"
			break
		}
	}

	h.jsonResponse(w, map[string]any{
		"status":           status,
		"services":         map[string]string{"database": database},
		"circuit_breakers": breakers,
	})
}

// Assets

func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.app.ListAssets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	h.jsonResponse(w, assets)
}

func (h *Handler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req app.AssetInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	asset, err := h.app.CreateAsset(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonStatus(w, http.StatusCreated, asset)
}

func (h *Handler) HandleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteAsset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, StatusResponse{Status: "deleted"})
}

// HandlePortfolio values every holding; unpriced holdings come back as warnings
func (h *Handler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.Portfolio(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, snap)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.app.Search(r.Context(), chi.URLParam(r, "query"), r.URL.Query().Get("asset_type"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	h.jsonResponse(w, results)
}

func (h *Handler) HandlePrice(w http.ResponseWriter, r *http.Request) {
	quote, err := h.app.Quote(r.Context(), chi.URLParam(r, "symbol"), assetTypeParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, quote)
}

// Market

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.app.History(r.Context(), chi.URLParam(r, "symbol"), assetTypeParam(r), r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.jsonResponse(w, history)
}

func (h *Handler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Popular(r.Context()))
}

// Helper functions

// assetTypeParam reads ?asset_type=, defaulting to stock
func assetTypeParam(r *http.Request) string {
	if t := r.URL.Query().Get("asset_type"); t != "" {
		return t
	}
	return string(models.AssetTypeStock)
}

// decodeJSON reads a bounded JSON body, writing a 400 on failure
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.jsonError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP statuses. Provider failures are
// checked first since a provider not-found is wrapped in ErrPriceUnavailable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInsufficientAssets):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPriceUnavailable), errors.Is(err, models.ErrProviderError):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotConfigured), errors.Is(err, services.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		message += " (upstream price provider, retry later)"
	case http.StatusInternalServerError:
		observability.WithError(err).Error("request failed")
		message = "internal error"
	}
	h.jsonError(w, message, status)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any) {
	h.jsonStatus(w, http.StatusOK, data)
}

func (h *Handler) jsonStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// StatusResponse represents a status response
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// splitList accepts repeated and comma-separated query values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
