package api

import (
	"net/http"
	"time"

	"investment-tracker/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	r.Get("/", h.HandleIndex)
	r.Get("/index.html", h.HandleIndex)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.HandleListAssets)
			r.Post("/", h.HandleCreateAsset)
			r.Get("/portfolio", h.HandlePortfolio)
			r.Get("/search/{query}", h.HandleSearch)
			r.Get("/price/{symbol}", h.HandlePrice)
			r.Delete("/{id}", h.HandleDeleteAsset)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.HandleListAlerts)
			r.Post("/", h.HandleCreateAlert)
			r.Get("/active", h.HandleActiveAlerts)
			r.Post("/check", h.HandleCheckAlerts)
			r.Get("/summary", h.HandleAlertSummary)
			r.Get("/summary/stats", h.HandleAlertStats)
			r.Get("/settings/current", h.HandleGetSettings)
			r.Post("/settings", h.HandleSaveSettings)
			r.Post("/test/email", h.HandleTestEmail)
			r.Post("/test/telegram", h.HandleTestTelegram)
			r.Get("/{id}", h.HandleGetAlert)
			r.Put("/{id}", h.HandleUpdateAlert)
			r.Delete("/{id}", h.HandleDeleteAlert)
			r.Post("/{id}/enable", h.HandleEnableAlert)
			r.Post("/{id}/disable", h.HandleDisableAlert)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/indicators/{symbol}", h.HandleIndicators)
			r.Get("/trend/{symbol}", h.HandleTrend)
			r.Get("/predict/{symbol}", h.HandlePredict)
			r.Post("/correlation", h.HandleCorrelation)
			r.Get("/correlation/portfolio", h.HandlePortfolioCorrelation)
			r.Get("/benchmark", h.HandleBenchmark)
			r.Get("/recommendations", h.HandleRecommendations)
			r.Get("/insights", h.HandleInsights)
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/history/{symbol}", h.HandleHistory)
			r.Get("/popular", h.HandlePopular)
		})
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
