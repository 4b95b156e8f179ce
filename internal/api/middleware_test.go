package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"investment-tracker/observability"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code to be 200, got %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusBadGateway)
	if rw.statusCode != http.StatusBadGateway {
		t.Errorf("Expected status code to be 502, got %d", rw.statusCode)
	}

	data := []byte(`{"error":"price unavailable"}`)
	n, err := rw.Write(data)
	if err != nil || n != len(data) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	rw.Write(data)
	if rw.responseSize != 2*len(data) {
		t.Errorf("Expected cumulative response size %d, got %d", 2*len(data), rw.responseSize)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/api/assets/price/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := observability.GetMetrics().HTTPRequestsTotal.WithLabelValues("GET", "/api/assets/price/{symbol}", "200")
	before := testutil.ToFloat64(counter)

	for _, sym := range []string{"AAPL", "BTC"} {
		req := httptest.NewRequest(http.MethodGet, "/api/assets/price/"+sym, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %f", got)
	}
}

func TestMetricsMiddleware_WithoutRouter(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	counter := observability.GetMetrics().HTTPRequestsTotal.WithLabelValues("POST", "unmatched", "500")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/alerts/check", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected unmatched request to be counted once, got %f", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware("https://dash.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodOptions, http.StatusOK},
		{http.MethodGet, http.StatusTeapot},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/assets", nil))
		if w.Code != tt.want {
			t.Errorf("%s: status %d, want %d", tt.method, w.Code, tt.want)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
			t.Errorf("%s: allow-origin %q", tt.method, got)
		}
	}
}
