// Package e2e provides end-to-end testing infrastructure for the investment tracker:
// the real router, app, price service and notifiers wired against a mock upstream.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"investment-tracker/config"
	"investment-tracker/e2e/mocks"
	"investment-tracker/internal/api"
	"investment-tracker/internal/app"
	"investment-tracker/internal/settings"
	"investment-tracker/repository"
	"investment-tracker/services"
)

// TestHarness provides the infrastructure for running E2E tests.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	store      repository.Store
	app        *app.App
	router     http.Handler
	config     *config.Config
}

// NewTestHarness creates a new test harness. Call Setup before use.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	return &TestHarness{t: t, ctx: ctx, cancel: cancel}
}

// Setup initializes all test dependencies. Postgres is used when
// E2E_DATABASE_URL is set, otherwise a SQLite file in a temp dir.
func (h *TestHarness) Setup() error {
	h.mockServer = mocks.NewMockServer()
	h.config = h.createTestConfig()

	// fresh breakers so one scenario's injected failures cannot trip another's
	services.SetGlobalRegistry(services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig))

	dir := h.t.TempDir()
	var err error
	if dbURL := os.Getenv("E2E_DATABASE_URL"); dbURL != "" {
		var repo *repository.Repository
		repo, err = repository.NewRepository(h.ctx, dbURL)
		if err == nil {
			h.store = repo
			err = h.cleanupTestData(repo)
		}
	} else {
		h.store, err = repository.NewSQLiteRepository(h.ctx, filepath.Join(dir, "e2e.db"))
	}
	if err != nil {
		return fmt.Errorf("failed to open test store: %w", err)
	}

	settingsStore, err := settings.NewStore(dir, "e2e-test-passphrase", settings.DefaultsFromConfig(h.config.Notification))
	if err != nil {
		return fmt.Errorf("failed to create settings store: %w", err)
	}

	model, err := services.NewBedrockService(h.ctx, h.config.Bedrock)
	if err != nil {
		return fmt.Errorf("failed to create bedrock client: %w", err)
	}

	h.app = app.New(h.config, app.Deps{
		Store:    h.store,
		Prices:   services.NewPriceServiceFromConfig(h.config),
		Notifier: services.NewDispatcher(settingsStore, services.NewEmailService(), services.NewTelegramService(h.config.Notification.TelegramBaseURL)),
		Settings: settingsStore,
		Insights: services.NewInsightService(model),
	})
	h.router = api.NewRouter(api.NewHandler(h.app, h.config), h.config)
	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.app != nil {
		h.app.Close()
	}
	if h.mockServer != nil {
		h.mockServer.Close()
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock server for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// DoRequest performs an HTTP request against the router and returns the response.
func (h *TestHarness) DoRequest(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// MustDo performs a request, failing the test unless it returns want, and decodes the body into out
func (h *TestHarness) MustDo(method, path, body string, want int, out any) {
	h.t.Helper()
	w := h.DoRequest(method, path, body)
	if w.Code != want {
		h.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, want, w.Code, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}

func (h *TestHarness) createTestConfig() *config.Config {
	mockURL := h.mockServer.URL()

	cfg := config.NewTestConfig()
	cfg.Yahoo.BaseURL = mockURL + mocks.YahooPrefix
	cfg.CoinGecko.BaseURL = mockURL + mocks.CoinGeckoPrefix
	cfg.Notification.TelegramBaseURL = mockURL + mocks.TelegramPrefix
	cfg.Bedrock.Region = "us-east-1"
	cfg.Bedrock.ModelID = "anthropic.claude-e2e"
	cfg.Bedrock.Endpoint = mockURL + mocks.BedrockPrefix

	// static credentials so request signing works without an AWS profile
	h.t.Setenv("AWS_ACCESS_KEY_ID", "e2e")
	h.t.Setenv("AWS_SECRET_ACCESS_KEY", "e2e")
	h.t.Setenv("AWS_SESSION_TOKEN", "")
	h.t.Setenv("AWS_PROFILE", "")
	h.t.Setenv("AWS_CONFIG_FILE", filepath.Join(h.t.TempDir(), "none"))
	h.t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(h.t.TempDir(), "none"))

	return cfg
}

func (h *TestHarness) cleanupTestData(repo *repository.Repository) error {
	for _, q := range []string{"DELETE FROM alerts", "DELETE FROM assets"} {
		if _, err := repo.Pool().Exec(h.ctx, q); err != nil {
			return fmt.Errorf("cleanup %q: %w", q, err)
		}
	}
	return nil
}
