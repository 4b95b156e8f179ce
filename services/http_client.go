package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"investment-tracker/observability"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	browserUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	maxErrorBody       = 512
)

// getJSON issues a GET and decodes a 2xx body into out.
// 404 maps to ErrNotFound, any other non-2xx status to ErrProvider.
func getJSON(ctx context.Context, client *http.Client, service, operation, url string, headers map[string]string, out any) error {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(service, operation)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(service, operation)

	err := doGetJSON(ctx, client, url, headers, out)
	if err != nil {
		metrics.RecordExternalAPIError(service, operation, errorType(err))
	}
	return err
}

func doGetJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrProvider, err)
	}
	return nil
}

// errorType labels an error for the external API error counter
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "provider"
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
