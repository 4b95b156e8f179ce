package alerts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"investment-tracker/models"
	"investment-tracker/services"
)

type memoryAlertStore struct {
	mu      sync.Mutex
	alerts  map[uuid.UUID]*models.Alert
	listErr error
	markErr error
}

func newMemoryAlertStore(alerts ...*models.Alert) *memoryAlertStore {
	s := &memoryAlertStore{alerts: make(map[uuid.UUID]*models.Alert)}
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
	return s
}

func (s *memoryAlertStore) CreateAlert(ctx context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = alert
	return nil
}

func (s *memoryAlertStore) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Alert
	for _, a := range s.alerts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *memoryAlertStore) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memoryAlertStore) UpdateAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *memoryAlertStore) DeleteAlert(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *memoryAlertStore) SetAlertStatus(ctx context.Context, id uuid.UUID, status models.AlertStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return false, nil
	}
	if status == models.AlertStatusActive {
		a.Enable()
	} else {
		a.Disable()
	}
	return true, nil
}

func (s *memoryAlertStore) MarkAlertTriggered(ctx context.Context, id uuid.UUID, price float64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	a, ok := s.alerts[id]
	if !ok || a.Status != models.AlertStatusActive {
		return false, nil
	}
	a.MarkTriggered(price, at)
	return true, nil
}

func (s *memoryAlertStore) AlertStats(ctx context.Context) (*models.AlertStats, error) {
	return &models.AlertStats{}, nil
}

type mockPrices struct {
	mu     sync.Mutex
	quotes map[string]*models.Quote
	calls  map[string]int
}

func newMockPrices(quotes ...*models.Quote) *mockPrices {
	m := &mockPrices{quotes: make(map[string]*models.Quote), calls: make(map[string]int)}
	for _, q := range quotes {
		m.quotes[q.Symbol] = q
	}
	return m
}

func (m *mockPrices) GetCurrentPrice(ctx context.Context, symbol string, assetType models.AssetType) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++
	q, ok := m.quotes[symbol]
	if !ok {
		return nil, models.ErrPriceUnavailable
	}
	cp := *q
	return &cp, nil
}

func (m *mockPrices) GetHistory(ctx context.Context, symbol string, assetType models.AssetType, period models.Period) ([]models.PricePoint, error) {
	return nil, models.ErrPriceUnavailable
}

func (m *mockPrices) Search(ctx context.Context, query string, assetType models.AssetType) ([]models.SearchResult, error) {
	return nil, nil
}

func (m *mockPrices) setPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = &models.Quote{Symbol: symbol, Price: price}
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (m *mockNotifier) Send(ctx context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

var _ services.NotifierInterface = (*mockNotifier)(nil)
var _ services.PriceFetcherInterface = (*mockPrices)(nil)
