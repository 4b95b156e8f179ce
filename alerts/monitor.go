package alerts

import (
	"context"
	"time"

	"investment-tracker/models"
	"investment-tracker/observability"
)

// Checker is the operation the monitor repeats
type Checker interface {
	Check(ctx context.Context) (*models.CheckResult, error)
}

// Monitor runs a Checker on a fixed interval until its context ends
type Monitor struct {
	checker  Checker
	interval time.Duration
}

func NewMonitor(checker Checker, interval time.Duration) *Monitor {
	return &Monitor{checker: checker, interval: interval}
}

// Run blocks until ctx is cancelled. A non-positive interval returns immediately.
func (m *Monitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		observability.Info("alert monitor disabled")
		return
	}
	observability.Info("alert monitor started", "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			observability.Info("alert monitor stopped")
			return
		case <-ticker.C:
			if _, err := m.checker.Check(ctx); err != nil {
				observability.WithError(err).Error("scheduled alert check failed")
			}
		}
	}
}
