package alerts

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"investment-tracker/models"
)

type countingChecker struct {
	calls atomic.Int32
}

func (c *countingChecker) Check(ctx context.Context) (*models.CheckResult, error) {
	c.calls.Add(1)
	return &models.CheckResult{}, nil
}

func TestMonitor_RunsUntilCancelled(t *testing.T) {
	checker := &countingChecker{}
	m := NewMonitor(checker, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for checker.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("monitor did not run the checker")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestMonitor_DisabledReturnsImmediately(t *testing.T) {
	checker := &countingChecker{}
	done := make(chan struct{})
	go func() {
		NewMonitor(checker, 0).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled monitor should return at once")
	}
	if checker.calls.Load() != 0 {
		t.Error("disabled monitor should never check")
	}
}
