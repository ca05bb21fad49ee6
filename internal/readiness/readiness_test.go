package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

var errDown = errors.New("connection refused")

func TestWait_ReadyFirstTry(t *testing.T) {
	calls := 0
	res := Wait(context.Background(), "store", Policy{Attempts: 3, Delay: time.Millisecond},
		func(context.Context) error { calls++; return nil }, zap.NewNop())

	if !res.Ready || res.Attempts != 1 || res.Err != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if calls != 1 {
		t.Errorf("expected 1 probe, got %d", calls)
	}
}

func TestWait_ReadyAfterRetries(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		if calls < 3 {
			return errDown
		}
		return nil
	}
	res := Wait(context.Background(), "store", Policy{Attempts: 5, Delay: time.Millisecond}, probe, zap.NewNop())

	if !res.Ready || res.Attempts != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestWait_BudgetExhausted(t *testing.T) {
	calls := 0
	start := time.Now()
	res := Wait(context.Background(), "ollama", Policy{Attempts: 4, Delay: 5 * time.Millisecond},
		func(context.Context) error { calls++; return errDown }, zap.NewNop())

	if res.Ready {
		t.Fatal("expected not ready")
	}
	if calls != 4 || res.Attempts != 4 {
		t.Errorf("expected 4 attempts, got calls=%d result=%d", calls, res.Attempts)
	}
	if !errors.Is(res.Err, errDown) {
		t.Errorf("expected last probe error, got %v", res.Err)
	}
	// three delays between four attempts
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait took too long: %s", elapsed)
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	probe := func(context.Context) error {
		calls++
		cancel()
		return errDown
	}
	res := Wait(ctx, "store", Policy{Attempts: 10, Delay: time.Hour}, probe, zap.NewNop())

	if res.Ready || calls != 1 {
		t.Errorf("expected one attempt before cancel, got %+v calls=%d", res, calls)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
}

func TestWait_ZeroAttemptsProbesOnce(t *testing.T) {
	calls := 0
	Wait(context.Background(), "x", Policy{}, func(context.Context) error { calls++; return errDown }, zap.NewNop())
	if calls != 1 {
		t.Errorf("expected 1 probe, got %d", calls)
	}
}
