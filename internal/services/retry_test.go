package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dubby/internal/services"
)

func TestCallRetriesOnce(t *testing.T) {
	attempts := 0
	got, err := services.Call(context.Background(), services.CallPolicy{Delay: time.Millisecond}, func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if got != "ok" || attempts != 2 {
		t.Fatalf("got %q after %d attempts", got, attempts)
	}
}

func TestCallGivesUpAfterSecondFailure(t *testing.T) {
	attempts := 0
	_, err := services.Call(context.Background(), services.CallPolicy{Delay: time.Millisecond}, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestCallDoesNotRetryPermanent(t *testing.T) {
	attempts := 0
	_, err := services.Call(context.Background(), services.CallPolicy{Delay: time.Millisecond}, func(context.Context) (int, error) {
		attempts++
		return 0, services.Wrap(services.ErrValidation, "translate", "request", "bad input", nil)
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestCallMarksTimeouts(t *testing.T) {
	attempts := 0
	_, err := services.Call(context.Background(), services.CallPolicy{Timeout: 10 * time.Millisecond, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		attempts++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected timeout to be retried once, got %d attempts", attempts)
	}
}

func TestCallStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := services.Call(ctx, services.CallPolicy{Delay: time.Millisecond}, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, errors.New("interrupted")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}
