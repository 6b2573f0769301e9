package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func TestComputeService_Fibonacci(t *testing.T) {
	svc := NewComputeService(2)
	want := map[int]int64{1: 1, 2: 1, 10: 55, 20: 6765}
	for n, expected := range want {
		got, err := svc.Fibonacci(context.Background(), n)
		if err != nil {
			t.Fatalf("Fibonacci(%d): %v", n, err)
		}
		if got != expected {
			t.Fatalf("Fibonacci(%d) = %d, want %d", n, got, expected)
		}
	}
}

func TestComputeService_LargestInputIsFast(t *testing.T) {
	svc := NewComputeService(1)
	start := time.Now()
	got, err := svc.Fibonacci(context.Background(), MaxFibonacciN)
	if err != nil {
		t.Fatalf("Fibonacci(%d): %v", MaxFibonacciN, err)
	}
	if got != 102334155 {
		t.Fatalf("Fibonacci(40) = %d, want 102334155", got)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("Fibonacci(40) took %v", elapsed)
	}
}

func TestComputeService_Bounds(t *testing.T) {
	svc := NewComputeService(1)
	for _, n := range []int{0, 41, -3} {
		if _, err := svc.Fibonacci(context.Background(), n); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("n=%d: expected validation error, got %v", n, err)
		}
	}
}

func TestComputeService_CancelledWhileWaiting(t *testing.T) {
	svc := NewComputeService(1)
	if err := svc.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer svc.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Fibonacci(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
