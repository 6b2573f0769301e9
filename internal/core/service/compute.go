package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const MaxFibonacciN = 40

// ComputeService runs CPU-bound work on a bounded number of goroutines so
// that a burst of /compute calls cannot starve request handling.
type ComputeService struct {
	sem *semaphore.Weighted
}

func NewComputeService(workers int) *ComputeService {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ComputeService{sem: semaphore.NewWeighted(int64(workers))}
}

// Fibonacci returns F(n) for 1 <= n <= MaxFibonacciN.
func (s *ComputeService) Fibonacci(ctx context.Context, n int) (int64, error) {
	if n < 1 || n > MaxFibonacciN {
		return 0, domain.NewValidationError("", domain.FieldError{Field: "n", Message: "must be between 1 and 40"})
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer s.sem.Release(1)
	return fib(n), nil
}

func fib(n int) int64 {
	var a, b int64 = 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}
