package service

import (
	"context"
	"time"
)

// SimulatedCatalog stands in for slow upstream pricing and stock services.
type SimulatedCatalog struct {
	priceDelay     time.Duration
	inventoryDelay time.Duration
}

func NewSimulatedCatalog(priceDelay, inventoryDelay time.Duration) *SimulatedCatalog {
	return &SimulatedCatalog{priceDelay: priceDelay, inventoryDelay: inventoryDelay}
}

func (c *SimulatedCatalog) Price(ctx context.Context, id int64) (float64, error) {
	if err := sleep(ctx, c.priceDelay); err != nil {
		return 0, err
	}
	return 100 + float64(id), nil
}

func (c *SimulatedCatalog) Inventory(ctx context.Context, id int64) (int, error) {
	if err := sleep(ctx, c.inventoryDelay); err != nil {
		return 0, err
	}
	return 10 + int(id%5), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
