package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// PageRequest is a 1-based page of items.
type PageRequest struct {
	Page     int
	PageSize int
}

type ItemService interface {
	Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error)
	CreateBulk(ctx context.Context, drafts []domain.ItemDraft) ([]*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
	ListPage(ctx context.Context, page PageRequest) ([]*domain.Item, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.Item, error)
	Summary(ctx context.Context, id int64) (*domain.ItemSummary, error)
	Purchase(ctx context.Context, id int64, amount int) error
	RecordPageServed(page PageRequest, served int)
}

// Catalog quotes the live price and inventory of an item.
type Catalog interface {
	Price(ctx context.Context, id int64) (float64, error)
	Inventory(ctx context.Context, id int64) (int, error)
}
