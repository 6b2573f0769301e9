package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ItemRepository defines the persistence contract for catalogue items.
// Ids are assigned by the store and increase monotonically.
type ItemRepository interface {
	Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (item *domain.Item, found bool, err error)
}
