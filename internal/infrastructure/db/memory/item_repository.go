package memory

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ItemRepository keeps items in insertion order, which is also id order.
type ItemRepository struct {
	mu     sync.RWMutex
	items  []*domain.Item
	index  map[int64]int
	nextID int64
	now    func() time.Time
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{index: make(map[int64]int), now: time.Now}
}

func (r *ItemRepository) Create(_ context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	it := &domain.Item{
		ID:          r.nextID,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Tags:        append([]string{}, draft.Tags...),
		InStock:     draft.InStock,
		CreatedAt:   r.now().UTC(),
	}
	r.index[it.ID] = len(r.items)
	r.items = append(r.items, it)
	return it.Clone(), nil
}

func (r *ItemRepository) List(_ context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Item, 0)
	skipped := 0
	for _, it := range r.items {
		if !filter.Matches(it) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, it.Clone())
	}
	return out, nil
}

func (r *ItemRepository) Get(_ context.Context, id int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return r.items[i].Clone(), nil
}

func (r *ItemRepository) Update(_ context.Context, id int64, patch domain.ItemPatch) (*domain.Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, false, nil
	}
	patch.Apply(r.items[i])
	return r.items[i].Clone(), true, nil
}
