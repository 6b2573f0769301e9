package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// ItemsCacheNamespace groups every cached item response. Any item write
// clears the whole namespace.
const ItemsCacheNamespace = "items"

const (
	defaultPageSize = 10
	defaultMaxPage  = 50
)

type ItemService struct {
	repo        ports.ItemRepository
	cache       ports.ResponseCache
	tasks       ports.TaskQueue
	catalog     ports.Catalog
	maxPageSize int
	logger      zerolog.Logger
}

type ItemOption func(*ItemService)

func WithMaxPageSize(n int) ItemOption {
	return func(s *ItemService) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

func WithCatalog(c ports.Catalog) ItemOption {
	return func(s *ItemService) { s.catalog = c }
}

// NewItemService wires the item use cases. cache and tasks may be nil.
func NewItemService(repo ports.ItemRepository, cache ports.ResponseCache, tasks ports.TaskQueue, logger zerolog.Logger, opts ...ItemOption) *ItemService {
	s := &ItemService{
		repo:        repo,
		cache:       cache,
		tasks:       tasks,
		catalog:     NewSimulatedCatalog(100*time.Millisecond, 200*time.Millisecond),
		maxPageSize: defaultMaxPage,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ItemService) Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	item, err := s.repo.Create(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create item")
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Msg("item created")
	return item, nil
}

// CreateBulk stores the drafts in order and clears the cache once.
func (s *ItemService) CreateBulk(ctx context.Context, drafts []domain.ItemDraft) ([]*domain.Item, error) {
	created := make([]*domain.Item, 0, len(drafts))
	for _, d := range drafts {
		item, err := s.repo.Create(ctx, d)
		if err != nil {
			s.logger.Error().Err(err).Int("stored", len(created)).Msg("bulk create aborted")
			if len(created) > 0 {
				s.invalidate(ctx)
			}
			return nil, err
		}
		created = append(created, item)
	}
	s.invalidate(ctx)
	s.logger.Info().Int("count", len(created)).Msg("items created in bulk")
	return created, nil
}

func (s *ItemService) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.repo.List(ctx, filter)
}

// ListPage returns one page; the page size is capped at the configured maximum.
func (s *ItemService) ListPage(ctx context.Context, page ports.PageRequest) ([]*domain.Item, error) {
	size := page.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	p := page.Page
	if p < 1 {
		p = 1
	}
	return s.repo.List(ctx, domain.ItemFilter{Limit: size, Offset: (p - 1) * size})
}

func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *ItemService) Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.Item, error) {
	item, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to update item")
		return nil, err
	}
	if !found {
		return nil, domain.ErrItemNotFound
	}
	s.invalidate(ctx)
	s.logger.Info().Int64("item_id", id).Msg("item updated")
	return item, nil
}

// Summary fetches price and inventory concurrently.
func (s *ItemService) Summary(ctx context.Context, id int64) (*domain.ItemSummary, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &domain.ItemSummary{Item: item}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		price, err := s.catalog.Price(gctx, id)
		if err != nil {
			return fmt.Errorf("price lookup: %w", err)
		}
		summary.Price = price
		return nil
	})
	g.Go(func() error {
		inv, err := s.catalog.Inventory(gctx, id)
		if err != nil {
			return fmt.Errorf("inventory lookup: %w", err)
		}
		summary.Inventory = inv
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// Purchase queues an audit record for the purchase. The response never
// depends on the audit outcome.
func (s *ItemService) Purchase(ctx context.Context, id int64, amount int) error {
	if amount < 1 {
		return domain.NewValidationError("", domain.FieldError{Field: "amount", Message: "must be at least 1"})
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	logger := s.logger
	s.enqueue(ports.Task{
		Name: "purchase_audit",
		Key:  strconv.FormatInt(id, 10),
		Run: func(context.Context) error {
			logger.Info().Int64("item_id", id).Int("amount", amount).Msg("purchase audited")
			return nil
		},
	})
	return nil
}

// RecordPageServed queues a log line describing a served page.
func (s *ItemService) RecordPageServed(page ports.PageRequest, served int) {
	logger := s.logger
	s.enqueue(ports.Task{
		Name: "page_served",
		Key:  "paged",
		Run: func(context.Context) error {
			logger.Info().Int("page", page.Page).Int("page_size", page.PageSize).Int("served", served).Msg("items page served")
			return nil
		},
	})
}

func (s *ItemService) enqueue(t ports.Task) {
	if s.tasks == nil {
		return
	}
	if !s.tasks.Enqueue(t) {
		s.logger.Warn().Str("task", t.Name).Msg("background queue full, task dropped")
	}
}

// invalidate clears cached item responses. Failure is logged, not returned:
// the write already succeeded.
func (s *ItemService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx, ItemsCacheNamespace); err != nil {
		s.logger.Warn().Err(err).Str("namespace", ItemsCacheNamespace).Msg("cache invalidation failed")
	}
}
