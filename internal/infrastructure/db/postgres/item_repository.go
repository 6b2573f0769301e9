package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const itemColumns = `id, name, description, price, tags, in_stock, created_at`

type ItemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	tags, err := json.Marshal(nonNil(draft.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query := `INSERT INTO items (name, description, price, tags, in_stock)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	item := &domain.Item{
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Tags:        nonNil(draft.Tags),
		InStock:     draft.InStock,
	}
	err = r.db.QueryRowContext(ctx, query,
		draft.Name, draft.Description, draft.Price, string(tags), draft.InStock,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		 WHERE $1 = '' OR strpos(lower(name), lower($1)) > 0
		 ORDER BY id
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, filter.Query, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.Item, bool, error) {
	var tags any
	if patch.Tags != nil {
		b, err := json.Marshal(nonNil(*patch.Tags))
		if err != nil {
			return nil, false, fmt.Errorf("encode tags: %w", err)
		}
		tags = string(b)
	}

	query := `UPDATE items SET
		 name = COALESCE($2, name),
		 description = COALESCE($3, description),
		 price = COALESCE($4, price),
		 tags = COALESCE($5::jsonb, tags),
		 in_stock = COALESCE($6, in_stock)
		 WHERE id = $1
		 RETURNING ` + itemColumns

	it, err := scanItem(r.db.QueryRowContext(ctx, query,
		id, patch.Name, patch.Description, patch.Price, tags, patch.InStock))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	return it, true, nil
}

func scanItem(s scanner) (*domain.Item, error) {
	var (
		it   domain.Item
		tags []byte
	)
	if err := s.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &tags, &it.InStock, &it.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &it.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &it, nil
}
