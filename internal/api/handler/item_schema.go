package handler

import "github.com/storefront/storefront-api/internal/core/domain"

// --- Request / Response types ---

type createItemRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Tags        []string `json:"tags"        validate:"omitempty,dive,required"`
	InStock     *bool    `json:"in_stock"`
}

func (r createItemRequest) toDraft() domain.ItemDraft {
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.ItemDraft{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Tags:        tags,
		InStock:     inStock,
	}
}

type updateItemRequest struct {
	ID          int64     `param:"id" json:"-" validate:"gt=0"`
	Name        *string   `json:"name"        validate:"omitnil,min=2,max=50"`
	Description *string   `json:"description" validate:"omitnil,max=500"`
	Price       *float64  `json:"price"       validate:"omitnil,gte=0"`
	Tags        *[]string `json:"tags"        validate:"omitnil,dive,required"`
	InStock     *bool     `json:"in_stock"`
}

func (r updateItemRequest) toPatch() domain.ItemPatch {
	return domain.ItemPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Tags:        r.Tags,
		InStock:     r.InStock,
	}
}

type itemIDRequest struct {
	ID int64 `param:"id" validate:"gt=0"`
}

type listItemsRequest struct {
	Q     string `query:"q"     validate:"omitempty,min=1,max=50"`
	Limit *int   `query:"limit" validate:"omitnil,min=1,max=100"`
}

const defaultListLimit = 25

func (r listItemsRequest) toFilter() domain.ItemFilter {
	limit := defaultListLimit
	if r.Limit != nil {
		limit = *r.Limit
	}
	return domain.ItemFilter{Query: r.Q, Limit: limit}
}

type pageRequest struct {
	Page     *int `query:"page"      validate:"omitnil,min=1"`
	PageSize *int `query:"page_size" validate:"omitnil,min=1,max=100"`
}

const defaultPageSize = 10

type purchaseRequest struct {
	ID     int64 `param:"id" json:"-" validate:"gt=0"`
	Amount int   `json:"amount"     validate:"required,min=1"`
}

type purchaseResponse struct {
	Status string `json:"status"`
}
