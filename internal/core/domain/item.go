package domain

import (
	"strings"
	"time"
)

// Item is a catalogue entry. ID and CreatedAt are assigned by the store.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Tags        []string  `json:"tags"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.Tags = append([]string{}, i.Tags...)
	return &c
}

// ItemDraft carries the client-supplied fields of a new item.
type ItemDraft struct {
	Name        string
	Description string
	Price       float64
	Tags        []string
	InStock     bool
}

// ItemPatch holds the optional fields of a partial item update.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Tags        *[]string
	InStock     *bool
}

// Apply copies every present field onto it; absent fields are untouched.
func (p ItemPatch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	if p.Tags != nil {
		it.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.InStock != nil {
		it.InStock = *p.InStock
	}
}

// ItemFilter narrows a listing. An empty Query matches every item.
type ItemFilter struct {
	Query  string
	Limit  int
	Offset int
}

// Matches reports whether the item name contains the query, ignoring case.
func (f ItemFilter) Matches(it *Item) bool {
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Query))
}

// ItemSummary combines an item with its price and inventory quotes.
type ItemSummary struct {
	Item      *Item   `json:"item"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory"`
}
