package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/storefront-api/internal/core/domain"
)

type ItemRepository struct {
	coll *mongo.Collection
	ids  *sequence
	now  func() time.Time
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{
		coll: db.Collection(itemsCollection),
		ids:  newSequence(db, itemsCollection),
		now:  time.Now,
	}
}

type mongoItem struct {
	ID          int64     `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Price       float64   `bson:"price"`
	Tags        []string  `bson:"tags"`
	InStock     bool      `bson:"in_stock"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (m mongoItem) toDomain() *domain.Item {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Item{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Tags:        tags,
		InStock:     m.InStock,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (r *ItemRepository) Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoItem{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Tags:        append([]string{}, draft.Tags...),
		InStock:     draft.InStock,
		CreatedAt:   r.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	query := bson.M{}
	if filter.Query != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Item, 0)
	for cur.Next(ctx) {
		var mi mongoItem
		if err := cur.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, mi.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	var mi mongoItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, patch domain.ItemPatch) (*domain.Item, bool, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.InStock != nil {
		set["in_stock"] = *patch.InStock
	}

	if len(set) == 0 {
		it, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, false, nil
		}
		return it, err == nil, err
	}

	var mi mongoItem
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mi)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update item: %w", err)
	}
	return mi.toDomain(), true, nil
}
