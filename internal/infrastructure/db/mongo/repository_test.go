package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func counterResponse(name string, seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: name},
		{Key: "seq", Value: seq},
	}})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns sequence id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(counterResponse("users", 4), mtest.CreateSuccessResponse())

		u, err := repo.Create(context.Background(), &domain.User{Username: "hari", IsActive: true, Scopes: []string{domain.ScopeItemsRead}})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if u.ID != 4 || u.Username != "hari" {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			counterResponse("users", 5),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		_, err := repo.Create(context.Background(), &domain.User{Username: "hari"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("find by username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(1)},
			{Key: "username", Value: "hari"},
			{Key: "is_active", Value: true},
			{Key: "scopes", Value: bson.A{"items:read"}},
			{Key: "hashed_password", Value: "hash"},
			{Key: "created_at", Value: time.Now()},
		}))

		u, err := repo.FindByUsername(context.Background(), "hari")
		if err != nil {
			mt.Fatalf("FindByUsername: %v", err)
		}
		if u.ID != 1 || u.HashedPassword != "hash" || len(u.Scopes) != 1 {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("unknown username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("update applies patch", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: int64(2)},
			{Key: "username", Value: "bob"},
			{Key: "is_active", Value: false},
		}}))

		inactive := false
		u, found, err := repo.Update(context.Background(), 2, domain.UserPatch{IsActive: &inactive})
		if err != nil || !found || u.IsActive {
			mt.Fatalf("unexpected result: %+v %v %v", u, found, err)
		}
	})
}

func TestItemRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewItemRepository(mt.DB)
		mt.AddMockResponses(counterResponse("items", 12), mtest.CreateSuccessResponse())

		it, err := repo.Create(context.Background(), domain.ItemDraft{Name: "Lamp", Price: 9.5, InStock: true})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if it.ID != 12 || it.CreatedAt.IsZero() || it.Tags == nil {
			mt.Fatalf("unexpected item: %+v", it)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewItemRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + itemsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int64(1)}, {Key: "name", Value: "Desk Lamp"}, {Key: "price", Value: 10.0}},
			bson.D{{Key: "_id", Value: int64(3)}, {Key: "name", Value: "Lamp Shade"}, {Key: "price", Value: 4.0}},
		))

		items, err := repo.List(context.Background(), domain.ItemFilter{Query: "lamp", Limit: 10})
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(items) != 2 || items[1].ID != 3 {
			mt.Fatalf("unexpected items: %+v", items)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewItemRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + itemsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.Get(context.Background(), 99); !errors.Is(err, domain.ErrItemNotFound) {
			mt.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewItemRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		price := 1.0
		_, found, err := repo.Update(context.Background(), 99, domain.ItemPatch{Price: &price})
		if err != nil || found {
			mt.Fatalf("expected found=false without error, got %v %v", found, err)
		}
	})
}
