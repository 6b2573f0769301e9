package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{Username: "hari", IsActive: true, Scopes: []string{domain.ScopeItemsRead}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = repo.Create(ctx, &domain.User{Username: "hari"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.FindByUsername(ctx, "hari")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	found.Scopes[0] = "mutated"
	again, _ := repo.FindByUsername(ctx, "hari")
	assert.Equal(t, domain.ScopeItemsRead, again.Scopes[0], "callers must not alias stored data")

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdateAndList(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, &domain.User{Username: name, IsActive: true})
		require.NoError(t, err)
	}

	inactive := false
	u, found, err := repo.Update(ctx, 2, domain.UserPatch{IsActive: &inactive})
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, u.IsActive)
	assert.Equal(t, "b", u.Username)

	_, found, err = repo.Update(ctx, 42, domain.UserPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, found)

	page, err := repo.List(ctx, domain.UserFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Username)
	assert.Equal(t, "c", page[1].Username)
}

func TestItemRepository_CRUD(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	lamp, err := repo.Create(ctx, domain.ItemDraft{Name: "Desk Lamp", Price: 20, Tags: []string{"home"}, InStock: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.ItemDraft{Name: "Chair", Price: 45})
	require.NoError(t, err)

	assert.Equal(t, int64(1), lamp.ID)
	assert.False(t, lamp.CreatedAt.IsZero())

	got, err := repo.Get(ctx, lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	list, err := repo.List(ctx, domain.ItemFilter{Query: "LAMP"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	price := 25.0
	updated, found, err := repo.Update(ctx, lamp.ID, domain.ItemPatch{Price: &price})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.Equal(t, lamp.CreatedAt, updated.CreatedAt)

	_, found, err = repo.Update(ctx, 99, domain.ItemPatch{Price: &price})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestItemRepository_Pagination(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := repo.Create(ctx, domain.ItemDraft{Name: fmt.Sprintf("Item %d", i)})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, domain.ItemFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, int64(21), page[0].ID)
}

func TestItemRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo := NewItemRepository()
	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, err := repo.Create(context.Background(), domain.ItemDraft{Name: "x"})
			if err == nil {
				ids <- it.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}
