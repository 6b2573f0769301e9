// Package memory provides process-local repositories for development and
// tests. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storefront/storefront-api/internal/core/domain"
)

type UserRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.User
	byName map[string]int64
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:   make(map[int64]*domain.User),
		byName: make(map[string]int64),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := user.Clone()
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	r.byName[stored.Username] = stored.ID
	return stored.Clone(), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *UserRepository) Get(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*domain.User, 0)
	for i, id := range ids {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, r.byID[id].Clone())
	}
	r.mu.RUnlock()
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, patch domain.UserPatch) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, false, nil
	}
	patch.Apply(u)
	return u.Clone(), true, nil
}
