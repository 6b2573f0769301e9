package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
//
// Create fails with domain.ErrUserExists when the username is taken.
// FindByUsername and Get fail with domain.ErrUserNotFound. Update reports a
// missing id through found=false and a nil error.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (user *domain.User, found bool, err error)
}
