package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
	IsActive *bool
	Scopes   []string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	IssueToken(ctx context.Context, username, password string, requested []string) (*domain.IssuedToken, error)
}

// Authorizer resolves a raw bearer token into the calling user, enforcing
// the required scopes.
type Authorizer interface {
	Authorize(ctx context.Context, rawToken string, required []string) (*domain.User, error)
}

// TokenVerifier checks a token's signature and expiry only.
type TokenVerifier interface {
	Verify(rawToken string) (*domain.TokenClaims, error)
}

// UserService backs the account administration endpoints.
type UserService interface {
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
}
