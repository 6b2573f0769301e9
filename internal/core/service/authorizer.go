package service

import (
	"context"
	"errors"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// UserFinder is the slice of the user repository the Authorizer needs.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Authorizer turns a bearer token into the calling user.
//
// Checks run in a fixed order: token present, signature and expiry, required
// scopes, then account lookup. A scope failure is reported as Forbidden even
// when the account no longer exists; everything else is Unauthenticated.
type Authorizer struct {
	users  UserFinder
	tokens ports.TokenVerifier
}

func NewAuthorizer(users UserFinder, tokens ports.TokenVerifier) *Authorizer {
	return &Authorizer{users: users, tokens: tokens}
}

func (a *Authorizer) Authorize(ctx context.Context, rawToken string, required []string) (*domain.User, error) {
	if rawToken == "" {
		return nil, domain.ErrNotAuthenticated
	}

	claims, err := a.tokens.Verify(rawToken)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	if !domain.HasScopes(claims.Scopes, required) {
		return nil, &domain.ForbiddenError{Required: append([]string(nil), required...)}
	}

	user, err := a.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}
