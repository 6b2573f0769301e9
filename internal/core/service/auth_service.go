package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const defaultTokenTTL = 30 * time.Minute

// PasswordHasher is satisfied by BcryptHasher.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hashed string) bool
	VerifyDummy(secret string)
}

// AuthService implements signup, credential checks and token issuance.
type AuthService struct {
	users         ports.UserRepository
	hasher        PasswordHasher
	tokens        *TokenCodec
	tokenTTL      time.Duration
	defaultScopes []string
	signupScopes  []string
	logger        zerolog.Logger
	now           func() time.Time
}

type AuthOption func(*AuthService)

// WithDefaultScopes sets the scopes granted at signup when none are requested.
func WithDefaultScopes(scopes []string) AuthOption {
	return func(s *AuthService) { s.defaultScopes = append([]string(nil), scopes...) }
}

// WithSignupScopes limits the scopes a self-registered account may request.
func WithSignupScopes(scopes []string) AuthOption {
	return func(s *AuthService) { s.signupScopes = append([]string(nil), scopes...) }
}

func NewAuthService(users ports.UserRepository, hasher PasswordHasher, tokens *TokenCodec, tokenTTL time.Duration, logger zerolog.Logger, opts ...AuthOption) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	s := &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		signupScopes: []string{
			domain.ScopeItemsRead,
			domain.ScopeItemsWrite,
		},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a self-service account. Requested scopes outside the
// signup allowlist are rejected.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	for _, scope := range input.Scopes {
		if !domain.HasScopes(s.signupScopes, []string{scope}) {
			return nil, domain.NewValidationError("", domain.FieldError{
				Field:   "scopes",
				Message: "scope " + scope + " cannot be requested at signup",
			})
		}
	}
	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = s.defaultScopes
	}
	return s.createUser(ctx, input, scopes)
}

// EnsureAdmin creates an active account holding every scope unless the
// username is already taken. It bypasses the signup allowlist and is meant
// for startup seeding only.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.createUser(ctx, ports.RegisterInput{Username: username, Password: password},
		[]string{domain.ScopeItemsRead, domain.ScopeItemsWrite, domain.ScopeUsersAdmin})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func (s *AuthService) createUser(ctx context.Context, input ports.RegisterInput, scopes []string) (*domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.NewValidationError("Username and password are required.")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, domain.NewValidationError("", domain.FieldError{Field: "password", Message: "must be at most 72 bytes"})
		}
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:       input.Username,
		FullName:       input.FullName,
		Email:          input.Email,
		IsActive:       active,
		Scopes:         append([]string{}, scopes...),
		HashedPassword: hash,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Int64("user_id", created.ID).Strs("scopes", created.Scopes).Msg("user registered")
	return created, nil
}

// Authenticate returns domain.ErrInvalidCredentials for an unknown username
// and for a wrong password alike.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken authenticates the caller and signs a token. Requested scopes are
// narrowed to the ones the user holds; no request means all of them.
func (s *AuthService) IssueToken(ctx context.Context, username, password string, requested []string) (*domain.IssuedToken, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	scopes := user.Scopes
	if len(requested) > 0 {
		scopes = domain.IntersectScopes(requested, user.Scopes)
	}

	token, err := s.tokens.Issue(user.Username, scopes, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("username", user.Username).Strs("scopes", token.Scopes).Msg("token issued")
	return token, nil
}
