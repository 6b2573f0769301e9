package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// UserService backs account administration.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	return s.repo.List(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	user, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return user, nil
}
