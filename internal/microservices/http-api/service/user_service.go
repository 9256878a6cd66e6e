package service

import (
	"context"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
)

type UserService interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateTimeZone(ctx context.Context, userID, timeZone string) (*models.User, error)
}

type userService struct {
	users     repository.UserRepository
	directory repository.UserDirectory
	zones     *zonetime.Registry
	logger    zerolog.Logger
}

func NewUserService(users repository.UserRepository, directory repository.UserDirectory, zones *zonetime.Registry, logger zerolog.Logger) UserService {
	return &userService{users: users, directory: directory, zones: zones, logger: logger}
}

func (s *userService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateTimeZone stores a validated zone. Existing entries keep their
// weekday and time; only future derivations and the weekly view move.
func (s *userService) UpdateTimeZone(ctx context.Context, userID, timeZone string) (*models.User, error) {
	if err := s.zones.Validate(timeZone); err != nil {
		return nil, err
	}
	if err := s.users.UpdateTimeZone(ctx, userID, timeZone); err != nil {
		return nil, err
	}
	if err := s.directory.Invalidate(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate cached timezone")
	}
	return s.users.FindByID(ctx, userID)
}
