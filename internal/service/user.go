package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
)

// UserService registers the anonymous user acting on each client.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Register creates a user named name and makes it the client's active user,
// replacing any previous one.
func (s *UserService) Register(ctx context.Context, clientID, name string) (*domain.User, error) {
	user, err := domain.NewUser(name)
	if err != nil {
		return nil, validationError(err)
	}
	if err := s.users.SetActive(ctx, clientID, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	reviewMutations.WithLabelValues(opRegister).Inc()
	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("client_id", clientID),
	)
	return &user, nil
}

// Current returns the client's active user.
func (s *UserService) Current(ctx context.Context, clientID string) (*domain.User, error) {
	return requireUser(ctx, s.users, clientID)
}

// Logout clears the client's active user. Logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, clientID string) error {
	if err := s.users.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	reviewMutations.WithLabelValues(opLogout).Inc()
	s.logger.InfoContext(ctx, "user logged out", slog.String("client_id", clientID))
	return nil
}
