package repository

import (
	"context"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
)

// ReviewMutation transforms a product's review list. Like UpdateFunc it may
// run more than once.
type ReviewMutation func(list []domain.Review) ([]domain.Review, error)

// ReviewRepository persists the review list of each product.
type ReviewRepository interface {
	Load(ctx context.Context, productID string) (LoadResult, error)
	Save(ctx context.Context, productID string, list []domain.Review) error
	// Mutate loads, applies fn and saves as one atomic step, returning the
	// saved list.
	Mutate(ctx context.Context, productID string, fn ReviewMutation) ([]domain.Review, error)
}

// UserRepository holds the single active user of each client.
type UserRepository interface {
	// Active returns nil when the client has no active user.
	Active(ctx context.Context, clientID string) (*domain.User, error)
	SetActive(ctx context.Context, clientID string, user domain.User) error
	Clear(ctx context.Context, clientID string) error
}

// SessionMutation transforms a client's widget session for one product.
type SessionMutation func(s *domain.Session) error

// SessionRepository holds per-client, per-product widget state.
type SessionRepository interface {
	Load(ctx context.Context, clientID, productID string) (domain.Session, error)
	Save(ctx context.Context, clientID, productID string, s domain.Session) error
	Mutate(ctx context.Context, clientID, productID string, fn SessionMutation) (domain.Session, error)
}
