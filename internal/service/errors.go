package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
)

var (
	errNoActiveUser = apperrors.Unauthorized("register a name before reviewing")
	errNotAuthor    = apperrors.Forbidden("only the author can change this review")
	errNotEditing   = apperrors.Conflict(domain.ErrNotEditing.Error())
)

func reviewNotFound(id string) *apperrors.AppError {
	return apperrors.NotFound("review", id)
}

// validationError turns a domain validation failure into a 400 carrying the
// message shown to the user. Other errors pass through unchanged.
func validationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrIncompleteReview),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrEmptyComment),
		errors.Is(err, domain.ErrBlankName):
		return apperrors.InvalidInput(err.Error())
	}
	return err
}

// requireUser returns the client's active user or errNoActiveUser.
func requireUser(ctx context.Context, users repository.UserRepository, clientID string) (*domain.User, error) {
	u, err := users.Active(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("resolve active user: %w", err)
	}
	if u == nil {
		return nil, errNoActiveUser
	}
	return u, nil
}

// viewerID returns the active user's id, or "" when there is none.
func viewerID(ctx context.Context, users repository.UserRepository, clientID string) (string, error) {
	if clientID == "" {
		return "", nil
	}
	u, err := users.Active(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("resolve active user: %w", err)
	}
	if u == nil {
		return "", nil
	}
	return u.ID, nil
}
