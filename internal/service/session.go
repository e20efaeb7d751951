package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/event"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
)

// DeleteResult reports what ConfirmDelete did.
type DeleteResult struct {
	ReviewID string `json:"review_id,omitempty"`
	Deleted  bool   `json:"deleted"`
}

// SessionService drives the two-phase delete and the comment edit state
// machines of one client on one product.
type SessionService struct {
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	events   event.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a session service.
func NewSessionService(
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	events event.Publisher,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		reviews:  reviews,
		users:    users,
		sessions: sessions,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the client's widget state for productID.
func (s *SessionService) Get(ctx context.Context, clientID, productID string) (*SessionView, error) {
	sess, err := s.sessions.Load(ctx, clientID, productID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	v := NewSessionView(sess, s.now())
	return &v, nil
}

// authoredReview returns reviewID after checking the active user wrote it.
func (s *SessionService) authoredReview(ctx context.Context, clientID, productID, reviewID string) (*domain.User, domain.Review, error) {
	user, err := requireUser(ctx, s.users, clientID)
	if err != nil {
		return nil, domain.Review{}, err
	}
	res, err := s.reviews.Load(ctx, productID)
	if err != nil {
		return nil, domain.Review{}, fmt.Errorf("load reviews: %w", err)
	}
	idx := domain.FindReview(res.Reviews, reviewID)
	if idx < 0 {
		return nil, domain.Review{}, reviewNotFound(reviewID)
	}
	rv := res.Reviews[idx]
	if rv.AuthorID != user.ID {
		return nil, domain.Review{}, errNotAuthor
	}
	return user, rv, nil
}

func (s *SessionService) mutate(ctx context.Context, clientID, productID string, fn repository.SessionMutation) (*SessionView, error) {
	sess, err := s.sessions.Mutate(ctx, clientID, productID, fn)
	if err != nil {
		if errors.Is(err, domain.ErrNotEditing) {
			return nil, errNotEditing
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	v := NewSessionView(sess, s.now())
	return &v, nil
}

// RequestDelete asks for confirmation before deleting reviewID. A newer
// request replaces a pending one.
func (s *SessionService) RequestDelete(ctx context.Context, clientID, productID, reviewID string) (*SessionView, error) {
	if _, _, err := s.authoredReview(ctx, clientID, productID, reviewID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		sess.Delete.Request(reviewID)
		return nil
	})
}

// CancelDelete drops the pending delete request, if any.
func (s *SessionService) CancelDelete(ctx context.Context, clientID, productID string) (*SessionView, error) {
	return s.mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		sess.Delete.Cancel()
		return nil
	})
}

// ConfirmDelete removes the pending review. With nothing pending, or when
// the review is already gone, nothing is removed.
func (s *SessionService) ConfirmDelete(ctx context.Context, clientID, productID string) (*DeleteResult, error) {
	var pending string
	if _, err := s.sessions.Mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		id, ok := sess.Delete.Confirm()
		if !ok {
			pending = ""
			return repository.ErrSkipWrite
		}
		pending = id
		return nil
	}); err != nil {
		return nil, fmt.Errorf("confirm delete: %w", err)
	}
	if pending == "" {
		return &DeleteResult{}, nil
	}

	user, err := requireUser(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}

	removed := false
	if _, err := s.reviews.Mutate(ctx, productID, func(list []domain.Review) ([]domain.Review, error) {
		idx := domain.FindReview(list, pending)
		if idx < 0 {
			removed = false
			return nil, repository.ErrSkipWrite
		}
		if list[idx].AuthorID != user.ID {
			return nil, errNotAuthor
		}
		next, _ := domain.RemoveReview(list, pending)
		removed = true
		return next, nil
	}); err != nil {
		return nil, fmt.Errorf("delete review: %w", err)
	}

	if removed {
		reviewMutations.WithLabelValues(opDelete).Inc()
		s.logger.InfoContext(ctx, "review deleted",
			slog.String("product_id", productID),
			slog.String("review_id", pending),
			slog.String("user_id", user.ID),
		)
		s.events.ReviewDeleted(ctx, productID, pending, user.ID)
	}
	return &DeleteResult{ReviewID: pending, Deleted: removed}, nil
}

// BeginEdit starts editing reviewID with its current comment as the draft.
func (s *SessionService) BeginEdit(ctx context.Context, clientID, productID, reviewID string) (*SessionView, error) {
	_, rv, err := s.authoredReview(ctx, clientID, productID, reviewID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		sess.Edit.Begin(rv.ID, rv.Comment)
		return nil
	})
}

// UpdateDraft replaces the draft of the edit in progress.
func (s *SessionService) UpdateDraft(ctx context.Context, clientID, productID, text string) (*SessionView, error) {
	return s.mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		return sess.Edit.SetDraft(text)
	})
}

// CancelEdit discards the draft. The comment is left untouched.
func (s *SessionService) CancelEdit(ctx context.Context, clientID, productID string) (*SessionView, error) {
	return s.mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		sess.Edit.Cancel()
		return nil
	})
}

// SaveEdit replaces the comment with the draft and ends the edit. A blank
// draft is rejected and the edit stays open. If the review was deleted in
// the meantime the edit is dropped and NotFound returned.
func (s *SessionService) SaveEdit(ctx context.Context, clientID, productID string) (*ReviewView, error) {
	sess, err := s.sessions.Load(ctx, clientID, productID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Edit.Editing() {
		return nil, errNotEditing
	}
	if err := domain.ValidateComment(sess.Edit.Draft); err != nil {
		return nil, validationError(err)
	}

	user, err := requireUser(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}

	reviewID, draft := sess.Edit.ReviewID, sess.Edit.Draft
	var updated domain.Review
	_, err = s.reviews.Mutate(ctx, productID, func(list []domain.Review) ([]domain.Review, error) {
		idx := domain.FindReview(list, reviewID)
		if idx < 0 {
			return nil, reviewNotFound(reviewID)
		}
		if list[idx].AuthorID != user.ID {
			return nil, errNotAuthor
		}
		list[idx].Comment = draft
		updated = list[idx].Clone()
		return list, nil
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("save edit: %w", err)
	}

	if _, cerr := s.sessions.Mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		if sess.Edit.ReviewID == reviewID {
			sess.Edit.Cancel()
		}
		return nil
	}); cerr != nil {
		return nil, fmt.Errorf("end edit: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	reviewMutations.WithLabelValues(opEdit).Inc()
	s.logger.InfoContext(ctx, "review comment edited",
		slog.String("product_id", productID),
		slog.String("review_id", reviewID),
		slog.String("user_id", user.ID),
	)
	s.events.ReviewUpdated(ctx, productID, updated)

	view := NewReviewView(updated, user.ID)
	return &view, nil
}
