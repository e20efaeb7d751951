package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/event"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// DefaultNoticeTTL is how long the "review submitted" notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// AddReviewInput holds a review submission.
type AddReviewInput struct {
	Rating  int
	Comment string
}

// ReviewService implements listing, adding and reacting to reviews.
type ReviewService struct {
	reviews   repository.ReviewRepository
	users     repository.UserRepository
	sessions  repository.SessionRepository
	events    event.Publisher
	noticeTTL time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a review service. A non-positive noticeTTL uses
// DefaultNoticeTTL.
func NewReviewService(
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	events event.Publisher,
	noticeTTL time.Duration,
	logger *slog.Logger,
) *ReviewService {
	if noticeTTL <= 0 {
		noticeTTL = DefaultNoticeTTL
	}
	return &ReviewService{
		reviews:   reviews,
		users:     users,
		sessions:  sessions,
		events:    events,
		noticeTTL: noticeTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the reviews of productID filtered and sorted by view, as seen
// by the client's active user. The summary always covers the whole list.
func (s *ReviewService) List(ctx context.Context, clientID, productID string, view domain.View) (*ReviewPage, error) {
	if err := view.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if view.Order == "" {
		view.Order = domain.OrderNewest
	}

	res, err := s.reviews.Load(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	viewer, err := viewerID(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}

	shown := view.Apply(res.Reviews)
	page := &ReviewPage{
		ProductID: productID,
		Stars:     view.Stars,
		Order:     string(view.Order),
		Reviews:   make([]ReviewView, 0, len(shown)),
		Summary:   NewSummaryView(domain.Summarize(res.Reviews)),
	}
	for _, rv := range shown {
		page.Reviews = append(page.Reviews, NewReviewView(rv, viewer))
	}
	return page, nil
}

// Summary returns the rating summary of productID.
func (s *ReviewService) Summary(ctx context.Context, productID string) (*SummaryView, error) {
	res, err := s.reviews.Load(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	sum := NewSummaryView(domain.Summarize(res.Reviews))
	return &sum, nil
}

// Add prepends a new review by the client's active user and shows the
// success notice.
func (s *ReviewService) Add(ctx context.Context, clientID, productID string, in AddReviewInput) (*ReviewView, error) {
	user, err := requireUser(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateNewReview(in.Rating, in.Comment); err != nil {
		return nil, validationError(err)
	}

	now := s.now()
	rv := domain.NewReview(*user, in.Rating, in.Comment, now)
	if _, err := s.reviews.Mutate(ctx, productID, func(list []domain.Review) ([]domain.Review, error) {
		return domain.Prepend(list, rv), nil
	}); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	notice := domain.NewNotice(domain.SuccessMessage, now, s.noticeTTL)
	if _, err := s.sessions.Mutate(ctx, clientID, productID, func(sess *domain.Session) error {
		sess.Notice = notice
		return nil
	}); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to store success notice",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	reviewMutations.WithLabelValues(opAdd).Inc()
	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", productID),
		slog.String("review_id", rv.ID),
		slog.String("user_id", user.ID),
		slog.Int("rating", in.Rating),
	)
	s.events.ReviewCreated(ctx, productID, rv)

	view := NewReviewView(rv, user.ID)
	return &view, nil
}

// ToggleLike likes reviewID for the active user, or takes the like back.
func (s *ReviewService) ToggleLike(ctx context.Context, clientID, productID, reviewID string) (*ReviewView, error) {
	return s.react(ctx, clientID, productID, reviewID, opLike, (*domain.Review).ToggleLike)
}

// ToggleDislike dislikes reviewID for the active user, or takes the dislike
// back.
func (s *ReviewService) ToggleDislike(ctx context.Context, clientID, productID, reviewID string) (*ReviewView, error) {
	return s.react(ctx, clientID, productID, reviewID, opDislike, (*domain.Review).ToggleDislike)
}

func (s *ReviewService) react(
	ctx context.Context,
	clientID, productID, reviewID, op string,
	toggle func(*domain.Review, string) domain.Reaction,
) (*ReviewView, error) {
	user, err := requireUser(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}

	var (
		updated  domain.Review
		reaction domain.Reaction
	)
	if _, err := s.reviews.Mutate(ctx, productID, func(list []domain.Review) ([]domain.Review, error) {
		idx := domain.FindReview(list, reviewID)
		if idx < 0 {
			return nil, reviewNotFound(reviewID)
		}
		reaction = toggle(&list[idx], user.ID)
		updated = list[idx].Clone()
		return list, nil
	}); err != nil {
		return nil, fmt.Errorf("%s review: %w", op, err)
	}

	reviewMutations.WithLabelValues(op).Inc()
	s.logger.InfoContext(ctx, "review reaction toggled",
		slog.String("product_id", productID),
		slog.String("review_id", reviewID),
		slog.String("user_id", user.ID),
		slog.String("reaction", reaction.String()),
	)
	s.events.ReviewReacted(ctx, productID, updated, user.ID, reaction)

	view := NewReviewView(updated, user.ID)
	return &view, nil
}

// Report counts one more report against reviewID. No active user is needed
// and repeated reports all count.
func (s *ReviewService) Report(ctx context.Context, clientID, productID, reviewID string) (*ReviewView, error) {
	var updated domain.Review
	if _, err := s.reviews.Mutate(ctx, productID, func(list []domain.Review) ([]domain.Review, error) {
		idx := domain.FindReview(list, reviewID)
		if idx < 0 {
			return nil, reviewNotFound(reviewID)
		}
		list[idx].Report()
		updated = list[idx].Clone()
		return list, nil
	}); err != nil {
		return nil, fmt.Errorf("report review: %w", err)
	}

	viewer, err := viewerID(ctx, s.users, clientID)
	if err != nil {
		return nil, err
	}

	reviewMutations.WithLabelValues(opReport).Inc()
	s.logger.InfoContext(ctx, "review reported",
		slog.String("product_id", productID),
		slog.String("review_id", reviewID),
		slog.Int("reports", updated.Reports),
	)
	s.events.ReviewReported(ctx, productID, updated)

	view := NewReviewView(updated, viewer)
	return &view, nil
}
